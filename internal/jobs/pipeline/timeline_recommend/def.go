package timeline_recommend

import (
	"gorm.io/gorm"

	labelrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/labels"
	mediarepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/media"
	recsrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/recs"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/recs/writer"
)

type Pipeline struct {
	db            *gorm.DB
	log           *logger.Logger
	workspaces    mediarepos.WorkspaceRepo
	media         mediarepos.MediaAssetRepo
	mediaClips    mediarepos.MediaClipRepo
	timelines     mediarepos.TimelineRepo
	timelineClips mediarepos.TimelineClipRepo
	labelClips    labelrepos.LabelClipRepo
	entities      labelrepos.LabelEntityRepo
	writer        *writer.TimelineWriter
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	workspaces mediarepos.WorkspaceRepo,
	media mediarepos.MediaAssetRepo,
	mediaClips mediarepos.MediaClipRepo,
	timelines mediarepos.TimelineRepo,
	timelineClips mediarepos.TimelineClipRepo,
	labelClips labelrepos.LabelClipRepo,
	entities labelrepos.LabelEntityRepo,
	recs recsrepos.TimelineRecommendationRepo,
	maxPerContext int,
) *Pipeline {
	log := baseLog.With("job", "timeline_recommend")
	return &Pipeline{
		db:            db,
		log:           log,
		workspaces:    workspaces,
		media:         media,
		mediaClips:    mediaClips,
		timelines:     timelines,
		timelineClips: timelineClips,
		labelClips:    labelClips,
		entities:      entities,
		writer:        writer.NewTimelineWriter(recsrepos.NewTimelineStore(recs), log, maxPerContext),
	}
}

func (p *Pipeline) Type() string { return "timeline_recommend" }
