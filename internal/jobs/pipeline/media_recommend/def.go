package media_recommend

import (
	"gorm.io/gorm"

	labelrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/labels"
	mediarepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/media"
	recsrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/recs"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/recs/writer"
)

type Pipeline struct {
	db         *gorm.DB
	log        *logger.Logger
	workspaces mediarepos.WorkspaceRepo
	media      mediarepos.MediaAssetRepo
	mediaClips mediarepos.MediaClipRepo
	labelClips labelrepos.LabelClipRepo
	entities   labelrepos.LabelEntityRepo
	writer     *writer.MediaWriter
}

func New(
	db *gorm.DB,
	baseLog *logger.Logger,
	workspaces mediarepos.WorkspaceRepo,
	media mediarepos.MediaAssetRepo,
	mediaClips mediarepos.MediaClipRepo,
	labelClips labelrepos.LabelClipRepo,
	entities labelrepos.LabelEntityRepo,
	recs recsrepos.MediaRecommendationRepo,
	maxPerContext int,
) *Pipeline {
	log := baseLog.With("job", "media_recommend")
	return &Pipeline{
		db:         db,
		log:        log,
		workspaces: workspaces,
		media:      media,
		mediaClips: mediaClips,
		labelClips: labelClips,
		entities:   entities,
		writer:     writer.NewMediaWriter(recsrepos.NewMediaStore(recs), log, maxPerContext),
	}
}

func (p *Pipeline) Type() string { return "media_recommend" }
