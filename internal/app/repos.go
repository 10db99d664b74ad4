package app

import (
	"gorm.io/gorm"

	jobrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/jobs"
	labelrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/labels"
	mediarepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/media"
	recsrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/recs"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type Repos struct {
	Workspace    mediarepos.WorkspaceRepo
	MediaAsset   mediarepos.MediaAssetRepo
	MediaClip    mediarepos.MediaClipRepo
	Timeline     mediarepos.TimelineRepo
	TimelineClip mediarepos.TimelineClipRepo

	LabelEntity labelrepos.LabelEntityRepo
	LabelClip   labelrepos.LabelClipRepo

	MediaRecommendation    recsrepos.MediaRecommendationRepo
	TimelineRecommendation recsrepos.TimelineRecommendationRepo

	JobRun jobrepos.JobRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Workspace:    mediarepos.NewWorkspaceRepo(db, log),
		MediaAsset:   mediarepos.NewMediaAssetRepo(db, log),
		MediaClip:    mediarepos.NewMediaClipRepo(db, log),
		Timeline:     mediarepos.NewTimelineRepo(db, log),
		TimelineClip: mediarepos.NewTimelineClipRepo(db, log),

		LabelEntity: labelrepos.NewLabelEntityRepo(db, log),
		LabelClip:   labelrepos.NewLabelClipRepo(db, log),

		MediaRecommendation:    recsrepos.NewMediaRecommendationRepo(db, log),
		TimelineRecommendation: recsrepos.NewTimelineRecommendationRepo(db, log),

		JobRun: jobrepos.NewJobRunRepo(db, log),
	}
}
