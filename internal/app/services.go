package app

import (
	"os"

	"gorm.io/gorm"

	"github.com/clipsmith/clipsmith-backend/internal/clients/gcp"
	"github.com/clipsmith/clipsmith-backend/internal/clients/redis"
	"github.com/clipsmith/clipsmith-backend/internal/ingestion/labelimport"
	"github.com/clipsmith/clipsmith-backend/internal/jobs/pipeline/label_detect"
	"github.com/clipsmith/clipsmith-backend/internal/jobs/pipeline/media_recommend"
	"github.com/clipsmith/clipsmith-backend/internal/jobs/pipeline/timeline_recommend"
	"github.com/clipsmith/clipsmith-backend/internal/jobs/runtime"
	"github.com/clipsmith/clipsmith-backend/internal/jobs/worker"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/services"
	"github.com/clipsmith/clipsmith-backend/internal/sse"
)

type Services struct {
	Notifier        services.JobNotifier
	Jobs            services.JobService
	Recommendations services.RecommendationService

	SSEBus    redis.SSEBus
	Video     gcp.Video
	Registry  *runtime.Registry
	JobWorker *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, hub *sse.SSEHub) (Services, error) {
	log.Info("Wiring services...")
	out := Services{}

	// Redis bus is optional; without it SSE events stay on the local hub.
	if os.Getenv("REDIS_ADDR") != "" {
		bus, err := redis.NewSSEBus(log)
		if err != nil {
			log.Warn("Redis SSE bus init failed; falling back to local hub", "error", err)
		} else {
			out.SSEBus = bus
		}
	}

	out.Notifier = services.NewJobNotifier(hub, out.SSEBus, log)
	out.Jobs = services.NewJobService(db, log, repos.JobRun, out.Notifier)
	out.Recommendations = services.NewRecommendationService(
		db, log, out.Jobs,
		repos.MediaClip, repos.TimelineClip,
		repos.MediaRecommendation, repos.TimelineRecommendation,
	)

	// Video Intelligence is optional; without it label_detect jobs fail at
	// validate with a clear message.
	video, err := gcp.NewVideo(log)
	if err != nil {
		log.Warn("Video Intelligence client init failed; label detection disabled", "error", err)
	} else {
		out.Video = video
	}

	importer := labelimport.NewImporter(log, repos.MediaAsset, repos.LabelClip, repos.LabelEntity)

	registry := runtime.NewRegistry()
	pipelines := []runtime.Handler{
		media_recommend.New(
			db, log,
			repos.Workspace, repos.MediaAsset, repos.MediaClip,
			repos.LabelClip, repos.LabelEntity,
			repos.MediaRecommendation,
			cfg.MaxPerContext,
		),
		timeline_recommend.New(
			db, log,
			repos.Workspace, repos.MediaAsset, repos.MediaClip,
			repos.Timeline, repos.TimelineClip,
			repos.LabelClip, repos.LabelEntity,
			repos.TimelineRecommendation,
			cfg.MaxPerContext,
		),
		label_detect.New(db, log, repos.MediaAsset, out.Video, importer),
	}
	for _, p := range pipelines {
		if err := registry.Register(p); err != nil {
			return out, err
		}
	}
	out.Registry = registry
	out.JobWorker = worker.NewWorker(db, log, repos.JobRun, registry, out.Notifier)

	return out, nil
}
