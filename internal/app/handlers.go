package app

import (
	"github.com/gin-gonic/gin"

	httpx "github.com/clipsmith/clipsmith-backend/internal/http"
	"github.com/clipsmith/clipsmith-backend/internal/http/handlers"
	"github.com/clipsmith/clipsmith-backend/internal/middleware"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/sse"
)

type Handlers struct {
	Health         *handlers.HealthHandler
	Realtime       *handlers.RealtimeHandler
	Media          *handlers.MediaHandler
	Recommendation *handlers.RecommendationHandler
	Job            *handlers.JobHandler
}

func wireHandlers(log *logger.Logger, svcs Services, hub *sse.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:         handlers.NewHealthHandler(),
		Realtime:       handlers.NewRealtimeHandler(log, hub),
		Media:          handlers.NewMediaHandler(svcs.Jobs),
		Recommendation: handlers.NewRecommendationHandler(svcs.Recommendations),
		Job:            handlers.NewJobHandler(svcs.Jobs),
	}
}

func wireRouter(cfg Config, log *logger.Logger, h Handlers) *gin.Engine {
	auth := middleware.NewAuthMiddleware(log, cfg.JWTSecret)
	return httpx.NewRouter(httpx.RouterConfig{
		ServiceName:           cfg.ServiceName,
		AuthMiddleware:        auth,
		RealtimeHandler:       h.Realtime,
		MediaHandler:          h.Media,
		RecommendationHandler: h.Recommendation,
		JobHandler:            h.Job,
		HealthHandler:         h.Health,
	})
}
