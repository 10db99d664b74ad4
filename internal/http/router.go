package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/clipsmith/clipsmith-backend/internal/http/handlers"
	httpMW "github.com/clipsmith/clipsmith-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName    string
	AuthMiddleware *httpMW.AuthMiddleware

	RealtimeHandler       *httpH.RealtimeHandler
	MediaHandler          *httpH.MediaHandler
	RecommendationHandler *httpH.RecommendationHandler
	JobHandler            *httpH.JobHandler
	HealthHandler         *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "clipsmith-backend"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		if cfg.MediaHandler != nil {
			protected.POST("/media/:id/labels/detect", cfg.MediaHandler.DetectLabels)
		}

		if cfg.RecommendationHandler != nil {
			protected.POST("/media/:id/recommendations/generate", cfg.RecommendationHandler.GenerateForMedia)
			protected.POST("/timelines/:id/recommendations/generate", cfg.RecommendationHandler.GenerateForTimeline)
			protected.GET("/recommendations/media", cfg.RecommendationHandler.ListMedia)
			protected.GET("/recommendations/timeline", cfg.RecommendationHandler.ListTimeline)
			protected.POST("/recommendations/timeline/:id/accept", cfg.RecommendationHandler.Accept)
			protected.POST("/recommendations/timeline/:id/dismiss", cfg.RecommendationHandler.Dismiss)
		}

		if cfg.JobHandler != nil {
			protected.GET("/jobs/:id", cfg.JobHandler.GetJob)
			protected.POST("/jobs/:id/cancel", cfg.JobHandler.CancelJob)
		}
	}

	return r
}
