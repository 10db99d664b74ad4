package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/clients/redis"
	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/sse"
)

type JobNotifier interface {
	JobCreated(userID uuid.UUID, job *types.JobRun)
	JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string)
	JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string)
	JobDone(userID uuid.UUID, job *types.JobRun)
	RecommendationsUpdated(userID uuid.UUID, queryHash string, generated, pruned int)
}

type jobNotifier struct {
	hub *sse.SSEHub
	bus redis.SSEBus
	log *logger.Logger
}

// NewJobNotifier broadcasts job lifecycle events to connected clients. When a
// bus is configured, events go through it so every API replica's hub sees
// them; otherwise they go straight to the local hub.
func NewJobNotifier(hub *sse.SSEHub, bus redis.SSEBus, baseLog *logger.Logger) JobNotifier {
	return &jobNotifier{
		hub: hub,
		bus: bus,
		log: baseLog.With("service", "JobNotifier"),
	}
}

func (n *jobNotifier) broadcast(msg sse.SSEMessage) {
	if n.bus != nil {
		if err := n.bus.Publish(context.Background(), msg); err != nil {
			n.log.Warn("SSE bus publish failed; falling back to local hub", "error", err)
			n.hub.Broadcast(msg)
		}
		return
	}
	n.hub.Broadcast(msg)
}

func (n *jobNotifier) JobCreated(userID uuid.UUID, job *types.JobRun) {
	n.broadcast(sse.SSEMessage{
		Channel: userID.String(),
		Event:   sse.SSEEventJobCreated,
		Data:    map[string]any{"job": job},
	})
}

func (n *jobNotifier) JobProgress(userID uuid.UUID, job *types.JobRun, stage string, progress int, message string) {
	n.broadcast(sse.SSEMessage{
		Channel: userID.String(),
		Event:   sse.SSEEventJobProgress,
		Data: map[string]any{
			"job_id":   job.ID,
			"job_type": job.JobType,
			"stage":    stage,
			"progress": progress,
			"message":  message,
			"job":      job,
		},
	})
}

func (n *jobNotifier) JobFailed(userID uuid.UUID, job *types.JobRun, stage string, errorMessage string) {
	n.broadcast(sse.SSEMessage{
		Channel: userID.String(),
		Event:   sse.SSEEventJobFailed,
		Data: map[string]any{
			"job_id":   job.ID,
			"job_type": job.JobType,
			"stage":    stage,
			"error":    errorMessage,
			"job":      job,
		},
	})
}

func (n *jobNotifier) JobDone(userID uuid.UUID, job *types.JobRun) {
	n.broadcast(sse.SSEMessage{
		Channel: userID.String(),
		Event:   sse.SSEEventJobDone,
		Data: map[string]any{
			"job_id":   job.ID,
			"job_type": job.JobType,
			"job":      job,
		},
	})
}

func (n *jobNotifier) RecommendationsUpdated(userID uuid.UUID, queryHash string, generated, pruned int) {
	n.broadcast(sse.SSEMessage{
		Channel: userID.String(),
		Event:   sse.SSEEventRecommendationsUpdated,
		Data: map[string]any{
			"query_hash": queryHash,
			"generated":  generated,
			"pruned":     pruned,
		},
	})
}
