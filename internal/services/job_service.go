package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	jobrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/jobs"
	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/ctxutil"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type JobService interface {
	Enqueue(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, bool, error)
	GetByIDForRequestUser(dbc dbctx.Context, ownerUserID, jobID uuid.UUID) (*types.JobRun, error)
	CancelForRequestUser(dbc dbctx.Context, ownerUserID, jobID uuid.UUID) (*types.JobRun, error)
}

type jobService struct {
	db     *gorm.DB
	log    *logger.Logger
	repo   jobrepos.JobRunRepo
	notify JobNotifier
}

func NewJobService(db *gorm.DB, baseLog *logger.Logger, repo jobrepos.JobRunRepo, notify JobNotifier) JobService {
	return &jobService{
		db:     db,
		log:    baseLog.With("service", "JobService"),
		repo:   repo,
		notify: notify,
	}
}

// Enqueue creates a queued job_run row for the polling worker to claim. A
// runnable duplicate for the same (owner, type, entity) suppresses the insert;
// the second return reports whether a new row was created. Trace identifiers
// from the request context are stashed in the payload so worker-side logs
// correlate.
func (s *jobService) Enqueue(dbc dbctx.Context, ownerUserID uuid.UUID, jobType string, entityType string, entityID *uuid.UUID, payload map[string]any) (*types.JobRun, bool, error) {
	if ownerUserID == uuid.Nil {
		return nil, false, fmt.Errorf("missing owner_user_id")
	}
	if jobType == "" {
		return nil, false, fmt.Errorf("missing job_type")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if td := ctxutil.GetTraceData(dbc.Ctx); td != nil {
		if td.TraceID != "" {
			if _, ok := payload["trace_id"]; !ok {
				payload["trace_id"] = td.TraceID
			}
		}
		if td.RequestID != "" {
			if _, ok := payload["request_id"]; !ok {
				payload["request_id"] = td.RequestID
			}
		}
	}

	exists, err := s.repo.ExistsRunnable(dbc, ownerUserID, jobType, entityType, entityID)
	if err != nil {
		return nil, false, fmt.Errorf("check runnable duplicate: %w", err)
	}
	if exists {
		s.log.Debug("Runnable duplicate suppressed enqueue",
			"owner_user_id", ownerUserID,
			"job_type", jobType,
			"entity_type", entityType,
		)
		return nil, false, nil
	}

	b, _ := json.Marshal(payload)
	now := time.Now()
	job := &types.JobRun{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		JobType:     jobType,
		EntityType:  entityType,
		EntityID:    entityID,
		Status:      types.JobStatusQueued,
		Stage:       "queued",
		Progress:    0,
		Attempts:    0,
		Message:     "Queued",
		Payload:     datatypes.JSON(b),
		Result:      datatypes.JSON([]byte(`{}`)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.repo.Create(dbc, []*types.JobRun{job}); err != nil {
		return nil, false, fmt.Errorf("create job: %w", err)
	}
	if s.notify != nil {
		s.notify.JobCreated(ownerUserID, job)
	}
	return job, true, nil
}

func (s *jobService) GetByIDForRequestUser(dbc dbctx.Context, ownerUserID, jobID uuid.UUID) (*types.JobRun, error) {
	job, err := s.getOwned(dbc, ownerUserID, jobID)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// CancelForRequestUser flips a non-terminal job to canceled. The guard on the
// status write means a run that reached a terminal state first wins; the job
// is re-read and returned either way.
func (s *jobService) CancelForRequestUser(dbc dbctx.Context, ownerUserID, jobID uuid.UUID) (*types.JobRun, error) {
	job, err := s.getOwned(dbc, ownerUserID, jobID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	_, err = s.repo.UpdateFieldsUnlessStatus(dbc, job.ID,
		[]string{types.JobStatusSucceeded, types.JobStatusFailed, types.JobStatusCanceled},
		map[string]interface{}{
			"status":     types.JobStatusCanceled,
			"stage":      "canceled",
			"message":    "Canceled by user",
			"locked_at":  nil,
			"updated_at": now,
		})
	if err != nil {
		return nil, fmt.Errorf("cancel job: %w", err)
	}
	return s.getOwned(dbc, ownerUserID, jobID)
}

func (s *jobService) getOwned(dbc dbctx.Context, ownerUserID, jobID uuid.UUID) (*types.JobRun, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("missing job id")
	}
	rows, err := s.repo.GetByIDs(dbc, []uuid.UUID{jobID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0] == nil {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	job := rows[0]
	if ownerUserID != uuid.Nil && job.OwnerUserID != ownerUserID {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	return job, nil
}
