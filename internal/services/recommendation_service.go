package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	mediarepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/media"
	recsrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/recs"
	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/recs/overlap"
)

// GenerateRequest carries the tunable generation inputs straight into the job
// payload; the pipeline owns validation and canonicalization.
type GenerateRequest struct {
	Strategies []string           `json:"strategies,omitempty"`
	Weights    map[string]float64 `json:"weights,omitempty"`
	Filter     map[string]any     `json:"filter,omitempty"`
	Search     map[string]any     `json:"search,omitempty"`
	TargetMode string             `json:"target_mode,omitempty"`
	SeedClipID *uuid.UUID         `json:"seed_clip_id,omitempty"`
	MaxResults int                `json:"max_results,omitempty"`
}

type RecommendationService interface {
	GenerateForMedia(dbc dbctx.Context, ownerUserID, workspaceID, mediaID uuid.UUID, req GenerateRequest) (*types.JobRun, bool, error)
	GenerateForTimeline(dbc dbctx.Context, ownerUserID, workspaceID, timelineID uuid.UUID, req GenerateRequest) (*types.JobRun, bool, error)
	ListMedia(dbc dbctx.Context, queryHash string) ([]*types.MediaRecommendation, error)
	ListTimeline(dbc dbctx.Context, queryHash string) ([]*types.TimelineRecommendation, error)
	Accept(dbc dbctx.Context, recID uuid.UUID) (*types.TimelineRecommendation, error)
	Dismiss(dbc dbctx.Context, recID uuid.UUID) (*types.TimelineRecommendation, error)
}

type recommendationService struct {
	db            *gorm.DB
	log           *logger.Logger
	jobs          JobService
	mediaClips    mediarepos.MediaClipRepo
	timelineClips mediarepos.TimelineClipRepo
	mediaRecs     recsrepos.MediaRecommendationRepo
	timelineRecs  recsrepos.TimelineRecommendationRepo
}

func NewRecommendationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	jobs JobService,
	mediaClips mediarepos.MediaClipRepo,
	timelineClips mediarepos.TimelineClipRepo,
	mediaRecs recsrepos.MediaRecommendationRepo,
	timelineRecs recsrepos.TimelineRecommendationRepo,
) RecommendationService {
	return &recommendationService{
		db:            db,
		log:           baseLog.With("service", "RecommendationService"),
		jobs:          jobs,
		mediaClips:    mediaClips,
		timelineClips: timelineClips,
		mediaRecs:     mediaRecs,
		timelineRecs:  timelineRecs,
	}
}

func (s *recommendationService) GenerateForMedia(dbc dbctx.Context, ownerUserID, workspaceID, mediaID uuid.UUID, req GenerateRequest) (*types.JobRun, bool, error) {
	if workspaceID == uuid.Nil || mediaID == uuid.Nil {
		return nil, false, fmt.Errorf("missing workspace or media id")
	}
	payload := generatePayload(req)
	payload["workspace_id"] = workspaceID.String()
	payload["media_id"] = mediaID.String()
	entityID := mediaID
	return s.jobs.Enqueue(dbc, ownerUserID, "media_recommend", "media_asset", &entityID, payload)
}

func (s *recommendationService) GenerateForTimeline(dbc dbctx.Context, ownerUserID, workspaceID, timelineID uuid.UUID, req GenerateRequest) (*types.JobRun, bool, error) {
	if workspaceID == uuid.Nil || timelineID == uuid.Nil {
		return nil, false, fmt.Errorf("missing workspace or timeline id")
	}
	payload := generatePayload(req)
	payload["workspace_id"] = workspaceID.String()
	payload["timeline_id"] = timelineID.String()
	if req.TargetMode != "" {
		payload["target_mode"] = req.TargetMode
	}
	if req.SeedClipID != nil && *req.SeedClipID != uuid.Nil {
		payload["seed_clip_id"] = req.SeedClipID.String()
	}
	entityID := timelineID
	return s.jobs.Enqueue(dbc, ownerUserID, "timeline_recommend", "timeline", &entityID, payload)
}

func generatePayload(req GenerateRequest) map[string]any {
	payload := map[string]any{}
	if len(req.Strategies) > 0 {
		payload["strategies"] = req.Strategies
	}
	if len(req.Weights) > 0 {
		payload["weights"] = req.Weights
	}
	if len(req.Filter) > 0 {
		payload["filter"] = req.Filter
	}
	if len(req.Search) > 0 {
		payload["search"] = req.Search
	}
	if req.MaxResults > 0 {
		payload["max_results"] = req.MaxResults
	}
	return payload
}

func (s *recommendationService) ListMedia(dbc dbctx.Context, queryHash string) ([]*types.MediaRecommendation, error) {
	if queryHash == "" {
		return nil, fmt.Errorf("missing query_hash")
	}
	return s.mediaRecs.ListRanked(dbc, queryHash)
}

func (s *recommendationService) ListTimeline(dbc dbctx.Context, queryHash string) ([]*types.TimelineRecommendation, error) {
	if queryHash == "" {
		return nil, fmt.Errorf("missing query_hash")
	}
	return s.timelineRecs.ListRanked(dbc, queryHash)
}

// Accept materializes a timeline recommendation: the referenced media clip is
// placed on the timeline as a real TimelineClip, the new clip is linked back,
// and AcceptedAt is stamped. From then on regeneration leaves the row alone.
// Accepting an already-accepted recommendation is a no-op.
func (s *recommendationService) Accept(dbc dbctx.Context, recID uuid.UUID) (*types.TimelineRecommendation, error) {
	rec, err := s.timelineRecs.GetByID(dbc, recID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("recommendation %s not found", recID)
	}
	if rec.AcceptedAt != nil {
		return rec, nil
	}

	mc, err := s.mediaClips.GetByID(dbc, rec.MediaClipRef)
	if err != nil {
		return nil, fmt.Errorf("load media clip: %w", err)
	}
	if mc == nil {
		return nil, fmt.Errorf("media clip %s not found", rec.MediaClipRef)
	}

	err = s.inTx(dbc, func(txc dbctx.Context) error {
		existing, err := s.timelineClips.ListByTimeline(txc, rec.TimelineRef)
		if err != nil {
			return fmt.Errorf("load timeline clips: %w", err)
		}

		if rec.TargetMode == types.TargetModeReplace && rec.SeedClipRef != nil {
			for _, tc := range existing {
				if tc != nil && tc.MediaClipRef == *rec.SeedClipRef {
					if err := s.timelineClips.Delete(txc, tc.ID); err != nil {
						return fmt.Errorf("remove replaced clip: %w", err)
					}
				}
			}
			existing, err = s.timelineClips.ListByTimeline(txc, rec.TimelineRef)
			if err != nil {
				return fmt.Errorf("reload timeline clips: %w", err)
			}
		}

		occupied := make([]types.TimelineClip, 0, len(existing))
		for _, tc := range existing {
			if tc != nil {
				occupied = append(occupied, *tc)
			}
		}
		r := overlap.Range{Start: mc.Start, End: mc.End}
		if overlap.Collides(r, overlap.Occupied(occupied)) {
			return fmt.Errorf("clip [%v, %v) collides with existing timeline content", mc.Start, mc.End)
		}

		clip := &types.TimelineClip{
			TimelineRef:  rec.TimelineRef,
			MediaClipRef: rec.MediaClipRef,
			Start:        mc.Start,
			End:          mc.End,
		}
		created, err := s.timelineClips.Create(txc, []*types.TimelineClip{clip})
		if err != nil {
			return fmt.Errorf("create timeline clip: %w", err)
		}

		now := time.Now()
		return s.timelineRecs.UpdateFields(txc, rec.ID, map[string]interface{}{
			"accepted_at":       now,
			"dismissed_at":      nil,
			"timeline_clip_ref": created[0].ID,
			"updated_at":        now,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.timelineRecs.GetByID(dbc, recID)
}

// Dismiss stamps DismissedAt. Dismissing an accepted recommendation is
// rejected; the materialized clip would be orphaned silently.
func (s *recommendationService) Dismiss(dbc dbctx.Context, recID uuid.UUID) (*types.TimelineRecommendation, error) {
	rec, err := s.timelineRecs.GetByID(dbc, recID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("recommendation %s not found", recID)
	}
	if rec.AcceptedAt != nil {
		return nil, fmt.Errorf("recommendation %s is accepted; remove the timeline clip instead", recID)
	}
	if rec.DismissedAt != nil {
		return rec, nil
	}
	now := time.Now()
	if err := s.timelineRecs.UpdateFields(dbc, rec.ID, map[string]interface{}{
		"dismissed_at": now,
		"updated_at":   now,
	}); err != nil {
		return nil, err
	}
	return s.timelineRecs.GetByID(dbc, recID)
}

// inTx runs fn inside the caller's transaction when one is supplied, otherwise
// inside a fresh one.
func (s *recommendationService) inTx(dbc dbctx.Context, fn func(txc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}
