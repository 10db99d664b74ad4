package recs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/recs/writer"
)

type TimelineRecommendationRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TimelineRecommendation, error)
	GetFirst(dbc dbctx.Context, f writer.TimelineFilter) (*types.TimelineRecommendation, error)
	ListByQueryHash(dbc dbctx.Context, queryHash string) ([]*types.TimelineRecommendation, error)
	ListRanked(dbc dbctx.Context, queryHash string) ([]*types.TimelineRecommendation, error)
	ListByTimeline(dbc dbctx.Context, timelineID uuid.UUID) ([]*types.TimelineRecommendation, error)
	Create(dbc dbctx.Context, rec *types.TimelineRecommendation) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type timelineRecommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimelineRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) TimelineRecommendationRepo {
	return &timelineRecommendationRepo{
		db:  db,
		log: baseLog.With("repo", "TimelineRecommendationRepo"),
	}
}

func (r *timelineRecommendationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TimelineRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var rec types.TimelineRecommendation
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == uuid.Nil {
		return nil, nil
	}
	return &rec, nil
}

func (r *timelineRecommendationRepo) GetFirst(dbc dbctx.Context, f writer.TimelineFilter) (*types.TimelineRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if f.QueryHash == "" {
		return nil, nil
	}
	q := transaction.WithContext(dbc.Ctx).Where("query_hash = ?", f.QueryHash)
	if f.MediaClipRef != nil {
		q = q.Where("media_clip_ref = ?", *f.MediaClipRef)
	}
	var rec types.TimelineRecommendation
	err := q.Limit(1).Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == uuid.Nil {
		return nil, nil
	}
	return &rec, nil
}

func (r *timelineRecommendationRepo) ListByQueryHash(dbc dbctx.Context, queryHash string) ([]*types.TimelineRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TimelineRecommendation
	if queryHash == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("query_hash = ?", queryHash).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *timelineRecommendationRepo) ListRanked(dbc dbctx.Context, queryHash string) ([]*types.TimelineRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TimelineRecommendation
	if queryHash == "" {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("query_hash = ?", queryHash).
		Order("rank ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *timelineRecommendationRepo) ListByTimeline(dbc dbctx.Context, timelineID uuid.UUID) ([]*types.TimelineRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TimelineRecommendation
	if timelineID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("timeline_ref = ?", timelineID).
		Order("rank ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *timelineRecommendationRepo) Create(dbc dbctx.Context, rec *types.TimelineRecommendation) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(rec).Error
}

func (r *timelineRecommendationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.TimelineRecommendation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *timelineRecommendationRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.TimelineRecommendation{}).Error
}

// TimelineStore adapts the repo to the writer's store contract.
type timelineStore struct {
	repo TimelineRecommendationRepo
}

func NewTimelineStore(repo TimelineRecommendationRepo) writer.TimelineStore {
	return &timelineStore{repo: repo}
}

func (s *timelineStore) GetFirst(ctx context.Context, f writer.TimelineFilter) (*types.TimelineRecommendation, error) {
	return s.repo.GetFirst(dbctx.Context{Ctx: ctx}, f)
}

func (s *timelineStore) ListByQueryHash(ctx context.Context, queryHash string) ([]*types.TimelineRecommendation, error) {
	return s.repo.ListByQueryHash(dbctx.Context{Ctx: ctx}, queryHash)
}

func (s *timelineStore) Create(ctx context.Context, rec *types.TimelineRecommendation) error {
	return s.repo.Create(dbctx.Context{Ctx: ctx}, rec)
}

func (s *timelineStore) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return s.repo.UpdateFields(dbctx.Context{Ctx: ctx}, id, updates)
}

func (s *timelineStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(dbctx.Context{Ctx: ctx}, id)
}
