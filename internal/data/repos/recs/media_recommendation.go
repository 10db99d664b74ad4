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

type MediaRecommendationRepo interface {
	GetFirst(dbc dbctx.Context, f writer.MediaFilter) (*types.MediaRecommendation, error)
	ListByQueryHash(dbc dbctx.Context, queryHash string) ([]*types.MediaRecommendation, error)
	ListRanked(dbc dbctx.Context, queryHash string) ([]*types.MediaRecommendation, error)
	Create(dbc dbctx.Context, rec *types.MediaRecommendation) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	DeleteByQueryHash(dbc dbctx.Context, queryHash string) error
}

type mediaRecommendationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMediaRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) MediaRecommendationRepo {
	return &mediaRecommendationRepo{
		db:  db,
		log: baseLog.With("repo", "MediaRecommendationRepo"),
	}
}

func (r *mediaRecommendationRepo) GetFirst(dbc dbctx.Context, f writer.MediaFilter) (*types.MediaRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if f.QueryHash == "" {
		return nil, nil
	}
	q := transaction.WithContext(dbc.Ctx).Where("query_hash = ?", f.QueryHash)
	if f.Start != nil {
		q = q.Where("start = ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where(`"end" = ?`, *f.End)
	}
	var rec types.MediaRecommendation
	err := q.Limit(1).Find(&rec).Error
	if err != nil {
		return nil, err
	}
	if rec.ID == uuid.Nil {
		return nil, nil
	}
	return &rec, nil
}

func (r *mediaRecommendationRepo) ListByQueryHash(dbc dbctx.Context, queryHash string) ([]*types.MediaRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MediaRecommendation
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

func (r *mediaRecommendationRepo) ListRanked(dbc dbctx.Context, queryHash string) ([]*types.MediaRecommendation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MediaRecommendation
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

func (r *mediaRecommendationRepo) Create(dbc dbctx.Context, rec *types.MediaRecommendation) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(rec).Error
}

func (r *mediaRecommendationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.MediaRecommendation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *mediaRecommendationRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.MediaRecommendation{}).Error
}

func (r *mediaRecommendationRepo) DeleteByQueryHash(dbc dbctx.Context, queryHash string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if queryHash == "" {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("query_hash = ?", queryHash).
		Delete(&types.MediaRecommendation{}).Error
}

// MediaStore adapts the repo to the writer's store contract.
type mediaStore struct {
	repo MediaRecommendationRepo
}

func NewMediaStore(repo MediaRecommendationRepo) writer.MediaStore {
	return &mediaStore{repo: repo}
}

func (s *mediaStore) GetFirst(ctx context.Context, f writer.MediaFilter) (*types.MediaRecommendation, error) {
	return s.repo.GetFirst(dbctx.Context{Ctx: ctx}, f)
}

func (s *mediaStore) ListByQueryHash(ctx context.Context, queryHash string) ([]*types.MediaRecommendation, error) {
	return s.repo.ListByQueryHash(dbctx.Context{Ctx: ctx}, queryHash)
}

func (s *mediaStore) Create(ctx context.Context, rec *types.MediaRecommendation) error {
	return s.repo.Create(dbctx.Context{Ctx: ctx}, rec)
}

func (s *mediaStore) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return s.repo.UpdateFields(dbctx.Context{Ctx: ctx}, id, updates)
}

func (s *mediaStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(dbctx.Context{Ctx: ctx}, id)
}
