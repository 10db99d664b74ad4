package media

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type TimelineClipRepo interface {
	Create(dbc dbctx.Context, clips []*types.TimelineClip) ([]*types.TimelineClip, error)
	ListByTimeline(dbc dbctx.Context, timelineID uuid.UUID) ([]*types.TimelineClip, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type timelineClipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimelineClipRepo(db *gorm.DB, baseLog *logger.Logger) TimelineClipRepo {
	return &timelineClipRepo{
		db:  db,
		log: baseLog.With("repo", "TimelineClipRepo"),
	}
}

func (r *timelineClipRepo) Create(dbc dbctx.Context, clips []*types.TimelineClip) ([]*types.TimelineClip, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(clips) == 0 {
		return []*types.TimelineClip{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&clips).Error; err != nil {
		return nil, err
	}
	return clips, nil
}

func (r *timelineClipRepo) ListByTimeline(dbc dbctx.Context, timelineID uuid.UUID) ([]*types.TimelineClip, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TimelineClip
	if timelineID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("timeline_ref = ?", timelineID).
		Order("start ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *timelineClipRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.TimelineClip{}).Error
}
