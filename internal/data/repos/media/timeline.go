package media

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type TimelineRepo interface {
	Create(dbc dbctx.Context, tl *types.Timeline) (*types.Timeline, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Timeline, error)
	ListByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.Timeline, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type timelineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimelineRepo(db *gorm.DB, baseLog *logger.Logger) TimelineRepo {
	return &timelineRepo{
		db:  db,
		log: baseLog.With("repo", "TimelineRepo"),
	}
}

func (r *timelineRepo) Create(dbc dbctx.Context, tl *types.Timeline) (*types.Timeline, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(tl).Error; err != nil {
		return nil, err
	}
	return tl, nil
}

func (r *timelineRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Timeline, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var tl types.Timeline
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&tl).Error
	if err != nil {
		return nil, err
	}
	if tl.ID == uuid.Nil {
		return nil, nil
	}
	return &tl, nil
}

func (r *timelineRepo) ListByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.Timeline, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Timeline
	if workspaceID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("workspace_ref = ?", workspaceID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *timelineRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Timeline{}).
		Where("id = ?", id).
		Updates(updates).Error
}
