package media

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type WorkspaceRepo interface {
	Create(dbc dbctx.Context, ws *types.Workspace) (*types.Workspace, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Workspace, error)
	List(dbc dbctx.Context) ([]*types.Workspace, error)
}

type workspaceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkspaceRepo(db *gorm.DB, baseLog *logger.Logger) WorkspaceRepo {
	return &workspaceRepo{
		db:  db,
		log: baseLog.With("repo", "WorkspaceRepo"),
	}
}

func (r *workspaceRepo) Create(dbc dbctx.Context, ws *types.Workspace) (*types.Workspace, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(ws).Error; err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *workspaceRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Workspace, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var ws types.Workspace
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&ws).Error
	if err != nil {
		return nil, err
	}
	if ws.ID == uuid.Nil {
		return nil, nil
	}
	return &ws, nil
}

func (r *workspaceRepo) List(dbc dbctx.Context) ([]*types.Workspace, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Workspace
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
