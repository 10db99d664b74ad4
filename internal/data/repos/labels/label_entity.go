package labels

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type LabelEntityRepo interface {
	Create(dbc dbctx.Context, entities []*types.LabelEntity) ([]*types.LabelEntity, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.LabelEntity, error)
	GetByName(dbc dbctx.Context, workspaceID uuid.UUID, name string) (*types.LabelEntity, error)
	Upsert(dbc dbctx.Context, workspaceID uuid.UUID, name, kind string) (*types.LabelEntity, error)
}

type labelEntityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLabelEntityRepo(db *gorm.DB, baseLog *logger.Logger) LabelEntityRepo {
	return &labelEntityRepo{
		db:  db,
		log: baseLog.With("repo", "LabelEntityRepo"),
	}
}

func (r *labelEntityRepo) Create(dbc dbctx.Context, entities []*types.LabelEntity) ([]*types.LabelEntity, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entities) == 0 {
		return []*types.LabelEntity{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *labelEntityRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.LabelEntity, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LabelEntity
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *labelEntityRepo) GetByName(dbc dbctx.Context, workspaceID uuid.UUID, name string) (*types.LabelEntity, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if workspaceID == uuid.Nil || name == "" {
		return nil, nil
	}
	var entity types.LabelEntity
	err := transaction.WithContext(dbc.Ctx).
		Where("workspace_ref = ? AND name = ?", workspaceID, name).
		Limit(1).
		Find(&entity).Error
	if err != nil {
		return nil, err
	}
	if entity.ID == uuid.Nil {
		return nil, nil
	}
	return &entity, nil
}

// Upsert resolves the canonical entity row for a (workspace, name) pair,
// creating it on first sight. Ingest calls this once per distinct entity in an
// annotation batch.
func (r *labelEntityRepo) Upsert(dbc dbctx.Context, workspaceID uuid.UUID, name, kind string) (*types.LabelEntity, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if workspaceID == uuid.Nil || name == "" {
		return nil, nil
	}
	entity := &types.LabelEntity{
		ID:           uuid.New(),
		WorkspaceRef: workspaceID,
		Name:         name,
		Kind:         kind,
	}
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "workspace_ref"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(entity).Error
	if err != nil {
		return nil, err
	}
	return r.GetByName(dbc, workspaceID, name)
}
