package media

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type MediaAssetRepo interface {
	Create(dbc dbctx.Context, asset *types.MediaAsset) (*types.MediaAsset, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MediaAsset, error)
	ListByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.MediaAsset, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	BumpLabelVersion(dbc dbctx.Context, id uuid.UUID) (int, error)
}

type mediaAssetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMediaAssetRepo(db *gorm.DB, baseLog *logger.Logger) MediaAssetRepo {
	return &mediaAssetRepo{
		db:  db,
		log: baseLog.With("repo", "MediaAssetRepo"),
	}
}

func (r *mediaAssetRepo) Create(dbc dbctx.Context, asset *types.MediaAsset) (*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(asset).Error; err != nil {
		return nil, err
	}
	return asset, nil
}

func (r *mediaAssetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var asset types.MediaAsset
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&asset).Error
	if err != nil {
		return nil, err
	}
	if asset.ID == uuid.Nil {
		return nil, nil
	}
	return &asset, nil
}

func (r *mediaAssetRepo) ListByWorkspace(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.MediaAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MediaAsset
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

func (r *mediaAssetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.MediaAsset{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// BumpLabelVersion increments the asset's label content version and returns
// the new value. Called once per successful label ingest.
func (r *mediaAssetRepo) BumpLabelVersion(dbc dbctx.Context, id uuid.UUID) (int, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return 0, nil
	}
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.MediaAsset{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"label_version": gorm.Expr("label_version + 1"),
			"updated_at":    time.Now(),
		}).Error
	if err != nil {
		return 0, err
	}
	var asset types.MediaAsset
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&asset).Error; err != nil {
		return 0, err
	}
	return asset.LabelVersion, nil
}
