package labels

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type LabelClipRepo interface {
	Create(dbc dbctx.Context, clips []*types.LabelClip) ([]*types.LabelClip, error)
	ListByMedia(dbc dbctx.Context, mediaID uuid.UUID) ([]*types.LabelClip, error)
	DeleteByMedia(dbc dbctx.Context, mediaID uuid.UUID) error
}

type labelClipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLabelClipRepo(db *gorm.DB, baseLog *logger.Logger) LabelClipRepo {
	return &labelClipRepo{
		db:  db,
		log: baseLog.With("repo", "LabelClipRepo"),
	}
}

func (r *labelClipRepo) Create(dbc dbctx.Context, clips []*types.LabelClip) ([]*types.LabelClip, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(clips) == 0 {
		return []*types.LabelClip{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&clips).Error; err != nil {
		return nil, err
	}
	return clips, nil
}

func (r *labelClipRepo) ListByMedia(dbc dbctx.Context, mediaID uuid.UUID) ([]*types.LabelClip, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.LabelClip
	if mediaID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("media_ref = ?", mediaID).
		Order("start ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByMedia clears previous detection output before a re-ingest writes a
// fresh label set for the asset.
func (r *labelClipRepo) DeleteByMedia(dbc dbctx.Context, mediaID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if mediaID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("media_ref = ?", mediaID).
		Delete(&types.LabelClip{}).Error
}
