package media

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type MediaClipRepo interface {
	Create(dbc dbctx.Context, clips []*types.MediaClip) ([]*types.MediaClip, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MediaClip, error)
	ListByMedia(dbc dbctx.Context, mediaID uuid.UUID) ([]*types.MediaClip, error)
}

type mediaClipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMediaClipRepo(db *gorm.DB, baseLog *logger.Logger) MediaClipRepo {
	return &mediaClipRepo{
		db:  db,
		log: baseLog.With("repo", "MediaClipRepo"),
	}
}

func (r *mediaClipRepo) Create(dbc dbctx.Context, clips []*types.MediaClip) ([]*types.MediaClip, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(clips) == 0 {
		return []*types.MediaClip{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&clips).Error; err != nil {
		return nil, err
	}
	return clips, nil
}

func (r *mediaClipRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MediaClip, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var clip types.MediaClip
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&clip).Error
	if err != nil {
		return nil, err
	}
	if clip.ID == uuid.Nil {
		return nil, nil
	}
	return &clip, nil
}

func (r *mediaClipRepo) ListByMedia(dbc dbctx.Context, mediaID uuid.UUID) ([]*types.MediaClip, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.MediaClip
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
