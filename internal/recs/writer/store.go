package writer

import (
	"context"

	"github.com/google/uuid"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

// MediaFilter is a typed identity predicate for media recommendations. The
// store adapter translates it to its native query form; nothing here is ever
// string-concatenated into a query.
type MediaFilter struct {
	QueryHash string
	Start     *float64
	End       *float64
}

// TimelineFilter is the typed identity predicate for timeline recommendations.
type TimelineFilter struct {
	QueryHash    string
	MediaClipRef *uuid.UUID
}

// MediaStore is the persistence contract the media writer needs. Implemented
// by the gorm repo in production and by an in-memory fake in tests.
type MediaStore interface {
	GetFirst(ctx context.Context, f MediaFilter) (*types.MediaRecommendation, error)
	ListByQueryHash(ctx context.Context, queryHash string) ([]*types.MediaRecommendation, error)
	Create(ctx context.Context, rec *types.MediaRecommendation) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TimelineStore is the persistence contract the timeline writer needs.
type TimelineStore interface {
	GetFirst(ctx context.Context, f TimelineFilter) (*types.TimelineRecommendation, error)
	ListByQueryHash(ctx context.Context, queryHash string) ([]*types.TimelineRecommendation, error)
	Create(ctx context.Context, rec *types.TimelineRecommendation) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Result counts what a write cycle did. Generated output for the caller is
// Created + Updated.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Pruned  int `json:"pruned"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}
