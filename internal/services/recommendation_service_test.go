package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	mediarepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/media"
	recsrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/recs"
	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
)

type fakeTimelineRecRepo struct {
	recsrepos.TimelineRecommendationRepo
	rec *types.TimelineRecommendation
}

func (f *fakeTimelineRecRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.TimelineRecommendation, error) {
	if f.rec != nil && f.rec.ID == id {
		return f.rec, nil
	}
	return nil, nil
}

type fakeMediaClipRepo struct {
	mediarepos.MediaClipRepo
	clip *types.MediaClip
}

func (f *fakeMediaClipRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.MediaClip, error) {
	if f.clip != nil && f.clip.ID == id {
		return f.clip, nil
	}
	return nil, nil
}

func recService(t *testing.T, mediaClips mediarepos.MediaClipRepo, timelineRecs recsrepos.TimelineRecommendationRepo) RecommendationService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return NewRecommendationService(nil, log, nil, mediaClips, nil, nil, timelineRecs)
}

func TestRecommendationService_AcceptUnknownRecommendation(t *testing.T) {
	svc := recService(t, &fakeMediaClipRepo{}, &fakeTimelineRecRepo{})
	dbc := dbctx.Context{Ctx: context.Background()}

	_, err := svc.Accept(dbc, uuid.New())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error for unknown recommendation, got %v", err)
	}
}

func TestRecommendationService_DismissUnknownRecommendation(t *testing.T) {
	svc := recService(t, &fakeMediaClipRepo{}, &fakeTimelineRecRepo{})
	dbc := dbctx.Context{Ctx: context.Background()}

	_, err := svc.Dismiss(dbc, uuid.New())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error for unknown recommendation, got %v", err)
	}
}

// A recommendation may outlive the media clip it points at; accepting it must
// surface the dangling reference as an error, not materialize a bogus clip.
func TestRecommendationService_AcceptDanglingMediaClip(t *testing.T) {
	rec := &types.TimelineRecommendation{
		ID:           uuid.New(),
		TimelineRef:  uuid.New(),
		MediaClipRef: uuid.New(),
	}
	svc := recService(t, &fakeMediaClipRepo{}, &fakeTimelineRecRepo{rec: rec})
	dbc := dbctx.Context{Ctx: context.Background()}

	_, err := svc.Accept(dbc, rec.ID)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error for missing media clip, got %v", err)
	}
}
