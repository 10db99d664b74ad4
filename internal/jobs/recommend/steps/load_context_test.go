package steps

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	labelrepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/labels"
	mediarepos "github.com/clipsmith/clipsmith-backend/internal/data/repos/media"
	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

type fakeWorkspaceRepo struct {
	mediarepos.WorkspaceRepo
	ws *types.Workspace
}

func (f *fakeWorkspaceRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Workspace, error) {
	if f.ws != nil && f.ws.ID == id {
		return f.ws, nil
	}
	return nil, nil
}

type fakeMediaAssetRepo struct {
	mediarepos.MediaAssetRepo
	asset *types.MediaAsset
}

func (f *fakeMediaAssetRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.MediaAsset, error) {
	if f.asset != nil && f.asset.ID == id {
		return f.asset, nil
	}
	return nil, nil
}

type fakeMediaClipRepo struct {
	mediarepos.MediaClipRepo
	clips []*types.MediaClip
}

func (f *fakeMediaClipRepo) ListByMedia(_ dbctx.Context, _ uuid.UUID) ([]*types.MediaClip, error) {
	return f.clips, nil
}

type fakeLabelClipRepo struct {
	labelrepos.LabelClipRepo
	clips []*types.LabelClip
}

func (f *fakeLabelClipRepo) ListByMedia(_ dbctx.Context, _ uuid.UUID) ([]*types.LabelClip, error) {
	return f.clips, nil
}

type fakeTimelineRepo struct {
	mediarepos.TimelineRepo
	tl *types.Timeline
}

func (f *fakeTimelineRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Timeline, error) {
	if f.tl != nil && f.tl.ID == id {
		return f.tl, nil
	}
	return nil, nil
}

type fakeTimelineClipRepo struct {
	mediarepos.TimelineClipRepo
	clips []*types.TimelineClip
}

func (f *fakeTimelineClipRepo) ListByTimeline(_ dbctx.Context, _ uuid.UUID) ([]*types.TimelineClip, error) {
	return f.clips, nil
}

type fakeLabelEntityRepo struct {
	labelrepos.LabelEntityRepo
}

func (f *fakeLabelEntityRepo) GetByIDs(_ dbctx.Context, _ []uuid.UUID) ([]*types.LabelEntity, error) {
	return nil, nil
}

func loadDeps(t *testing.T, ws *types.Workspace, asset *types.MediaAsset, labels []*types.LabelClip) LoadMediaContextDeps {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return LoadMediaContextDeps{
		DB:         &gorm.DB{},
		Log:        log,
		Workspaces: &fakeWorkspaceRepo{ws: ws},
		Media:      &fakeMediaAssetRepo{asset: asset},
		MediaClips: &fakeMediaClipRepo{},
		LabelClips: &fakeLabelClipRepo{clips: labels},
		Entities:   &fakeLabelEntityRepo{},
	}
}

func TestLoadMediaContext_MissingWorkspaceFails(t *testing.T) {
	deps := loadDeps(t, nil, nil, nil)
	_, err := LoadMediaContext(context.Background(), deps, LoadMediaContextInput{
		WorkspaceID: uuid.New(),
		MediaID:     uuid.New(),
	})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error for missing workspace, got %v", err)
	}
}

func TestLoadMediaContext_MissingAssetFails(t *testing.T) {
	ws := &types.Workspace{ID: uuid.New()}
	deps := loadDeps(t, ws, nil, nil)
	_, err := LoadMediaContext(context.Background(), deps, LoadMediaContextInput{
		WorkspaceID: ws.ID,
		MediaID:     uuid.New(),
	})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error for missing media asset, got %v", err)
	}
}

func TestLoadTimelineContext_MissingTimelineFails(t *testing.T) {
	ws := &types.Workspace{ID: uuid.New()}
	deps := LoadTimelineContextDeps{
		LoadMediaContextDeps: loadDeps(t, ws, nil, nil),
		Timelines:            &fakeTimelineRepo{},
		TimelineClips:        &fakeTimelineClipRepo{},
	}
	_, err := LoadTimelineContext(context.Background(), deps, LoadTimelineContextInput{
		WorkspaceID: ws.ID,
		TimelineID:  uuid.New(),
	})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error for missing timeline, got %v", err)
	}
}

func TestLoadTimelineContext_MissingAssetFails(t *testing.T) {
	ws := &types.Workspace{ID: uuid.New()}
	tl := &types.Timeline{ID: uuid.New(), WorkspaceRef: ws.ID, MediaRef: uuid.New()}
	deps := LoadTimelineContextDeps{
		LoadMediaContextDeps: loadDeps(t, ws, nil, nil),
		Timelines:            &fakeTimelineRepo{tl: tl},
		TimelineClips:        &fakeTimelineClipRepo{},
	}
	_, err := LoadTimelineContext(context.Background(), deps, LoadTimelineContextInput{
		WorkspaceID: ws.ID,
		TimelineID:  tl.ID,
	})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error for missing media asset, got %v", err)
	}
}

// The label-type filter narrows candidate emission, not the snapshot itself:
// occurrence counts and temporal statistics over the full label set must not
// shrink just because a run asks for a subset of types.
func TestLoadMediaContext_SnapshotKeepsAllLabelTypes(t *testing.T) {
	ws := &types.Workspace{ID: uuid.New()}
	asset := &types.MediaAsset{ID: uuid.New(), WorkspaceRef: ws.ID, LabelVersion: 3}
	labels := []*types.LabelClip{
		{ID: uuid.New(), MediaRef: asset.ID, LabelType: types.LabelTypeObject, Start: 0, End: 2, Confidence: 0.9},
		{ID: uuid.New(), MediaRef: asset.ID, LabelType: types.LabelTypeSpeech, Start: 1, End: 3, Confidence: 0.8},
		{ID: uuid.New(), MediaRef: asset.ID, LabelType: types.LabelTypeShot, Start: 0, End: 4, Confidence: 1.0},
	}
	deps := loadDeps(t, ws, asset, labels)

	out, err := LoadMediaContext(context.Background(), deps, LoadMediaContextInput{
		WorkspaceID: ws.ID,
		MediaID:     asset.ID,
		Params: GenerateParams{
			Filter: &strategy.FilterParams{LabelTypes: []string{types.LabelTypeObject}},
		},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out.Ctx.LabelClips) != len(labels) {
		t.Fatalf("snapshot narrowed to %d label clips, want all %d", len(out.Ctx.LabelClips), len(labels))
	}
	if got := out.Ctx.Filter.LabelTypes; len(got) != 1 || got[0] != types.LabelTypeObject {
		t.Fatalf("filter params lost: %v", got)
	}
	if out.Version != asset.LabelVersion {
		t.Fatalf("version = %d, want %d", out.Version, asset.LabelVersion)
	}
}
