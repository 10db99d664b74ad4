package recs

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/data/repos/testutil"
	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/dbctx"
	"github.com/clipsmith/clipsmith-backend/internal/recs/writer"
)

func mediaRec(workspaceID, mediaID uuid.UUID, hash string, start, end, score float64, rank int) *types.MediaRecommendation {
	return &types.MediaRecommendation{
		ID:           uuid.New(),
		WorkspaceRef: workspaceID,
		MediaRef:     mediaID,
		QueryHash:    hash,
		Start:        start,
		End:          end,
		Score:        score,
		Rank:         rank,
		Strategy:     "same_entity",
	}
}

func TestMediaRecommendationRepo_GetFirstMatchesSegmentIdentity(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewMediaRecommendationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	ws, media := uuid.New(), uuid.New()
	hash := "aaaa0000aaaa0000aaaa0000aaaa0000"
	a := mediaRec(ws, media, hash, 1.0, 3.5, 0.8, 1)
	b := mediaRec(ws, media, hash, 3.5, 6.0, 0.6, 2)
	for _, rec := range []*types.MediaRecommendation{a, b} {
		if err := repo.Create(dbc, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	start, end := 3.5, 6.0
	got, err := repo.GetFirst(dbc, writer.MediaFilter{QueryHash: hash, Start: &start, End: &end})
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	if got == nil || got.ID != b.ID {
		t.Fatalf("expected rec %s for segment (3.5, 6.0), got %+v", b.ID, got)
	}

	missing := 9.0
	got, err = repo.GetFirst(dbc, writer.MediaFilter{QueryHash: hash, Start: &missing, End: &missing})
	if err != nil {
		t.Fatalf("get first missing: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown segment, got %+v", got)
	}

	got, err = repo.GetFirst(dbc, writer.MediaFilter{QueryHash: "other", Start: &start, End: &end})
	if err != nil {
		t.Fatalf("get first other hash: %v", err)
	}
	if got != nil {
		t.Fatalf("identity is scoped to the query hash, got %+v", got)
	}
}

func TestMediaRecommendationRepo_ListRankedOrders(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewMediaRecommendationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	ws, media := uuid.New(), uuid.New()
	hash := "bbbb0000bbbb0000bbbb0000bbbb0000"
	third := mediaRec(ws, media, hash, 6.0, 8.0, 0.3, 3)
	first := mediaRec(ws, media, hash, 0.0, 2.0, 0.9, 1)
	second := mediaRec(ws, media, hash, 2.0, 4.0, 0.7, 2)
	for _, rec := range []*types.MediaRecommendation{third, first, second} {
		if err := repo.Create(dbc, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	out, err := repo.ListRanked(dbc, hash)
	if err != nil {
		t.Fatalf("list ranked: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 recs, got %d", len(out))
	}
	for i, want := range []uuid.UUID{first.ID, second.ID, third.ID} {
		if out[i].ID != want {
			t.Fatalf("rank order wrong at %d: got %s want %s", i, out[i].ID, want)
		}
	}
}

func TestMediaRecommendationRepo_DuplicateIdentityRejected(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewMediaRecommendationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	ws, media := uuid.New(), uuid.New()
	hash := "eeee0000eeee0000eeee0000eeee0000"
	if err := repo.Create(dbc, mediaRec(ws, media, hash, 1.0, 3.0, 0.8, 1)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(dbc, mediaRec(ws, media, hash, 1.0, 3.0, 0.9, 2)); err == nil {
		t.Fatalf("expected duplicate (query_hash, start, end) to be rejected")
	}
}

func TestMediaRecommendationRepo_PrunedIdentityCanBeRecreated(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewMediaRecommendationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	ws, media := uuid.New(), uuid.New()
	hash := "ffff0000ffff0000ffff0000ffff0000"
	old := mediaRec(ws, media, hash, 1.0, 3.0, 0.8, 1)
	if err := repo.Create(dbc, old); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(dbc, old.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Soft-deleted rows stay out of the identity constraint, so a later run
	// may legitimately re-emit the same segment.
	if err := repo.Create(dbc, mediaRec(ws, media, hash, 1.0, 3.0, 0.7, 1)); err != nil {
		t.Fatalf("recreate after prune: %v", err)
	}
}

func TestTimelineRecommendationRepo_DuplicateIdentityRejected(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewTimelineRecommendationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	ws, tl, clip := uuid.New(), uuid.New(), uuid.New()
	hash := "abab0000abab0000abab0000abab0000"
	first := &types.TimelineRecommendation{
		ID:           uuid.New(),
		WorkspaceRef: ws,
		TimelineRef:  tl,
		QueryHash:    hash,
		MediaClipRef: clip,
		Score:        0.8,
		Rank:         1,
		Strategy:     "same_entity",
	}
	if err := repo.Create(dbc, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := &types.TimelineRecommendation{
		ID:           uuid.New(),
		WorkspaceRef: ws,
		TimelineRef:  tl,
		QueryHash:    hash,
		MediaClipRef: clip,
		Score:        0.9,
		Rank:         2,
		Strategy:     "same_entity",
	}
	if err := repo.Create(dbc, dup); err == nil {
		t.Fatalf("expected duplicate (query_hash, media_clip_ref) to be rejected")
	}
}

func TestMediaRecommendationRepo_DeleteByQueryHashScoped(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewMediaRecommendationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	ws, media := uuid.New(), uuid.New()
	keepHash := "cccc0000cccc0000cccc0000cccc0000"
	dropHash := "dddd0000dddd0000dddd0000dddd0000"
	keep := mediaRec(ws, media, keepHash, 0.0, 2.0, 0.9, 1)
	drop := mediaRec(ws, media, dropHash, 0.0, 2.0, 0.9, 1)
	for _, rec := range []*types.MediaRecommendation{keep, drop} {
		if err := repo.Create(dbc, rec); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := repo.DeleteByQueryHash(dbc, dropHash); err != nil {
		t.Fatalf("delete by hash: %v", err)
	}
	gone, err := repo.ListByQueryHash(dbc, dropHash)
	if err != nil {
		t.Fatalf("list dropped: %v", err)
	}
	if len(gone) != 0 {
		t.Fatalf("expected dropped hash empty, got %d", len(gone))
	}
	kept, err := repo.ListByQueryHash(dbc, keepHash)
	if err != nil {
		t.Fatalf("list kept: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("expected other hash untouched, got %d", len(kept))
	}
}
