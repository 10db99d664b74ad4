package writer

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func mediaScope() MediaScope {
	return MediaScope{
		WorkspaceRef: uuid.New(),
		MediaRef:     uuid.New(),
		QueryHash:    "a1b2c3d4e5f60718293a4b5c6d7e8f90",
		Version:      1,
	}
}

func mediaCandidate(start, end, score float64) strategy.MediaCandidate {
	return strategy.MediaCandidate{
		Start:    start,
		End:      end,
		Score:    score,
		Reason:   fmt.Sprintf("segment [%.0f, %.0f)", start, end),
		Strategy: strategy.NameSameEntity,
	}
}

func TestMediaWriter_CreatesRankedRows(t *testing.T) {
	store := newFakeMediaStore()
	w := NewMediaWriter(store, testLogger(t), 0)
	scope := mediaScope()

	cands := []strategy.MediaCandidate{
		mediaCandidate(0, 5, 0.5),
		mediaCandidate(10, 15, 0.9),
		mediaCandidate(20, 25, 0.7),
	}
	res, err := w.Write(context.Background(), scope, cands)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if res.Created != 3 || res.Updated != 0 || res.Pruned != 0 || res.Total != 3 {
		t.Fatalf("wrong result: %+v", res)
	}

	rows, _ := store.ListByQueryHash(context.Background(), scope.QueryHash)
	if len(rows) != 3 {
		t.Fatalf("want 3 rows, got %d", len(rows))
	}
	byRank := map[int]float64{}
	for _, r := range rows {
		byRank[r.Rank] = r.Score
	}
	if byRank[0] != 0.9 || byRank[1] != 0.7 || byRank[2] != 0.5 {
		t.Fatalf("ranks do not follow score order: %#v", byRank)
	}
}

func TestMediaWriter_ScopeMaxResultsOverridesCap(t *testing.T) {
	store := newFakeMediaStore()
	w := NewMediaWriter(store, testLogger(t), 10)
	scope := mediaScope()
	scope.MaxResults = 2

	cands := []strategy.MediaCandidate{
		mediaCandidate(0, 5, 0.5),
		mediaCandidate(10, 15, 0.9),
		mediaCandidate(20, 25, 0.7),
	}
	res, err := w.Write(context.Background(), scope, cands)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if res.Created != 2 {
		t.Fatalf("expected override cap of 2, got %+v", res)
	}
	rows, _ := store.ListByQueryHash(context.Background(), scope.QueryHash)
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Score != 0.9 && r.Score != 0.7 {
			t.Fatalf("lowest-scored candidate survived the cap: %+v", r)
		}
	}
}

func TestMediaWriter_MissingQueryHashRejected(t *testing.T) {
	w := NewMediaWriter(newFakeMediaStore(), testLogger(t), 0)
	if _, err := w.Write(context.Background(), MediaScope{}, nil); err == nil {
		t.Fatalf("empty query hash must be rejected")
	}
}

func TestMediaWriter_SecondRunIsIdempotent(t *testing.T) {
	store := newFakeMediaStore()
	w := NewMediaWriter(store, testLogger(t), 0)
	scope := mediaScope()

	cands := []strategy.MediaCandidate{
		mediaCandidate(0, 5, 0.5),
		mediaCandidate(10, 15, 0.9),
	}
	if _, err := w.Write(context.Background(), scope, cands); err != nil {
		t.Fatalf("first write: %v", err)
	}
	res, err := w.Write(context.Background(), scope, cands)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if res.Created != 0 || res.Updated != 2 || res.Pruned != 0 {
		t.Fatalf("second run should only update in place: %+v", res)
	}
	rows, _ := store.ListByQueryHash(context.Background(), scope.QueryHash)
	if len(rows) != 2 {
		t.Fatalf("row count changed on rerun: %d", len(rows))
	}
}

func TestMediaWriter_CapsAndPrunes(t *testing.T) {
	store := newFakeMediaStore()
	w := NewMediaWriter(store, testLogger(t), 3)
	scope := mediaScope()

	var wide []strategy.MediaCandidate
	for i := 0; i < 6; i++ {
		wide = append(wide, mediaCandidate(float64(i*10), float64(i*10+5), 0.4+0.1*float64(i)))
	}
	if _, err := w.Write(context.Background(), scope, wide); err != nil {
		t.Fatalf("first write: %v", err)
	}
	rows, _ := store.ListByQueryHash(context.Background(), scope.QueryHash)
	if len(rows) != 3 {
		t.Fatalf("cap not enforced, got %d rows", len(rows))
	}

	// a narrower second run shrinks the stored set to the new top
	narrow := []strategy.MediaCandidate{
		mediaCandidate(50, 55, 0.9),
		mediaCandidate(40, 45, 0.8),
	}
	res, err := w.Write(context.Background(), scope, narrow)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	rows, _ = store.ListByQueryHash(context.Background(), scope.QueryHash)
	if len(rows) != 3 {
		t.Fatalf("want 3 rows after rerun, got %d", len(rows))
	}
	if res.Updated != 2 {
		t.Fatalf("both survivors already existed: %+v", res)
	}
}

func TestMediaWriter_RanksAreDenseAfterPrune(t *testing.T) {
	store := newFakeMediaStore()
	w := NewMediaWriter(store, testLogger(t), 2)
	scope := mediaScope()

	cands := []strategy.MediaCandidate{
		mediaCandidate(0, 5, 0.9),
		mediaCandidate(10, 15, 0.8),
		mediaCandidate(20, 25, 0.7),
	}
	if _, err := w.Write(context.Background(), scope, cands); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, _ := store.ListByQueryHash(context.Background(), scope.QueryHash)
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	seen := map[int]bool{}
	for _, r := range rows {
		seen[r.Rank] = true
	}
	if !seen[0] || !seen[1] {
		t.Fatalf("ranks are not dense from zero: %#v", seen)
	}
}

func TestMediaWriter_RoundsIdentityBounds(t *testing.T) {
	store := newFakeMediaStore()
	w := NewMediaWriter(store, testLogger(t), 0)
	scope := mediaScope()

	first := []strategy.MediaCandidate{mediaCandidate(10.0001, 19.9999, 0.8)}
	second := []strategy.MediaCandidate{mediaCandidate(10.0044, 20.0042, 0.8)}
	if _, err := w.Write(context.Background(), scope, first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	res, err := w.Write(context.Background(), scope, second)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if res.Created != 0 || res.Updated != 1 {
		t.Fatalf("jittered bounds should hit the same row: %+v", res)
	}
	rows, _ := store.ListByQueryHash(context.Background(), scope.QueryHash)
	if len(rows) != 1 || rows[0].Start != 10.0 || rows[0].End != 20.0 {
		t.Fatalf("stored bounds not rounded: %#v", rows)
	}
}

func TestMediaWriter_ClampsScores(t *testing.T) {
	store := newFakeMediaStore()
	w := NewMediaWriter(store, testLogger(t), 0)
	scope := mediaScope()

	cands := []strategy.MediaCandidate{
		mediaCandidate(0, 5, 1.7),
		mediaCandidate(10, 15, -0.3),
	}
	if _, err := w.Write(context.Background(), scope, cands); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, _ := store.ListByQueryHash(context.Background(), scope.QueryHash)
	for _, r := range rows {
		if r.Score < 0 || r.Score > 1 {
			t.Fatalf("stored score out of range: %v", r.Score)
		}
	}
}
