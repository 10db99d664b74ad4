package combine

import (
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRound2(t *testing.T) {
	approx(t, Round2(1.004), 1.0)
	approx(t, Round2(1.006), 1.01)
	approx(t, Round2(12.3456), 12.35)
	approx(t, Round2(0), 0)
}

func TestMedia_SingleContributorPassesThrough(t *testing.T) {
	in := map[string][]strategy.MediaCandidate{
		strategy.NameSameEntity: {{Start: 0, End: 5, Score: 0.8, Reason: "solo", Strategy: strategy.NameSameEntity}},
	}
	got := Media(in, nil)
	if len(got) != 1 {
		t.Fatalf("want 1 candidate, got %d", len(got))
	}
	if got[0].Reason != "solo" || got[0].Strategy != strategy.NameSameEntity {
		t.Fatalf("single contributor must pass through unchanged: %#v", got[0])
	}
	approx(t, got[0].Score, 0.8)
}

func TestMedia_MergesOverlappingSegments(t *testing.T) {
	in := map[string][]strategy.MediaCandidate{
		strategy.NameSameEntity: {
			{Start: 10, End: 20, Score: 0.8, Reason: "entity repeats", Strategy: strategy.NameSameEntity},
		},
		strategy.NameTemporalNearby: {
			// rounds to the same (10.00, 20.00) key
			{Start: 10.001, End: 19.999, Score: 0.6, Reason: "clusters nearby", Strategy: strategy.NameTemporalNearby},
		},
	}
	got := Media(in, nil)
	if len(got) != 1 {
		t.Fatalf("overlapping segments must merge, got %d candidates", len(got))
	}
	m := got[0]
	approx(t, m.Score, 0.7)
	if m.Strategy != strategy.NameSameEntity+"+"+strategy.NameTemporalNearby {
		t.Fatalf("merged strategy tag is %q", m.Strategy)
	}
	if !strings.HasPrefix(m.Reason, "Multiple signals: ") {
		t.Fatalf("merged reason is %q", m.Reason)
	}
	scores, ok := m.ReasonData["individualScores"].(map[string]any)
	if !ok {
		t.Fatalf("individualScores missing: %#v", m.ReasonData)
	}
	approx(t, scores[strategy.NameSameEntity].(float64), 0.8)
	approx(t, scores[strategy.NameTemporalNearby].(float64), 0.6)
}

func TestMedia_WeightedAverage(t *testing.T) {
	in := map[string][]strategy.MediaCandidate{
		strategy.NameSameEntity: {
			{Start: 0, End: 5, Score: 1.0, Strategy: strategy.NameSameEntity},
		},
		strategy.NameAdjacentShot: {
			{Start: 0, End: 5, Score: 0.5, Strategy: strategy.NameAdjacentShot},
		},
	}
	got := Media(in, Weights{strategy.NameSameEntity: 3, strategy.NameAdjacentShot: 1})
	if len(got) != 1 {
		t.Fatalf("want 1 merged candidate, got %d", len(got))
	}
	approx(t, got[0].Score, (1.0*3+0.5*1)/4)
}

func TestMedia_ZeroWeightExcludesStrategy(t *testing.T) {
	in := map[string][]strategy.MediaCandidate{
		strategy.NameSameEntity: {
			{Start: 0, End: 5, Score: 0.9, Strategy: strategy.NameSameEntity},
		},
		strategy.NameAdjacentShot: {
			{Start: 0, End: 5, Score: 0.1, Strategy: strategy.NameAdjacentShot},
			{Start: 40, End: 45, Score: 0.2, Strategy: strategy.NameAdjacentShot},
		},
	}
	got := Media(in, Weights{strategy.NameAdjacentShot: 0})
	if len(got) != 1 {
		t.Fatalf("zero-weight strategy should contribute nothing, got %d candidates", len(got))
	}
	approx(t, got[0].Score, 0.9)
	if got[0].Strategy != strategy.NameSameEntity {
		t.Fatalf("excluded strategy leaked into output: %#v", got[0])
	}
}

func TestMedia_KeepsFirstAvailableClipRef(t *testing.T) {
	clipID := uuid.New()
	in := map[string][]strategy.MediaCandidate{
		strategy.NameSameEntity: {
			{Start: 0, End: 5, Score: 0.9, Strategy: strategy.NameSameEntity},
		},
		strategy.NameTemporalNearby: {
			{Start: 0, End: 5, Score: 0.7, ClipID: &clipID, Strategy: strategy.NameTemporalNearby},
		},
	}
	got := Media(in, nil)
	if len(got) != 1 || got[0].ClipID == nil || *got[0].ClipID != clipID {
		t.Fatalf("merged candidate should carry the known clip ref: %#v", got)
	}
}

func TestMedia_SortsByScoreDescending(t *testing.T) {
	in := map[string][]strategy.MediaCandidate{
		strategy.NameSameEntity: {
			{Start: 30, End: 40, Score: 0.5, Strategy: strategy.NameSameEntity},
			{Start: 0, End: 10, Score: 0.9, Strategy: strategy.NameSameEntity},
			{Start: 10, End: 20, Score: 0.9, Strategy: strategy.NameSameEntity},
		},
	}
	got := Media(in, nil)
	if len(got) != 3 {
		t.Fatalf("want 3 candidates, got %d", len(got))
	}
	if got[0].Start != 0 || got[1].Start != 10 || got[2].Start != 30 {
		t.Fatalf("wrong order: %v, %v, %v", got[0].Start, got[1].Start, got[2].Start)
	}
}

func TestTimeline_MergesByClipID(t *testing.T) {
	clipA := uuid.New()
	clipB := uuid.New()
	in := map[string][]strategy.TimelineCandidate{
		strategy.NameSameEntity: {
			{ClipID: clipA, Score: 0.8, Reason: "shares entities", Strategy: strategy.NameSameEntity},
			{ClipID: clipB, Score: 0.4, Reason: "shares entities", Strategy: strategy.NameSameEntity},
		},
		strategy.NameConfidenceDuration: {
			{ClipID: clipA, Score: 0.6, Reason: "similar duration", Strategy: strategy.NameConfidenceDuration},
		},
	}
	got := Timeline(in, nil)
	if len(got) != 2 {
		t.Fatalf("want 2 candidates, got %d", len(got))
	}
	if got[0].ClipID != clipA {
		t.Fatalf("merged clip should rank first")
	}
	approx(t, got[0].Score, 0.7)
	if got[0].Strategy != strategy.NameConfidenceDuration+"+"+strategy.NameSameEntity {
		t.Fatalf("merged strategy tag is %q", got[0].Strategy)
	}
	approx(t, got[1].Score, 0.4)
	if got[1].Strategy != strategy.NameSameEntity {
		t.Fatalf("solo candidate should keep its own tag, got %q", got[1].Strategy)
	}
}

func TestCombineScores(t *testing.T) {
	scores := map[string]float64{"a": 1.0, "b": 0.0}
	approx(t, CombineScores(scores, nil), 0.5)
	approx(t, CombineScores(scores, Weights{"a": 1, "b": 3}), 0.25)
	approx(t, CombineScores(scores, Weights{"a": 0, "b": 0}), 0)
	approx(t, CombineScores(nil, nil), 0)
}

func TestMedia_DeterministicAcrossRuns(t *testing.T) {
	in := map[string][]strategy.MediaCandidate{
		strategy.NameSameEntity: {
			{Start: 0, End: 5, Score: 0.8, Strategy: strategy.NameSameEntity},
			{Start: 10, End: 15, Score: 0.8, Strategy: strategy.NameSameEntity},
		},
		strategy.NameTemporalNearby: {
			{Start: 0, End: 5, Score: 0.6, Strategy: strategy.NameTemporalNearby},
			{Start: 20, End: 25, Score: 0.8, Strategy: strategy.NameTemporalNearby},
		},
	}
	first := Media(in, nil)
	for i := 0; i < 20; i++ {
		again := Media(in, nil)
		if len(again) != len(first) {
			t.Fatalf("run %d: length changed", i)
		}
		for j := range again {
			if again[j].Start != first[j].Start || again[j].End != first[j].End || again[j].Score != first[j].Score {
				t.Fatalf("run %d: order or scores changed at %d", i, j)
			}
		}
	}
}
