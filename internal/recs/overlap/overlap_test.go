package overlap

import (
	"testing"

	"github.com/google/uuid"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		a, b Range
		want bool
	}{
		{Range{0, 10}, Range{5, 15}, true},
		{Range{5, 15}, Range{0, 10}, true},
		{Range{0, 10}, Range{10, 20}, false},
		{Range{0, 10}, Range{12, 18}, false},
		{Range{12, 18}, Range{0, 10}, false},
		{Range{0, 10}, Range{2, 8}, true},
	}
	for _, c := range cases {
		if got := Overlaps(c.a, c.b); got != c.want {
			t.Fatalf("Overlaps(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestOccupied_SkipsDegenerateClips(t *testing.T) {
	clips := []types.TimelineClip{
		{ID: uuid.New(), Start: 0, End: 10},
		{ID: uuid.New(), Start: 5, End: 5},
		{ID: uuid.New(), Start: 8, End: 3},
		{ID: uuid.New(), Start: 20, End: 30},
	}
	got := Occupied(clips)
	if len(got) != 2 {
		t.Fatalf("want 2 occupied ranges, got %d", len(got))
	}
	if got[0] != (Range{0, 10}) || got[1] != (Range{20, 30}) {
		t.Fatalf("wrong ranges: %#v", got)
	}
}

func TestFilter_AppendModeDropsCollisions(t *testing.T) {
	occupied := []Range{{0, 10}, {20, 30}}
	candidates := []Range{
		{5, 15},  // collides with [0, 10)
		{12, 18}, // fits the gap
		{25, 26}, // inside [20, 30)
		{30, 40}, // touches but does not overlap
	}
	kept, stats := Filter(candidates, occupied, types.TargetModeAppend, func(r Range) (Range, bool) { return r, true })
	if len(kept) != 2 {
		t.Fatalf("want 2 survivors, got %d", len(kept))
	}
	if kept[0] != (Range{12, 18}) || kept[1] != (Range{30, 40}) {
		t.Fatalf("wrong survivors: %#v", kept)
	}
	if stats.Total != 4 || stats.Filtered != 2 || stats.Remaining != 2 {
		t.Fatalf("wrong stats: %+v", stats)
	}
	if stats.FilterRate != 0.5 {
		t.Fatalf("filter rate %v, want 0.5", stats.FilterRate)
	}
}

func TestFilter_ReplaceModePassesEverything(t *testing.T) {
	occupied := []Range{{0, 100}}
	candidates := []Range{{5, 15}, {20, 30}}
	kept, stats := Filter(candidates, occupied, types.TargetModeReplace, func(r Range) (Range, bool) { return r, true })
	if len(kept) != 2 {
		t.Fatalf("replace mode must not filter, got %d survivors", len(kept))
	}
	if stats.Filtered != 0 || stats.Remaining != 2 {
		t.Fatalf("wrong stats: %+v", stats)
	}
}

func TestFilter_UnresolvableBoundsPass(t *testing.T) {
	occupied := []Range{{0, 100}}
	kept, stats := Filter([]string{"a", "b"}, occupied, types.TargetModeAppend, func(string) (Range, bool) { return Range{}, false })
	if len(kept) != 2 {
		t.Fatalf("candidates without placement bounds should pass, got %d", len(kept))
	}
	if stats.Filtered != 0 {
		t.Fatalf("wrong stats: %+v", stats)
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	kept, stats := Filter(nil, []Range{{0, 10}}, types.TargetModeAppend, func(r Range) (Range, bool) { return r, true })
	if len(kept) != 0 {
		t.Fatalf("want no survivors, got %d", len(kept))
	}
	if stats.FilterRate != 0 {
		t.Fatalf("empty input must not divide by zero, got rate %v", stats.FilterRate)
	}
}
