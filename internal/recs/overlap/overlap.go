package overlap

import (
	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

// Range is a half-open occupied interval [Start, End) on a timeline.
type Range struct {
	Start float64
	End   float64
}

// Stats reports what the filter did, for observability.
type Stats struct {
	Total      int     `json:"total"`
	Filtered   int     `json:"filtered"`
	Remaining  int     `json:"remaining"`
	FilterRate float64 `json:"filter_rate"`
}

// Occupied builds the occupied ranges from existing timeline clips.
func Occupied(clips []types.TimelineClip) []Range {
	out := make([]Range, 0, len(clips))
	for _, tc := range clips {
		if tc.End <= tc.Start {
			continue
		}
		out = append(out, Range{Start: tc.Start, End: tc.End})
	}
	return out
}

// Overlaps reports whether two half-open ranges intersect.
func Overlaps(a, b Range) bool {
	return a.Start < b.End && b.Start < a.End
}

// Collides reports whether r intersects any occupied range.
func Collides(r Range, occupied []Range) bool {
	for _, o := range occupied {
		if Overlaps(r, o) {
			return true
		}
	}
	return false
}

// Filter drops candidates colliding with occupied content in append mode. In
// replace mode every candidate passes: the caller is explicitly substituting
// occupied content. bounds resolves a candidate's placement range.
func Filter[T any](candidates []T, occupied []Range, targetMode string, bounds func(T) (Range, bool)) ([]T, Stats) {
	stats := Stats{Total: len(candidates)}
	if targetMode == types.TargetModeReplace {
		stats.Remaining = len(candidates)
		return candidates, stats
	}
	kept := make([]T, 0, len(candidates))
	for _, c := range candidates {
		r, ok := bounds(c)
		if ok && Collides(r, occupied) {
			stats.Filtered++
			continue
		}
		kept = append(kept, c)
	}
	stats.Remaining = len(kept)
	if stats.Total > 0 {
		stats.FilterRate = float64(stats.Filtered) / float64(stats.Total)
	}
	return kept, stats
}
