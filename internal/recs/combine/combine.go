package combine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

// Weights maps strategy name to its contribution weight. A missing entry
// means 1.0; an explicit 0 excludes the strategy entirely.
type Weights map[string]float64

func (w Weights) of(name string) float64 {
	if w == nil {
		return 1
	}
	v, ok := w[name]
	if !ok {
		return 1
	}
	return v
}

// Round2 absorbs floating-point jitter in segment bounds; it is the identity
// rounding shared by the combiner and the recommendation writer.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Media merges per-strategy candidate lists keyed by rounded (start, end).
// Groups with a single contributor pass through unchanged; groups with several
// get a weighted-average score, a synthesized reason, and traceability data.
func Media(byStrategy map[string][]strategy.MediaCandidate, weights Weights) []strategy.MediaCandidate {
	type group struct {
		members []strategy.MediaCandidate
	}
	groups := map[string]*group{}
	var order []string
	for _, name := range sortedKeysMedia(byStrategy) {
		if weights.of(name) == 0 {
			continue
		}
		for _, c := range byStrategy[name] {
			key := fmt.Sprintf("%.2f|%.2f", Round2(c.Start), Round2(c.End))
			g, ok := groups[key]
			if !ok {
				g = &group{}
				groups[key] = g
				order = append(order, key)
			}
			g.members = append(g.members, c)
		}
	}

	out := make([]strategy.MediaCandidate, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		if len(g.members) == 1 {
			out = append(out, g.members[0])
			continue
		}
		merged := g.members[0]
		merged.Start = Round2(merged.Start)
		merged.End = Round2(merged.End)
		merged.Score = combineMembers(memberScores(g.members), weights)
		merged.Strategy, merged.Reason, merged.ReasonData = mergeTrace(g.members)
		for _, m := range g.members {
			if m.ClipID != nil {
				merged.ClipID = m.ClipID
				break
			}
		}
		out = append(out, merged)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}

// Timeline merges per-strategy candidate lists keyed by clip id.
func Timeline(byStrategy map[string][]strategy.TimelineCandidate, weights Weights) []strategy.TimelineCandidate {
	type group struct {
		members []strategy.TimelineCandidate
	}
	groups := map[string]*group{}
	var order []string
	for _, name := range sortedKeysTimeline(byStrategy) {
		if weights.of(name) == 0 {
			continue
		}
		for _, c := range byStrategy[name] {
			key := c.ClipID.String()
			g, ok := groups[key]
			if !ok {
				g = &group{}
				groups[key] = g
				order = append(order, key)
			}
			g.members = append(g.members, c)
		}
	}

	out := make([]strategy.TimelineCandidate, 0, len(groups))
	for _, key := range order {
		g := groups[key]
		if len(g.members) == 1 {
			out = append(out, g.members[0])
			continue
		}
		merged := g.members[0]
		scores := map[string]float64{}
		for _, m := range g.members {
			scores[m.Strategy] = m.Score
		}
		merged.Score = combineMembers(scores, weights)
		merged.Strategy, merged.Reason, merged.ReasonData = mergeTraceTimeline(g.members)
		out = append(out, merged)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ClipID.String() < out[j].ClipID.String()
	})
	return out
}

// CombineScores is the single-value convenience for ad hoc merges outside the
// grouping path: the same weighted-average rule over non-zero-weight entries.
func CombineScores(scores map[string]float64, weights Weights) float64 {
	return combineMembers(scores, weights)
}

func combineMembers(scores map[string]float64, weights Weights) float64 {
	var num, den float64
	for name, score := range scores {
		w := weights.of(name)
		if w == 0 {
			continue
		}
		num += score * w
		den += w
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func memberScores(members []strategy.MediaCandidate) map[string]float64 {
	scores := map[string]float64{}
	for _, m := range members {
		scores[m.Strategy] = m.Score
	}
	return scores
}

func mergeTrace(members []strategy.MediaCandidate) (string, string, map[string]any) {
	names := make([]string, 0, len(members))
	reasons := make([]string, 0, len(members))
	individual := map[string]any{}
	for _, m := range members {
		names = append(names, m.Strategy)
		reasons = append(reasons, m.Reason)
		individual[m.Strategy] = m.Score
	}
	sort.Strings(names)
	return strings.Join(names, "+"),
		"Multiple signals: " + strings.Join(reasons, "; "),
		map[string]any{
			"combinedStrategies": names,
			"individualScores":   individual,
		}
}

func mergeTraceTimeline(members []strategy.TimelineCandidate) (string, string, map[string]any) {
	names := make([]string, 0, len(members))
	reasons := make([]string, 0, len(members))
	individual := map[string]any{}
	for _, m := range members {
		names = append(names, m.Strategy)
		reasons = append(reasons, m.Reason)
		individual[m.Strategy] = m.Score
	}
	sort.Strings(names)
	return strings.Join(names, "+"),
		"Multiple signals: " + strings.Join(reasons, "; "),
		map[string]any{
			"combinedStrategies": names,
			"individualScores":   individual,
		}
}

func sortedKeysMedia(m map[string][]strategy.MediaCandidate) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysTimeline(m map[string][]strategy.TimelineCandidate) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
