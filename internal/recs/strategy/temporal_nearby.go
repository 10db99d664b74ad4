package strategy

import (
	"fmt"
	"math"
)

// TemporalNearby recommends labels that cluster in time with other labels
// (media mode) or clips that sit close to the seed clip (timeline mode).
type TemporalNearby struct{}

func (TemporalNearby) Name() string { return NameTemporalNearby }

// ExecuteForMedia emits a candidate for every label with at least one other
// label inside the window. Score blends detection confidence, proximity to the
// nearest neighbor, and a small cluster-size bonus.
func (s TemporalNearby) ExecuteForMedia(ctx *Context) []MediaCandidate {
	window := ctx.Window()
	var out []MediaCandidate
	for i, lc := range ctx.LabelClips {
		if !passesFilters(ctx.Filter, lc) {
			continue
		}
		nearest := math.Inf(1)
		cluster := 0
		for j, other := range ctx.LabelClips {
			if i == j {
				continue
			}
			gap := clipGap(lc.Start, lc.End, other.Start, other.End)
			if gap <= window {
				cluster++
				if gap < nearest {
					nearest = gap
				}
			}
		}
		if cluster == 0 {
			continue
		}
		proximity := 1 - nearest/window
		score := clamp01(0.6*lc.Confidence + 0.3*proximity + math.Min(0.1, 0.02*float64(cluster)))
		cand := MediaCandidate{
			Start:  lc.Start,
			End:    lc.End,
			Score:  score,
			Reason: fmt.Sprintf("Clusters with %d nearby label%s", cluster, plural(cluster)),
			ReasonData: map[string]any{
				"cluster_size": cluster,
				"nearest_gap":  nearest,
				"window":       window,
				"confidence":   lc.Confidence,
			},
			LabelType: lc.LabelType,
			Strategy:  NameTemporalNearby,
		}
		if mc := ctx.MatchClip(lc.Start, lc.End); mc != nil {
			id := mc.ID
			cand.ClipID = &id
		}
		out = append(out, cand)
	}
	sortMediaCandidates(out)
	return out
}

// ExecuteForTimeline scores available clips on the seed's media by their edge
// distance to the seed clip; anything outside the window is excluded. Clips
// without any label evidence are skipped, there being no confidence signal to
// average.
func (s TemporalNearby) ExecuteForTimeline(ctx *Context) []TimelineCandidate {
	if ctx.SeedClip == nil {
		return nil
	}
	window := ctx.Window()
	placed := ctx.PlacedClipIDs()
	var out []TimelineCandidate
	for _, mc := range ctx.MediaClips {
		if mc.ID == ctx.SeedClip.ID || placed[mc.ID] {
			continue
		}
		gap := clipGap(mc.Start, mc.End, ctx.SeedClip.Start, ctx.SeedClip.End)
		if gap > window {
			continue
		}
		contained := ctx.LabelsOverlapping(mc.Start, mc.End)
		meanConf, ok := meanConfidence(contained)
		if !ok {
			continue
		}
		proximity := 1 - gap/window
		score := clamp01((proximity + meanConf) / 2)
		out = append(out, TimelineCandidate{
			ClipID: mc.ID,
			Score:  score,
			Reason: fmt.Sprintf("Within %.0fs of the seed clip", window),
			ReasonData: map[string]any{
				"gap":             gap,
				"window":          window,
				"mean_confidence": meanConf,
				"label_count":     len(contained),
				"seed_clip_id":    ctx.SeedClip.ID.String(),
			},
			Strategy: NameTemporalNearby,
		})
	}
	sortTimelineCandidates(out)
	return out
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
