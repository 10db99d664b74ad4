package strategy

import (
	"fmt"
	"math"
)

const (
	// HighConfidenceThreshold gates media-mode recommendations.
	HighConfidenceThreshold = 0.7
	// MaxDurationDelta bounds the linear part of the duration-similarity decay.
	MaxDurationDelta = 5.0

	// timeline combined-score cutoff; weaker matches are discarded.
	combinedScoreCutoff = 0.5
)

// ConfidenceDuration recommends high-confidence labels outright (media mode)
// and, on timelines, clips whose duration resembles the seed clip's.
type ConfidenceDuration struct{}

func (ConfidenceDuration) Name() string { return NameConfidenceDuration }

func (s ConfidenceDuration) ExecuteForMedia(ctx *Context) []MediaCandidate {
	var out []MediaCandidate
	for _, lc := range ctx.LabelClips {
		if lc.Confidence < HighConfidenceThreshold {
			continue
		}
		if !passesFilters(ctx.Filter, lc) {
			continue
		}
		cand := MediaCandidate{
			Start:  lc.Start,
			End:    lc.End,
			Score:  clamp01(lc.Confidence),
			Reason: fmt.Sprintf("High-confidence %s detection (%.2f)", lc.LabelType, lc.Confidence),
			ReasonData: map[string]any{
				"confidence": lc.Confidence,
				"threshold":  HighConfidenceThreshold,
			},
			LabelType: lc.LabelType,
			Strategy:  NameConfidenceDuration,
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

func (s ConfidenceDuration) ExecuteForTimeline(ctx *Context) []TimelineCandidate {
	if ctx.SeedClip == nil {
		return nil
	}
	seedDur := ctx.SeedClip.End - ctx.SeedClip.Start
	placed := ctx.PlacedClipIDs()
	var out []TimelineCandidate
	for _, mc := range ctx.MediaClips {
		if mc.ID == ctx.SeedClip.ID || placed[mc.ID] {
			continue
		}
		labels := ctx.LabelsOverlapping(mc.Start, mc.End)
		meanConf, ok := meanConfidence(labels)
		if !ok {
			continue
		}
		durScore := durationSimilarity(mc.End-mc.Start, seedDur)
		combined := clamp01(0.6*meanConf + 0.4*durScore)
		if combined < combinedScoreCutoff {
			continue
		}
		out = append(out, TimelineCandidate{
			ClipID: mc.ID,
			Score:  combined,
			Reason: fmt.Sprintf("Confident labels and a duration close to the seed clip (%.1fs)", seedDur),
			ReasonData: map[string]any{
				"mean_confidence": meanConf,
				"duration_score":  durScore,
				"clip_duration":   mc.End - mc.Start,
				"seed_duration":   seedDur,
				"seed_clip_id":    ctx.SeedClip.ID.String(),
			},
			Strategy: NameConfidenceDuration,
		})
	}
	sortTimelineCandidates(out)
	return out
}

// durationSimilarity decays linearly to 0.5 inside the delta window and
// steeper beyond it, bottoming out at zero.
func durationSimilarity(dur, seedDur float64) float64 {
	delta := math.Abs(dur - seedDur)
	if delta <= MaxDurationDelta {
		return 1 - 0.5*(delta/MaxDurationDelta)
	}
	return math.Max(0, 0.5-0.25*(delta-MaxDurationDelta))
}
