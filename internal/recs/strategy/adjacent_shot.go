package strategy

import (
	"math"
	"sort"

	"github.com/google/uuid"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

// shotProximityHorizon is the gap (seconds) beyond which a neighboring shot
// contributes zero proximity.
const shotProximityHorizon = 10.0

// AdjacentShot recommends the immediate predecessor and successor of each
// detected shot, on the theory that neighboring shots continue the same beat.
type AdjacentShot struct{}

func (AdjacentShot) Name() string { return NameAdjacentShot }

func (s AdjacentShot) ExecuteForMedia(ctx *Context) []MediaCandidate {
	shots := sortedShots(ctx)
	if len(shots) < 2 {
		return nil
	}

	type key struct{ start, end float64 }
	best := map[key]MediaCandidate{}
	for i := range shots {
		for _, j := range []int{i - 1, i + 1} {
			if j < 0 || j >= len(shots) {
				continue
			}
			nb := shots[j]
			if !passesFilters(ctx.Filter, nb) {
				continue
			}
			score := neighborScore(shots[i], nb)
			k := key{nb.Start, nb.End}
			if prev, ok := best[k]; ok && prev.Score >= score {
				continue
			}
			cand := MediaCandidate{
				Start:  nb.Start,
				End:    nb.End,
				Score:  score,
				Reason: "Adjacent to a detected shot boundary",
				ReasonData: map[string]any{
					"anchor_start": shots[i].Start,
					"anchor_end":   shots[i].End,
					"confidence":   nb.Confidence,
				},
				LabelType: types.LabelTypeShot,
				Strategy:  NameAdjacentShot,
			}
			if mc := ctx.MatchClip(nb.Start, nb.End); mc != nil {
				id := mc.ID
				cand.ClipID = &id
			}
			best[k] = cand
		}
	}

	out := make([]MediaCandidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sortMediaCandidates(out)
	return out
}

// ExecuteForTimeline finds the shots touching the seed clip, then recommends
// media clips that fully contain a neighboring shot. Clips already placed on
// the timeline, the seed itself, and duplicates are skipped.
func (s AdjacentShot) ExecuteForTimeline(ctx *Context) []TimelineCandidate {
	if ctx.SeedClip == nil {
		return nil
	}
	shots := sortedShots(ctx)
	if len(shots) < 2 {
		return nil
	}

	placed := ctx.PlacedClipIDs()
	seen := map[uuid.UUID]bool{}
	var out []TimelineCandidate
	for i := range shots {
		if clipGap(shots[i].Start, shots[i].End, ctx.SeedClip.Start, ctx.SeedClip.End) > 0 {
			continue
		}
		for _, j := range []int{i - 1, i + 1} {
			if j < 0 || j >= len(shots) {
				continue
			}
			nb := shots[j]
			mc := containingClip(ctx, nb)
			if mc == nil || mc.ID == ctx.SeedClip.ID || placed[mc.ID] || seen[mc.ID] {
				continue
			}
			seen[mc.ID] = true
			out = append(out, TimelineCandidate{
				ClipID: mc.ID,
				Score:  neighborScore(shots[i], nb),
				Reason: "Contains the shot next to the seed clip",
				ReasonData: map[string]any{
					"shot_start":   nb.Start,
					"shot_end":     nb.End,
					"confidence":   nb.Confidence,
					"seed_clip_id": ctx.SeedClip.ID.String(),
				},
				Strategy: NameAdjacentShot,
			})
		}
	}
	sortTimelineCandidates(out)
	return out
}

func sortedShots(ctx *Context) []types.LabelClip {
	var shots []types.LabelClip
	for _, lc := range ctx.LabelClips {
		if lc.LabelType == types.LabelTypeShot {
			shots = append(shots, lc)
		}
	}
	sort.SliceStable(shots, func(i, j int) bool { return shots[i].Start < shots[j].Start })
	return shots
}

func neighborScore(anchor, nb types.LabelClip) float64 {
	gap := clipGap(anchor.Start, anchor.End, nb.Start, nb.End)
	proximity := math.Max(0, 1-gap/shotProximityHorizon)
	return clamp01((nb.Confidence + proximity) / 2)
}

// containingClip returns a media clip whose bounds fully contain the shot.
func containingClip(ctx *Context, shot types.LabelClip) *types.MediaClip {
	for i := range ctx.MediaClips {
		mc := &ctx.MediaClips[i]
		if mc.Start <= shot.Start && mc.End >= shot.End {
			return mc
		}
	}
	return nil
}
