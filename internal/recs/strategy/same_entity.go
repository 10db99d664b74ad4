package strategy

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

// SameEntity recommends segments or clips that feature an entity appearing
// more than once in the source material.
type SameEntity struct{}

func (SameEntity) Name() string { return NameSameEntity }

// ExecuteForMedia groups label clips by entity and recommends every segment of
// an entity with at least two occurrences. Score rewards both detection
// confidence and how often the entity shows up.
func (s SameEntity) ExecuteForMedia(ctx *Context) []MediaCandidate {
	groups := map[uuid.UUID][]types.LabelClip{}
	for _, lc := range ctx.LabelClips {
		id, ok := entityRefOf(lc)
		if !ok {
			continue
		}
		groups[id] = append(groups[id], lc)
	}

	var out []MediaCandidate
	for entityID, clips := range groups {
		n := len(clips)
		if n < 2 {
			continue
		}
		name := ctx.EntityName(entityID)
		for _, lc := range clips {
			if !passesFilters(ctx.Filter, lc) {
				continue
			}
			score := clamp01(lc.Confidence + math.Min(0.2, float64(n)*0.05))
			cand := MediaCandidate{
				Start:  lc.Start,
				End:    lc.End,
				Score:  score,
				Reason: fmt.Sprintf("%q appears %d times in this asset", name, n),
				ReasonData: map[string]any{
					"entity_id":        entityID.String(),
					"entity_name":      name,
					"occurrence_count": n,
					"confidence":       lc.Confidence,
				},
				LabelType: lc.LabelType,
				Strategy:  NameSameEntity,
			}
			if mc := ctx.MatchClip(lc.Start, lc.End); mc != nil {
				id := mc.ID
				cand.ClipID = &id
			}
			out = append(out, cand)
		}
	}
	sortMediaCandidates(out)
	return out
}

// ExecuteForTimeline scores every available clip by the entities it shares
// with the seed clip. No seed, or a seed without entities, yields an empty
// result.
func (s SameEntity) ExecuteForTimeline(ctx *Context) []TimelineCandidate {
	if ctx.SeedClip == nil {
		return nil
	}
	seedEntities := entitySetForRange(ctx, ctx.SeedClip.Start, ctx.SeedClip.End)
	if len(seedEntities) == 0 {
		return nil
	}

	placed := ctx.PlacedClipIDs()
	var out []TimelineCandidate
	for _, mc := range ctx.MediaClips {
		if mc.ID == ctx.SeedClip.ID || placed[mc.ID] {
			continue
		}
		clipLabels := ctx.LabelsOverlapping(mc.Start, mc.End)
		var shared []types.LabelClip
		sharedEntities := map[uuid.UUID]bool{}
		for _, lc := range clipLabels {
			id, ok := entityRefOf(lc)
			if !ok || !seedEntities[id] {
				continue
			}
			shared = append(shared, lc)
			sharedEntities[id] = true
		}
		if len(sharedEntities) == 0 {
			continue
		}
		meanConf, _ := meanConfidence(shared)
		countTerm := math.Min(1, float64(len(sharedEntities))*0.3)
		score := clamp01((countTerm + meanConf) / 2)
		out = append(out, TimelineCandidate{
			ClipID: mc.ID,
			Score:  score,
			Reason: fmt.Sprintf("Shares %d entit%s with the seed clip", len(sharedEntities), pluralYIes(len(sharedEntities))),
			ReasonData: map[string]any{
				"shared_entity_count": len(sharedEntities),
				"shared_entity_ids":   entityIDStrings(sharedEntities),
				"mean_confidence":     meanConf,
				"seed_clip_id":        ctx.SeedClip.ID.String(),
			},
			Strategy: NameSameEntity,
		})
	}
	sortTimelineCandidates(out)
	return out
}

func entitySetForRange(ctx *Context, start, end float64) map[uuid.UUID]bool {
	out := map[uuid.UUID]bool{}
	for _, lc := range ctx.LabelsOverlapping(start, end) {
		if id, ok := entityRefOf(lc); ok {
			out[id] = true
		}
	}
	return out
}

func entityIDStrings(set map[uuid.UUID]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id.String())
	}
	sort.Strings(out)
	return out
}

func pluralYIes(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// Deterministic ordering keeps run output stable for identical input,
// independent of map iteration order.
func sortMediaCandidates(cands []MediaCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		if cands[i].Start != cands[j].Start {
			return cands[i].Start < cands[j].Start
		}
		return cands[i].End < cands[j].End
	})
}

func sortTimelineCandidates(cands []TimelineCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].ClipID.String() < cands[j].ClipID.String()
	})
}
