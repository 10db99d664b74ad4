package materialize

import (
	"fmt"

	"github.com/google/uuid"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

// IsMaterialized reports whether the user has accepted the recommendation.
// Materialized rows are immune to regeneration: never updated, re-ranked, or
// pruned, and exempt from the top-N cap.
func IsMaterialized(rec *types.TimelineRecommendation) bool {
	return rec != nil && rec.AcceptedAt != nil
}

// IDSet returns the ids of materialized recommendations in the given set.
func IDSet(recs []*types.TimelineRecommendation) map[uuid.UUID]bool {
	out := map[uuid.UUID]bool{}
	for _, r := range recs {
		if IsMaterialized(r) {
			out[r.ID] = true
		}
	}
	return out
}

// Warning flags a data-integrity inconsistency. These are diagnostics, not
// hard failures.
type Warning struct {
	RecommendationID uuid.UUID
	Message          string
}

func (w Warning) String() string {
	return fmt.Sprintf("recommendation %s: %s", w.RecommendationID, w.Message)
}

// Validate flags accepted rows without a linked timeline clip and linked rows
// that were never accepted.
func Validate(recs []*types.TimelineRecommendation) []Warning {
	var out []Warning
	for _, r := range recs {
		if r == nil {
			continue
		}
		hasClip := r.TimelineClipRef != nil && *r.TimelineClipRef != uuid.Nil
		switch {
		case r.AcceptedAt != nil && !hasClip:
			out = append(out, Warning{RecommendationID: r.ID, Message: "accepted but no linked timeline clip"})
		case r.AcceptedAt == nil && hasClip:
			out = append(out, Warning{RecommendationID: r.ID, Message: "linked to a timeline clip but never accepted"})
		}
	}
	return out
}
