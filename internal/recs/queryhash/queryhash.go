package queryhash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

// Input is the full logical identity of a generation request. Version is the
// target's label content version, so freshly ingested labels always produce a
// new hash.
type Input struct {
	WorkspaceID uuid.UUID
	MediaID     *uuid.UUID
	TimelineID  *uuid.UUID
	Version     int
	Strategies  []string
	Filter      *strategy.FilterParams
	Search      *strategy.SearchParams
}

// Build produces a 128-bit hex digest over a canonical serialization of the
// input. Identical logical input yields an identical hash across calls and
// processes; unset optional fields are omitted from the canonical form, so
// explicit-nil and absent hash the same.
func Build(in Input) string {
	strategies := append([]string(nil), in.Strategies...)
	sort.Strings(strategies)

	payload := map[string]any{
		"workspace_id": in.WorkspaceID.String(),
		"version":      in.Version,
		"strategies":   strategies,
		"v":            1,
	}
	if in.MediaID != nil && *in.MediaID != uuid.Nil {
		payload["media_id"] = in.MediaID.String()
	}
	if in.TimelineID != nil && *in.TimelineID != uuid.Nil {
		payload["timeline_id"] = in.TimelineID.String()
	}
	if f := canonicalFilter(in.Filter); len(f) > 0 {
		payload["filter"] = f
	}
	if s := canonicalSearch(in.Search); len(s) > 0 {
		payload["search"] = s
	}

	// json.Marshal writes map keys in sorted order, which makes the
	// serialization canonical without a custom encoder.
	b, _ := json.Marshal(payload)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])[:32]
}

func canonicalFilter(f *strategy.FilterParams) map[string]any {
	if f == nil {
		return nil
	}
	out := map[string]any{}
	if len(f.LabelTypes) > 0 {
		lt := append([]string(nil), f.LabelTypes...)
		sort.Strings(lt)
		out["label_types"] = lt
	}
	if f.MinConfidence != nil {
		out["min_confidence"] = *f.MinConfidence
	}
	if f.MinDuration != nil {
		out["min_duration"] = *f.MinDuration
	}
	if f.MaxDuration != nil {
		out["max_duration"] = *f.MaxDuration
	}
	if f.TimeWindow != nil {
		out["time_window"] = *f.TimeWindow
	}
	return out
}

func canonicalSearch(s *strategy.SearchParams) map[string]any {
	if s == nil {
		return nil
	}
	out := map[string]any{}
	if s.TimeWindow != nil {
		out["time_window"] = *s.TimeWindow
	}
	return out
}
