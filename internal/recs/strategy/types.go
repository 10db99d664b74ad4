package strategy

import (
	"github.com/google/uuid"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

// Strategy names are the wire values accepted in generation requests.
const (
	NameSameEntity         = "same_entity"
	NameAdjacentShot       = "adjacent_shot"
	NameTemporalNearby     = "temporal_nearby"
	NameConfidenceDuration = "confidence_duration"
)

// MediaCandidate is the ephemeral output unit of a media-level run. Candidates
// are produced fresh per generation and never persisted directly.
type MediaCandidate struct {
	Start      float64
	End        float64
	ClipID     *uuid.UUID
	Score      float64
	Reason     string
	ReasonData map[string]any
	LabelType  string
	Strategy   string
}

// TimelineCandidate is the ephemeral output unit of a timeline-level run.
type TimelineCandidate struct {
	ClipID     uuid.UUID
	Score      float64
	Reason     string
	ReasonData map[string]any
	Strategy   string
}

// FilterParams narrow which label clips may produce candidates. All fields are
// optional; nil means "no constraint". Evaluated in media mode only; timeline
// strategies have strategy-specific filtering.
type FilterParams struct {
	LabelTypes    []string `json:"label_types,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`
	MinDuration   *float64 `json:"min_duration,omitempty"`
	MaxDuration   *float64 `json:"max_duration,omitempty"`
	TimeWindow    *float64 `json:"time_window,omitempty"`
}

// SearchParams tune timeline-mode candidate search.
type SearchParams struct {
	TimeWindow *float64 `json:"time_window,omitempty"`
}

// Strategy is a pure scoring function over a Context snapshot. Implementations
// must not perform I/O; everything they need is loaded into the Context up
// front, which keeps execution deterministic and trivially unit-testable.
type Strategy interface {
	Name() string
	ExecuteForMedia(ctx *Context) []MediaCandidate
	ExecuteForTimeline(ctx *Context) []TimelineCandidate
}

var registry = map[string]Strategy{
	NameSameEntity:         SameEntity{},
	NameAdjacentShot:       AdjacentShot{},
	NameTemporalNearby:     TemporalNearby{},
	NameConfidenceDuration: ConfidenceDuration{},
}

// ByName resolves a strategy by its wire name. Unknown names are the caller's
// problem: pipelines log and skip them rather than aborting the run.
func ByName(name string) (Strategy, bool) {
	s, ok := registry[name]
	return s, ok
}

// All returns the full strategy name set, sorted registration-independent.
func All() []string {
	return []string{NameSameEntity, NameAdjacentShot, NameTemporalNearby, NameConfidenceDuration}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func entityRefOf(lc types.LabelClip) (uuid.UUID, bool) {
	if lc.LabelEntityRef == nil || *lc.LabelEntityRef == uuid.Nil {
		return uuid.Nil, false
	}
	return *lc.LabelEntityRef, true
}
