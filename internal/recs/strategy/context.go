package strategy

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

const (
	// DefaultTimeWindow is the temporal-nearby window when no params set one.
	DefaultTimeWindow = 60.0

	// clipMatchTolerance is the fuzzy bound match used to attach an existing
	// media clip to a recommended segment.
	clipMatchTolerance = 0.1
)

// Context is the immutable snapshot a generation run executes against. It is
// assembled once by the pipeline's load phase; strategies read it and nothing
// else.
type Context struct {
	Workspace types.Workspace
	Media     *types.MediaAsset
	Timeline  *types.Timeline

	LabelClips    []types.LabelClip
	Entities      map[uuid.UUID]types.LabelEntity
	MediaClips    []types.MediaClip
	TimelineClips []types.TimelineClip

	SeedClip   *types.MediaClip
	TargetMode string

	Filter FilterParams
	Search SearchParams
}

// NormalizeLabelType collapses the upstream multi-select representation, where
// a label type may arrive as a scalar or a one-element array. Arrays of any
// other length are a data-integrity error, not something to silently truncate.
func NormalizeLabelType(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []string:
		if len(t) != 1 {
			return "", fmt.Errorf("label_type array has %d elements, want 1", len(t))
		}
		return t[0], nil
	case []any:
		if len(t) != 1 {
			return "", fmt.Errorf("label_type array has %d elements, want 1", len(t))
		}
		s, ok := t[0].(string)
		if !ok {
			return "", fmt.Errorf("label_type element is %T, want string", t[0])
		}
		return s, nil
	default:
		return "", fmt.Errorf("label_type is %T, want string or one-element array", v)
	}
}

// Window returns the configured temporal window in seconds, preferring search
// params over filter params, with a 60s default.
func (c *Context) Window() float64 {
	if c.Search.TimeWindow != nil && *c.Search.TimeWindow > 0 {
		return *c.Search.TimeWindow
	}
	if c.Filter.TimeWindow != nil && *c.Filter.TimeWindow > 0 {
		return *c.Filter.TimeWindow
	}
	return DefaultTimeWindow
}

// EntityName resolves a label entity's display name, falling back to the id.
func (c *Context) EntityName(id uuid.UUID) string {
	if e, ok := c.Entities[id]; ok && e.Name != "" {
		return e.Name
	}
	return id.String()
}

// LabelsOverlapping returns label clips intersecting [start, end].
func (c *Context) LabelsOverlapping(start, end float64) []types.LabelClip {
	var out []types.LabelClip
	for _, lc := range c.LabelClips {
		if lc.Start < end && start < lc.End {
			out = append(out, lc)
		}
	}
	return out
}

// PlacedClipIDs is the set of media clips already placed on the timeline.
func (c *Context) PlacedClipIDs() map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(c.TimelineClips))
	for _, tc := range c.TimelineClips {
		out[tc.MediaClipRef] = true
	}
	return out
}

// ClipByID looks up a media clip from the snapshot.
func (c *Context) ClipByID(id uuid.UUID) *types.MediaClip {
	for i := range c.MediaClips {
		if c.MediaClips[i].ID == id {
			return &c.MediaClips[i]
		}
	}
	return nil
}

// MatchClip finds an existing media clip whose bounds coincide with the given
// segment within the fuzzy tolerance, so a recommendation can reference it
// instead of proposing a brand-new segment.
func (c *Context) MatchClip(start, end float64) *types.MediaClip {
	for i := range c.MediaClips {
		mc := &c.MediaClips[i]
		if math.Abs(mc.Start-start) <= clipMatchTolerance && math.Abs(mc.End-end) <= clipMatchTolerance {
			return mc
		}
	}
	return nil
}

// clipGap is the minimal distance between two ranges; zero when they overlap.
func clipGap(aStart, aEnd, bStart, bEnd float64) float64 {
	if aStart < bEnd && bStart < aEnd {
		return 0
	}
	if aStart >= bEnd {
		return aStart - bEnd
	}
	return bStart - aEnd
}

// meanConfidence averages label confidences; ok is false for an empty set.
func meanConfidence(labels []types.LabelClip) (float64, bool) {
	if len(labels) == 0 {
		return 0, false
	}
	var sum float64
	for _, lc := range labels {
		sum += lc.Confidence
	}
	return sum / float64(len(labels)), true
}
