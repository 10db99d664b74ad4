package strategy

import (
	"testing"

	"github.com/google/uuid"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
)

func TestTemporalNearbyMedia_ScoresClusterMembers(t *testing.T) {
	mediaID := uuid.New()
	labels := []types.LabelClip{
		label(mediaID, types.LabelTypeObject, nil, 0, 5, 0.8),
		label(mediaID, types.LabelTypeObject, nil, 10, 15, 0.6),
	}
	ctx := newMediaContext(mediaID, labels)

	got := TemporalNearby{}.ExecuteForMedia(ctx)
	if len(got) != 2 {
		t.Fatalf("want 2 candidates, got %d", len(got))
	}
	// 5s gap inside the default 60s window
	proximity := 1 - 5.0/DefaultTimeWindow
	approx(t, got[0].Score, 0.6*0.8+0.3*proximity+0.02)
	approx(t, got[1].Score, 0.6*0.6+0.3*proximity+0.02)
	if got[0].ReasonData["cluster_size"] != 1 {
		t.Fatalf("wrong cluster size %v", got[0].ReasonData["cluster_size"])
	}
}

func TestTemporalNearbyMedia_IsolatedLabelExcluded(t *testing.T) {
	mediaID := uuid.New()
	labels := []types.LabelClip{
		label(mediaID, types.LabelTypeObject, nil, 0, 5, 0.9),
		label(mediaID, types.LabelTypeObject, nil, 500, 505, 0.9),
	}
	ctx := newMediaContext(mediaID, labels)

	if got := (TemporalNearby{}).ExecuteForMedia(ctx); got != nil {
		t.Fatalf("labels farther apart than the window should not cluster, got %#v", got)
	}
}

func TestTemporalNearbyMedia_ClusterBonusIsCapped(t *testing.T) {
	mediaID := uuid.New()
	var labels []types.LabelClip
	for i := 0; i < 8; i++ {
		labels = append(labels, label(mediaID, types.LabelTypeObject, nil, float64(i), float64(i)+1, 0.5))
	}
	ctx := newMediaContext(mediaID, labels)

	got := TemporalNearby{}.ExecuteForMedia(ctx)
	if len(got) != 8 {
		t.Fatalf("want 8 candidates, got %d", len(got))
	}
	// every label touches a neighbor; cluster of 7 would add 0.14 uncapped
	approx(t, got[0].Score, 0.6*0.5+0.3*1+0.1)
}

func TestTemporalNearbyMedia_HonorsConfiguredWindow(t *testing.T) {
	mediaID := uuid.New()
	labels := []types.LabelClip{
		label(mediaID, types.LabelTypeObject, nil, 0, 5, 0.9),
		label(mediaID, types.LabelTypeObject, nil, 15, 20, 0.9),
	}
	ctx := newMediaContext(mediaID, labels)
	window := 8.0
	ctx.Filter.TimeWindow = &window

	if got := (TemporalNearby{}).ExecuteForMedia(ctx); got != nil {
		t.Fatalf("10s gap with an 8s window should not cluster, got %#v", got)
	}
}

func TestTemporalNearbyTimeline_ScoresByProximityAndConfidence(t *testing.T) {
	mediaID := uuid.New()
	seed := clip(mediaID, 0, 10)
	near := clip(mediaID, 15, 20)
	labels := []types.LabelClip{
		label(mediaID, types.LabelTypeObject, nil, 16, 18, 0.8),
	}
	ctx := newTimelineContext(mediaID, &seed, []types.MediaClip{seed, near}, labels)

	got := TemporalNearby{}.ExecuteForTimeline(ctx)
	if len(got) != 1 || got[0].ClipID != near.ID {
		t.Fatalf("want the nearby clip, got %#v", got)
	}
	proximity := 1 - 5.0/DefaultTimeWindow
	approx(t, got[0].Score, (proximity+0.8)/2)
}

func TestTemporalNearbyTimeline_SkipsClipsWithoutLabels(t *testing.T) {
	mediaID := uuid.New()
	seed := clip(mediaID, 0, 10)
	bare := clip(mediaID, 15, 20)
	ctx := newTimelineContext(mediaID, &seed, []types.MediaClip{seed, bare}, nil)

	if got := (TemporalNearby{}).ExecuteForTimeline(ctx); got != nil {
		t.Fatalf("a clip without label evidence should be skipped, got %#v", got)
	}
}

func TestTemporalNearbyTimeline_ExcludesClipsOutsideWindow(t *testing.T) {
	mediaID := uuid.New()
	seed := clip(mediaID, 0, 10)
	far := clip(mediaID, 200, 210)
	labels := []types.LabelClip{
		label(mediaID, types.LabelTypeObject, nil, 201, 205, 0.9),
	}
	ctx := newTimelineContext(mediaID, &seed, []types.MediaClip{seed, far}, labels)

	if got := (TemporalNearby{}).ExecuteForTimeline(ctx); got != nil {
		t.Fatalf("clip beyond the window should be excluded, got %#v", got)
	}
}
