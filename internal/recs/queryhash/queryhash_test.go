package queryhash

import (
	"testing"

	"github.com/google/uuid"

	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

func TestBuild_Deterministic(t *testing.T) {
	wsID := uuid.New()
	mediaID := uuid.New()
	in := Input{
		WorkspaceID: wsID,
		MediaID:     &mediaID,
		Version:     3,
		Strategies:  []string{strategy.NameSameEntity, strategy.NameAdjacentShot},
	}
	first := Build(in)
	if len(first) != 32 {
		t.Fatalf("hash length %d, want 32", len(first))
	}
	for i := 0; i < 50; i++ {
		if got := Build(in); got != first {
			t.Fatalf("hash changed between calls: %q vs %q", got, first)
		}
	}
}

func TestBuild_StrategyOrderInsensitive(t *testing.T) {
	wsID := uuid.New()
	mediaID := uuid.New()
	a := Build(Input{WorkspaceID: wsID, MediaID: &mediaID, Version: 1,
		Strategies: []string{strategy.NameSameEntity, strategy.NameTemporalNearby}})
	b := Build(Input{WorkspaceID: wsID, MediaID: &mediaID, Version: 1,
		Strategies: []string{strategy.NameTemporalNearby, strategy.NameSameEntity}})
	if a != b {
		t.Fatalf("strategy ordering must not change the hash: %q vs %q", a, b)
	}
}

func TestBuild_SensitiveToEveryField(t *testing.T) {
	wsID := uuid.New()
	mediaID := uuid.New()
	base := Input{WorkspaceID: wsID, MediaID: &mediaID, Version: 1,
		Strategies: []string{strategy.NameSameEntity}}
	baseHash := Build(base)

	variants := map[string]Input{}

	v := base
	v.WorkspaceID = uuid.New()
	variants["workspace"] = v

	v = base
	other := uuid.New()
	v.MediaID = &other
	variants["media"] = v

	v = base
	v.Version = 2
	variants["version"] = v

	v = base
	v.Strategies = []string{strategy.NameAdjacentShot}
	variants["strategies"] = v

	v = base
	minConf := 0.5
	v.Filter = &strategy.FilterParams{MinConfidence: &minConf}
	variants["filter"] = v

	v = base
	window := 30.0
	v.Search = &strategy.SearchParams{TimeWindow: &window}
	variants["search"] = v

	for name, in := range variants {
		if Build(in) == baseHash {
			t.Fatalf("changing %s did not change the hash", name)
		}
	}
}

func TestBuild_MediaAndTimelineTargetsDiffer(t *testing.T) {
	wsID := uuid.New()
	id := uuid.New()
	mediaHash := Build(Input{WorkspaceID: wsID, MediaID: &id, Version: 1,
		Strategies: []string{strategy.NameSameEntity}})
	timelineHash := Build(Input{WorkspaceID: wsID, TimelineID: &id, Version: 1,
		Strategies: []string{strategy.NameSameEntity}})
	if mediaHash == timelineHash {
		t.Fatalf("same id as media vs timeline target must hash differently")
	}
}

func TestBuild_AbsentAndEmptyOptionalsHashTheSame(t *testing.T) {
	wsID := uuid.New()
	mediaID := uuid.New()
	absent := Build(Input{WorkspaceID: wsID, MediaID: &mediaID, Version: 1,
		Strategies: []string{strategy.NameSameEntity}})
	empty := Build(Input{WorkspaceID: wsID, MediaID: &mediaID, Version: 1,
		Strategies: []string{strategy.NameSameEntity},
		Filter:     &strategy.FilterParams{},
		Search:     &strategy.SearchParams{}})
	if absent != empty {
		t.Fatalf("nil and zero-value params must hash the same: %q vs %q", absent, empty)
	}

	nilID := Build(Input{WorkspaceID: wsID, MediaID: &mediaID, Version: 1,
		Strategies: []string{strategy.NameSameEntity}, TimelineID: &uuid.Nil})
	if absent != nilID {
		t.Fatalf("nil-uuid timeline ref must hash like an absent one")
	}
}

func TestBuild_FilterLabelTypeOrderInsensitive(t *testing.T) {
	wsID := uuid.New()
	mediaID := uuid.New()
	a := Build(Input{WorkspaceID: wsID, MediaID: &mediaID, Version: 1,
		Strategies: []string{strategy.NameSameEntity},
		Filter:     &strategy.FilterParams{LabelTypes: []string{"shot", "object"}}})
	b := Build(Input{WorkspaceID: wsID, MediaID: &mediaID, Version: 1,
		Strategies: []string{strategy.NameSameEntity},
		Filter:     &strategy.FilterParams{LabelTypes: []string{"object", "shot"}}})
	if a != b {
		t.Fatalf("label type ordering must not change the hash")
	}
}
