package writer

import (
	"context"
	"testing"

	"github.com/google/uuid"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/recs/combine"
	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

// Runs the strategy → combine → write path end to end over an in-memory
// store: a media asset with one dominant entity must yield exactly the capped
// top-N, all from that entity's cluster, ranked densely by combined score.
func TestEngineFlow_DominantEntityFillsCappedSet(t *testing.T) {
	mediaID := uuid.New()
	entityE := uuid.New()
	entityOther := uuid.New()

	labelClip := func(entity uuid.UUID, start, end, conf float64) types.LabelClip {
		return types.LabelClip{
			ID:             uuid.New(),
			MediaRef:       mediaID,
			LabelType:      types.LabelTypeObject,
			LabelEntityRef: &entity,
			Start:          start,
			End:            end,
			Confidence:     conf,
		}
	}

	var labels []types.LabelClip
	eSegments := map[[2]float64]bool{}
	for i := 0; i < 5; i++ {
		start := float64(i * 10)
		labels = append(labels, labelClip(entityE, start, start+5, 0.9))
		eSegments[[2]float64{start, start + 5}] = true
	}
	labels = append(labels,
		labelClip(entityOther, 100, 105, 0.5),
		labelClip(entityOther, 110, 115, 0.5),
	)

	sctx := &strategy.Context{
		Workspace:  types.Workspace{ID: uuid.New()},
		Media:      &types.MediaAsset{ID: mediaID},
		LabelClips: labels,
		Entities: map[uuid.UUID]types.LabelEntity{
			entityE:     {ID: entityE, Name: "speaker"},
			entityOther: {ID: entityOther, Name: "logo"},
		},
	}

	names := []string{strategy.NameSameEntity, strategy.NameConfidenceDuration}
	byStrategy := map[string][]strategy.MediaCandidate{}
	for _, name := range names {
		s, ok := strategy.ByName(name)
		if !ok {
			t.Fatalf("strategy %q not registered", name)
		}
		byStrategy[name] = s.ExecuteForMedia(sctx)
	}
	candidates := combine.Media(byStrategy, combine.Weights{
		strategy.NameSameEntity:         1,
		strategy.NameConfidenceDuration: 1,
	})

	store := newFakeMediaStore()
	w := NewMediaWriter(store, testLogger(t), 0)
	scope := mediaScope()
	scope.MaxResults = 3

	res, err := w.Write(context.Background(), scope, candidates)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if res.Created != 3 || res.Total != 3 {
		t.Fatalf("expected exactly 3 stored, got %+v", res)
	}

	rows, _ := store.ListByQueryHash(context.Background(), scope.QueryHash)
	if len(rows) != 3 {
		t.Fatalf("want 3 rows, got %d", len(rows))
	}
	seenRanks := map[int]bool{}
	for _, r := range rows {
		if !eSegments[[2]float64{r.Start, r.End}] {
			t.Fatalf("stored segment (%.1f, %.1f) is not from the dominant entity", r.Start, r.End)
		}
		seenRanks[r.Rank] = true
	}
	for rank := 0; rank < 3; rank++ {
		if !seenRanks[rank] {
			t.Fatalf("ranks not dense, missing %d: %v", rank, seenRanks)
		}
	}
}
