package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/recs/combine"
	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

// DefaultMaxPerContext caps the non-materialized result set per query hash.
const DefaultMaxPerContext = 20

// MediaScope identifies where a media write cycle lands. MaxResults overrides
// the writer's configured cap for this cycle when positive.
type MediaScope struct {
	WorkspaceRef uuid.UUID
	MediaRef     uuid.UUID
	QueryHash    string
	Version      int
	MaxResults   int
}

// MediaWriter runs the upsert/prune/re-rank cycle for media recommendations.
// The cycle is idempotent: identical candidate input converges to the same
// stored top-N no matter how often it runs, and interleaved writers only cost
// redundant updates because every decision re-reads current state.
type MediaWriter struct {
	store MediaStore
	log   *logger.Logger
	max   int
}

func NewMediaWriter(store MediaStore, baseLog *logger.Logger, maxPerContext int) *MediaWriter {
	if maxPerContext <= 0 {
		maxPerContext = DefaultMaxPerContext
	}
	return &MediaWriter{
		store: store,
		log:   baseLog.With("component", "MediaRecommendationWriter"),
		max:   maxPerContext,
	}
}

func (w *MediaWriter) Write(ctx context.Context, scope MediaScope, candidates []strategy.MediaCandidate) (Result, error) {
	res := Result{}
	if scope.QueryHash == "" {
		return res, fmt.Errorf("missing query hash")
	}

	max := w.max
	if scope.MaxResults > 0 {
		max = scope.MaxResults
	}
	survivors := topMediaCandidates(candidates, max)

	for rank, c := range survivors {
		start := combine.Round2(c.Start)
		end := combine.Round2(c.End)
		existing, err := w.store.GetFirst(ctx, MediaFilter{QueryHash: scope.QueryHash, Start: &start, End: &end})
		if err != nil {
			return res, fmt.Errorf("lookup (%s, %.2f, %.2f): %w", scope.QueryHash, start, end, err)
		}
		reasonData := marshalReasonData(c.ReasonData)
		if existing != nil {
			err = w.store.Update(ctx, existing.ID, map[string]any{
				"score":          clampScore(c.Score),
				"rank":           rank,
				"reason":         c.Reason,
				"reason_data":    reasonData,
				"strategy":       c.Strategy,
				"version":        scope.Version,
				"media_clip_ref": c.ClipID,
			})
			if err != nil {
				return res, fmt.Errorf("update %s: %w", existing.ID, err)
			}
			res.Updated++
			continue
		}
		rec := &types.MediaRecommendation{
			ID:           uuid.New(),
			WorkspaceRef: scope.WorkspaceRef,
			MediaRef:     scope.MediaRef,
			QueryHash:    scope.QueryHash,
			Start:        start,
			End:          end,
			MediaClipRef: c.ClipID,
			Score:        clampScore(c.Score),
			Rank:         rank,
			Reason:       c.Reason,
			ReasonData:   reasonData,
			Strategy:     c.Strategy,
			Version:      scope.Version,
		}
		if err := w.store.Create(ctx, rec); err != nil {
			return res, fmt.Errorf("create (%.2f, %.2f): %w", start, end, err)
		}
		res.Created++
	}

	pruned, err := w.prune(ctx, scope.QueryHash, max)
	if err != nil {
		return res, err
	}
	res.Pruned = pruned

	if err := w.recomputeRanks(ctx, scope.QueryHash); err != nil {
		return res, err
	}

	res.Total = res.Created + res.Updated
	return res, nil
}

// prune deletes everything beyond the cap, judged against a fresh reload in
// score-descending order.
func (w *MediaWriter) prune(ctx context.Context, queryHash string, max int) (int, error) {
	rows, err := w.store.ListByQueryHash(ctx, queryHash)
	if err != nil {
		return 0, fmt.Errorf("reload for prune: %w", err)
	}
	sortMediaRows(rows)
	pruned := 0
	for i := max; i < len(rows); i++ {
		if err := w.store.Delete(ctx, rows[i].ID); err != nil {
			return pruned, fmt.Errorf("prune %s: %w", rows[i].ID, err)
		}
		pruned++
	}
	return pruned, nil
}

// recomputeRanks rewrites ranks to the dense 0-based score ordering, touching
// only rows whose stored rank is stale.
func (w *MediaWriter) recomputeRanks(ctx context.Context, queryHash string) error {
	rows, err := w.store.ListByQueryHash(ctx, queryHash)
	if err != nil {
		return fmt.Errorf("reload for rank recompute: %w", err)
	}
	sortMediaRows(rows)
	for i, row := range rows {
		if row.Rank == i {
			continue
		}
		if err := w.store.Update(ctx, row.ID, map[string]any{"rank": i}); err != nil {
			return fmt.Errorf("rewrite rank %s: %w", row.ID, err)
		}
	}
	return nil
}

func topMediaCandidates(candidates []strategy.MediaCandidate, max int) []strategy.MediaCandidate {
	sorted := append([]strategy.MediaCandidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})
	if len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}

func sortMediaRows(rows []*types.MediaRecommendation) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		if rows[i].Start != rows[j].Start {
			return rows[i].Start < rows[j].Start
		}
		return rows[i].End < rows[j].End
	})
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func marshalReasonData(data map[string]any) datatypes.JSON {
	if len(data) == 0 {
		return datatypes.JSON([]byte(`{}`))
	}
	b, err := json.Marshal(data)
	if err != nil {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(b)
}
