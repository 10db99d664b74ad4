package writer

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	types "github.com/clipsmith/clipsmith-backend/internal/domain"
	"github.com/clipsmith/clipsmith-backend/internal/pkg/logger"
	"github.com/clipsmith/clipsmith-backend/internal/recs/materialize"
	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

// TimelineScope identifies where a timeline write cycle lands. MaxResults
// overrides the writer's configured cap for this cycle when positive.
type TimelineScope struct {
	WorkspaceRef uuid.UUID
	TimelineRef  uuid.UUID
	QueryHash    string
	Version      int
	TargetMode   string
	SeedClipRef  *uuid.UUID
	MaxResults   int
}

// TimelineWriter is the timeline variant of the write cycle. It differs from
// the media variant in one way: materialized (accepted) recommendations are
// skipped during upsert, exempt from pruning, and keep their stored rank.
type TimelineWriter struct {
	store TimelineStore
	log   *logger.Logger
	max   int
}

func NewTimelineWriter(store TimelineStore, baseLog *logger.Logger, maxPerContext int) *TimelineWriter {
	if maxPerContext <= 0 {
		maxPerContext = DefaultMaxPerContext
	}
	return &TimelineWriter{
		store: store,
		log:   baseLog.With("component", "TimelineRecommendationWriter"),
		max:   maxPerContext,
	}
}

func (w *TimelineWriter) Write(ctx context.Context, scope TimelineScope, candidates []strategy.TimelineCandidate) (Result, error) {
	res := Result{}
	if scope.QueryHash == "" {
		return res, fmt.Errorf("missing query hash")
	}
	if scope.TargetMode == "" {
		scope.TargetMode = types.TargetModeAppend
	}

	stored, err := w.store.ListByQueryHash(ctx, scope.QueryHash)
	if err != nil {
		return res, fmt.Errorf("load materialized set: %w", err)
	}
	materialized := materialize.IDSet(stored)
	if warnings := materialize.Validate(stored); len(warnings) > 0 {
		for _, warn := range warnings {
			w.log.Warn("Materialization inconsistency", "warning", warn.String())
		}
	}

	max := w.max
	if scope.MaxResults > 0 {
		max = scope.MaxResults
	}
	survivors := topTimelineCandidates(candidates, max)

	for rank, c := range survivors {
		clipID := c.ClipID
		existing, err := w.store.GetFirst(ctx, TimelineFilter{QueryHash: scope.QueryHash, MediaClipRef: &clipID})
		if err != nil {
			return res, fmt.Errorf("lookup (%s, %s): %w", scope.QueryHash, clipID, err)
		}
		if existing != nil && materialized[existing.ID] {
			res.Skipped++
			continue
		}
		if existing != nil {
			err = w.store.Update(ctx, existing.ID, map[string]any{
				"score":         clampScore(c.Score),
				"rank":          rank,
				"reason":        c.Reason,
				"reason_data":   marshalReasonData(c.ReasonData),
				"strategy":      c.Strategy,
				"version":       scope.Version,
				"target_mode":   scope.TargetMode,
				"seed_clip_ref": scope.SeedClipRef,
			})
			if err != nil {
				return res, fmt.Errorf("update %s: %w", existing.ID, err)
			}
			res.Updated++
			continue
		}
		rec := &types.TimelineRecommendation{
			ID:           uuid.New(),
			WorkspaceRef: scope.WorkspaceRef,
			TimelineRef:  scope.TimelineRef,
			QueryHash:    scope.QueryHash,
			MediaClipRef: clipID,
			TargetMode:   scope.TargetMode,
			SeedClipRef:  scope.SeedClipRef,
			Score:        clampScore(c.Score),
			Rank:         rank,
			Reason:       c.Reason,
			ReasonData:   marshalReasonData(c.ReasonData),
			Strategy:     c.Strategy,
			Version:      scope.Version,
		}
		if err := w.store.Create(ctx, rec); err != nil {
			return res, fmt.Errorf("create (%s): %w", clipID, err)
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

// prune deletes non-materialized rows beyond the cap. Materialized rows
// persist regardless of rank, always judged against a fresh reload.
func (w *TimelineWriter) prune(ctx context.Context, queryHash string, max int) (int, error) {
	rows, err := w.store.ListByQueryHash(ctx, queryHash)
	if err != nil {
		return 0, fmt.Errorf("reload for prune: %w", err)
	}
	live := nonMaterialized(rows)
	sortTimelineRows(live)
	pruned := 0
	for i := max; i < len(live); i++ {
		if err := w.store.Delete(ctx, live[i].ID); err != nil {
			return pruned, fmt.Errorf("prune %s: %w", live[i].ID, err)
		}
		pruned++
	}
	return pruned, nil
}

// recomputeRanks renumbers non-materialized rows densely from zero by
// descending score; materialized rows keep their stored rank permanently.
func (w *TimelineWriter) recomputeRanks(ctx context.Context, queryHash string) error {
	rows, err := w.store.ListByQueryHash(ctx, queryHash)
	if err != nil {
		return fmt.Errorf("reload for rank recompute: %w", err)
	}
	live := nonMaterialized(rows)
	sortTimelineRows(live)
	for i, row := range live {
		if row.Rank == i {
			continue
		}
		if err := w.store.Update(ctx, row.ID, map[string]any{"rank": i}); err != nil {
			return fmt.Errorf("rewrite rank %s: %w", row.ID, err)
		}
	}
	return nil
}

func nonMaterialized(rows []*types.TimelineRecommendation) []*types.TimelineRecommendation {
	out := make([]*types.TimelineRecommendation, 0, len(rows))
	for _, r := range rows {
		if !materialize.IsMaterialized(r) {
			out = append(out, r)
		}
	}
	return out
}

func topTimelineCandidates(candidates []strategy.TimelineCandidate, max int) []strategy.TimelineCandidate {
	sorted := append([]strategy.TimelineCandidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ClipID.String() < sorted[j].ClipID.String()
	})
	if len(sorted) > max {
		sorted = sorted[:max]
	}
	return sorted
}

func sortTimelineRows(rows []*types.TimelineRecommendation) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].MediaClipRef.String() < rows[j].MediaClipRef.String()
	})
}
