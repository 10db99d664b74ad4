package steps

import (
	"context"
	"fmt"

	"github.com/clipsmith/clipsmith-backend/internal/jobs/steprunner"
	"github.com/clipsmith/clipsmith-backend/internal/recs/strategy"
)

// strategyFanOutLimit bounds the scoring goroutines per run.
const strategyFanOutLimit = 4

// Scoring is deterministic over an in-memory snapshot; a retry would fail the
// same way.
var noRetry = steprunner.RetryPolicy{MaxAttempts: 1}

// ScoreMedia fans out one scoring step per strategy name and returns the
// per-strategy candidate lists keyed for the combiner.
func ScoreMedia(ctx context.Context, sctx *strategy.Context, names []string) (map[string][]strategy.MediaCandidate, error) {
	step := steprunner.Step[string, []strategy.MediaCandidate]{
		Name:  "score_media",
		Retry: noRetry,
		Run: func(_ context.Context, name string) ([]strategy.MediaCandidate, error) {
			s, ok := strategy.ByName(name)
			if !ok {
				return nil, fmt.Errorf("unknown strategy %q", name)
			}
			return s.ExecuteForMedia(sctx), nil
		},
	}
	outputs, err := steprunner.FanOut(ctx, step, names, strategyFanOutLimit)
	if err != nil {
		return nil, err
	}
	byStrategy := make(map[string][]strategy.MediaCandidate, len(names))
	for i, name := range names {
		byStrategy[name] = outputs[i]
	}
	return byStrategy, nil
}

// ScoreTimeline is the timeline-mode counterpart of ScoreMedia.
func ScoreTimeline(ctx context.Context, sctx *strategy.Context, names []string) (map[string][]strategy.TimelineCandidate, error) {
	step := steprunner.Step[string, []strategy.TimelineCandidate]{
		Name:  "score_timeline",
		Retry: noRetry,
		Run: func(_ context.Context, name string) ([]strategy.TimelineCandidate, error) {
			s, ok := strategy.ByName(name)
			if !ok {
				return nil, fmt.Errorf("unknown strategy %q", name)
			}
			return s.ExecuteForTimeline(sctx), nil
		},
	}
	outputs, err := steprunner.FanOut(ctx, step, names, strategyFanOutLimit)
	if err != nil {
		return nil, err
	}
	byStrategy := make(map[string][]strategy.TimelineCandidate, len(names))
	for i, name := range names {
		byStrategy[name] = outputs[i]
	}
	return byStrategy, nil
}
