package steprunner

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"
)

// RetryPolicy bounds how often a step is re-run and how long to wait between
// attempts. Backoff doubles per attempt up to MaxBackoff, with jitter so
// parallel retries do not stampede.
type RetryPolicy struct {
	MaxAttempts int
	Retryable   func(err error) bool

	MinBackoff time.Duration // default 1s
	MaxBackoff time.Duration // default 30s
	JitterFrac float64       // default 0.20
}

// DefaultRetry is the policy steps get when they declare none.
var DefaultRetry = RetryPolicy{MaxAttempts: 3}

// Step is a self-contained unit of pipeline work: a pure function from a
// typed input to a typed output. Steps receive everything through their
// input value and hold no handles to storage or the job row, which is what
// makes them safe to retry and to fan out in parallel.
type Step[I, O any] struct {
	Name  string
	Retry RetryPolicy
	Run   func(ctx context.Context, in I) (O, error)
}

// StepError wraps a step failure with its name and the attempts spent.
type StepError struct {
	Step     string
	Attempts int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed after %d attempt(s): %v", e.Step, e.Attempts, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Execute runs one step to completion, retrying per its policy. Panics inside
// the step are converted to errors so one bad input cannot take down the
// worker. Context cancellation stops retrying immediately.
func Execute[I, O any](ctx context.Context, step Step[I, O], in I) (O, error) {
	var zero O
	if step.Run == nil {
		return zero, &StepError{Step: step.Name, Attempts: 0, Err: fmt.Errorf("no run function")}
	}
	policy := step.Retry
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = DefaultRetry.MaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, &StepError{Step: step.Name, Attempts: attempt - 1, Err: err}
		}

		out, err := runSafely(ctx, step, in)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !shouldRetry(policy, attempt, err) {
			return zero, &StepError{Step: step.Name, Attempts: attempt, Err: err}
		}
		select {
		case <-ctx.Done():
			return zero, &StepError{Step: step.Name, Attempts: attempt, Err: ctx.Err()}
		case <-time.After(computeBackoff(policy, attempt)):
		}
	}
	return zero, &StepError{Step: step.Name, Attempts: policy.MaxAttempts, Err: lastErr}
}

// FanOut executes the step once per input with at most limit goroutines and
// returns outputs positionally aligned with inputs. The first failing input
// cancels the rest.
func FanOut[I, O any](ctx context.Context, step Step[I, O], inputs []I, limit int) ([]O, error) {
	out := make([]O, len(inputs))
	if len(inputs) == 0 {
		return out, nil
	}
	if limit <= 0 {
		limit = len(inputs)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			res, err := Execute(gctx, step, in)
			if err != nil {
				return err
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func runSafely[I, O any](ctx context.Context, step Step[I, O], in I) (out O, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in step %s: %v", step.Name, r)
		}
	}()
	return step.Run(ctx, in)
}

func shouldRetry(r RetryPolicy, attempts int, err error) bool {
	if attempts >= r.MaxAttempts {
		return false
	}
	if r.Retryable == nil {
		return true
	}
	return r.Retryable(err)
}

func computeBackoff(r RetryPolicy, attempts int) time.Duration {
	minB := r.MinBackoff
	maxB := r.MaxBackoff
	j := r.JitterFrac
	if minB <= 0 {
		minB = 1 * time.Second
	}
	if maxB <= 0 {
		maxB = 30 * time.Second
	}
	if j <= 0 {
		j = 0.20
	}
	if attempts < 1 {
		attempts = 1
	}
	d := time.Duration(float64(minB) * math.Pow(2, float64(attempts-1)))
	if d > maxB {
		d = maxB
	}
	delta := float64(d) * j
	low := float64(d) - delta
	high := float64(d) + delta
	if low < 0 {
		low = 0
	}
	return time.Duration(low + rand.Float64()*(high-low))
}
