// Package retry executes operations under fixed, per-agent retry policies
// with exponential backoff and per-attempt timeouts. Failures never surface
// as returned errors; every outcome is folded into a Result envelope.
package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/prospect-labs/prospect/internal/faults"
)

// Operation is a unit of retryable work. Implementations must be idempotent
// or cheaply resumable: a timed-out attempt is abandoned, not killed, so the
// underlying work may still complete in the background.
type Operation[T any] func(ctx context.Context) (T, error)

// ProgressFunc is invoked before each backoff sleep with the attempt that
// just failed, the attempt ceiling, and the delay about to be applied.
type ProgressFunc func(attempt, maxAttempts int, delay time.Duration)

// Config is an immutable retry policy for one agent kind.
type Config struct {
	MaxAttempts       int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	// AttemptTimeout bounds a single attempt; zero disables the bound.
	// The effective timeout doubles on each attempt to give later
	// attempts more headroom.
	AttemptTimeout time.Duration
}

// Result is the universal return envelope for a retried operation.
// Attempts counts calls actually made; a first-try success reports 1.
// A failed Result always carries a non-nil Err.
type Result[T any] struct {
	Success  bool
	Data     T
	Err      *faults.Classified
	Attempts int
	Duration time.Duration
}

// Do runs op under cfg. It returns on the first success, immediately on any
// non-transient failure, or after MaxAttempts transient failures. No backoff
// sleep is issued after the final attempt: once the outcome is decided the
// caller is not kept waiting.
func Do[T any](ctx context.Context, cfg Config, op Operation[T], onProgress ProgressFunc) Result[T] {
	start := time.Now()

	// a non-positive ceiling still gets one attempt, so a failed Result
	// always carries the classified error from an actual call
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		data, err := runAttempt(ctx, op, attemptTimeout(cfg, attempt))
		if err == nil {
			return Result[T]{
				Success:  true,
				Data:     data,
				Attempts: attempt,
				Duration: time.Since(start),
			}
		}

		classified := faults.Classify(err)
		if classified.Category != faults.CategoryTransient || attempt >= maxAttempts {
			return Result[T]{
				Err:      classified,
				Attempts: attempt,
				Duration: time.Since(start),
			}
		}

		delay := backoffDelay(cfg, attempt)
		if onProgress != nil {
			onProgress(attempt, maxAttempts, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Result[T]{
				Err:      faults.Classify(ctx.Err()),
				Attempts: attempt,
				Duration: time.Since(start),
			}
		}
	}
}

// MaxDelay sums the backoff delays a policy can issue. It exists for
// user-facing "this may take up to N seconds" messaging, not execution.
func MaxDelay(cfg Config) time.Duration {
	var total time.Duration
	for attempt := 1; attempt < cfg.MaxAttempts; attempt++ {
		total += backoffDelay(cfg, attempt)
	}
	return total
}

// runAttempt races op against a timer. The operation goroutine is not
// cancelled on timeout; its eventual result is discarded via the buffered
// channel.
func runAttempt[T any](ctx context.Context, op Operation[T], timeout time.Duration) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}

	type outcome struct {
		data T
		err  error
	}

	done := make(chan outcome, 1)
	go func() {
		data, err := op(ctx)
		done <- outcome{data: data, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var zero T
	select {
	case o := <-done:
		return o.data, o.err
	case <-timer.C:
		return zero, fmt.Errorf("attempt timed out after %s", timeout)
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func attemptTimeout(cfg Config, attempt int) time.Duration {
	if cfg.AttemptTimeout <= 0 {
		return 0
	}
	return cfg.AttemptTimeout * time.Duration(1<<(attempt-1))
}

func backoffDelay(cfg Config, attempt int) time.Duration {
	multiplier := cfg.BackoffMultiplier
	if multiplier < 1 {
		multiplier = 1
	}
	return time.Duration(float64(cfg.InitialDelay) * math.Pow(multiplier, float64(attempt-1)))
}
