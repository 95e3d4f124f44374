package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prospect-labs/prospect/internal/faults"
	"github.com/prospect-labs/prospect/internal/retry"
)

var errTransient = errors.New("connection reset by peer")

func fastConfig(maxAttempts int) retry.Config {
	return retry.Config{
		MaxAttempts:       maxAttempts,
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	result := retry.Do(context.Background(), fastConfig(3),
		func(ctx context.Context) (string, error) {
			return "ok", nil
		}, nil)

	if !result.Success {
		t.Fatal("expected success")
	}
	if result.Data != "ok" {
		t.Errorf("data: got %q, want %q", result.Data, "ok")
	}
	if result.Attempts != 1 {
		t.Errorf("attempts: got %d, want 1", result.Attempts)
	}
	if result.Err != nil {
		t.Errorf("unexpected error: %v", result.Err)
	}
}

func TestDoRetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	result := retry.Do(context.Background(), fastConfig(3),
		func(ctx context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errTransient
			}
			return 42, nil
		}, nil)

	if !result.Success {
		t.Fatalf("expected success, got %v", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("attempts: got %d, want 3", result.Attempts)
	}
	if result.Data != 42 {
		t.Errorf("data: got %d, want 42", result.Data)
	}
}

func TestDoExhaustsTransientFailures(t *testing.T) {
	calls := 0
	result := retry.Do(context.Background(), fastConfig(3),
		func(ctx context.Context) (int, error) {
			calls++
			return 0, errTransient
		}, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
	if result.Attempts != 3 {
		t.Errorf("attempts: got %d, want 3", result.Attempts)
	}
	if result.Err == nil || result.Err.Category != faults.CategoryTransient {
		t.Errorf("expected transient classification, got %+v", result.Err)
	}
}

func TestDoStopsOnPermanentFailure(t *testing.T) {
	calls := 0
	result := retry.Do(context.Background(), fastConfig(5),
		func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("403 forbidden")
		}, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	if calls != 1 {
		t.Errorf("permanent failure should not retry: got %d calls", calls)
	}
	if result.Err.Category != faults.CategoryPermanent {
		t.Errorf("category: got %s, want %s", result.Err.Category, faults.CategoryPermanent)
	}
}

func TestDoBackoffProgression(t *testing.T) {
	cfg := retry.Config{
		MaxAttempts:       3,
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 2,
	}

	var delays []time.Duration
	retry.Do(context.Background(), cfg,
		func(ctx context.Context) (int, error) {
			return 0, errTransient
		},
		func(attempt, maxAttempts int, delay time.Duration) {
			delays = append(delays, delay)
		})

	// no sleep after the final attempt, so two delays for three attempts
	want := []time.Duration{time.Millisecond, 2 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("delays: got %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay %d: got %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestDoAttemptTimeoutDoesNotKillOperation(t *testing.T) {
	released := make(chan struct{})
	cfg := retry.Config{
		MaxAttempts:       1,
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 2,
		AttemptTimeout:    5 * time.Millisecond,
	}

	result := retry.Do(context.Background(), cfg,
		func(ctx context.Context) (int, error) {
			defer close(released)
			time.Sleep(50 * time.Millisecond)
			return 7, nil
		}, nil)

	if result.Success {
		t.Fatal("expected timeout failure")
	}
	if result.Err.Kind != faults.KindTimeout {
		t.Errorf("kind: got %s, want %s", result.Err.Kind, faults.KindTimeout)
	}

	// the abandoned attempt still runs to completion in the background
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("operation was killed by the timeout")
	}
}

func TestDoContextCancellationStopsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := retry.Config{
		MaxAttempts:       5,
		InitialDelay:      time.Hour,
		BackoffMultiplier: 2,
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	result := retry.Do(ctx, cfg,
		func(ctx context.Context) (int, error) {
			return 0, errTransient
		}, nil)

	if result.Success {
		t.Fatal("expected failure")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation did not interrupt backoff: took %v", elapsed)
	}
	if result.Attempts != 1 {
		t.Errorf("attempts: got %d, want 1", result.Attempts)
	}
}

func TestDoNonPositiveAttemptCeiling(t *testing.T) {
	calls := 0
	result := retry.Do(context.Background(), retry.Config{MaxAttempts: 0},
		func(ctx context.Context) (int, error) {
			calls++
			return 0, errTransient
		}, nil)

	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
	if result.Attempts != 1 {
		t.Errorf("attempts: got %d, want 1", result.Attempts)
	}
	if result.Err == nil {
		t.Fatal("failed result must carry a classified error")
	}

	ok := retry.Do(context.Background(), retry.Config{MaxAttempts: 0},
		func(ctx context.Context) (string, error) {
			return "ok", nil
		}, nil)
	if !ok.Success || ok.Attempts != 1 {
		t.Errorf("success under zero ceiling: got %+v", ok)
	}
}

func TestMaxDelay(t *testing.T) {
	tests := []struct {
		cfg  retry.Config
		want time.Duration
	}{
		{
			cfg: retry.Config{
				MaxAttempts:       3,
				InitialDelay:      time.Second,
				BackoffMultiplier: 2,
			},
			want: 3 * time.Second,
		},
		{
			cfg: retry.Config{
				MaxAttempts:       1,
				InitialDelay:      time.Second,
				BackoffMultiplier: 2,
			},
			want: 0,
		},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d attempts", tc.cfg.MaxAttempts), func(t *testing.T) {
			if got := retry.MaxDelay(tc.cfg); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestForKindFallsBackToDefault(t *testing.T) {
	known := retry.ForKind(retry.KindExtraction)
	if known.MaxAttempts != 3 {
		t.Errorf("extraction max attempts: got %d, want 3", known.MaxAttempts)
	}

	unknown := retry.ForKind("not-a-real-agent")
	if unknown.MaxAttempts == 0 {
		t.Error("default policy should have a positive attempt ceiling")
	}
}
