package jobs_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/internal/jobs"
)

// scriptedStore serves a fixed sequence of job snapshots, one per Find call,
// holding the final snapshot once the script runs out.
type scriptedStore struct {
	mu        sync.Mutex
	snapshots map[uuid.UUID][]jobs.Job
	position  map[uuid.UUID]int
}

func newScriptedStore() *scriptedStore {
	return &scriptedStore{
		snapshots: make(map[uuid.UUID][]jobs.Job),
		position:  make(map[uuid.UUID]int),
	}
}

func (s *scriptedStore) script(id uuid.UUID, states ...jobs.Job) {
	s.snapshots[id] = states
}

func (s *scriptedStore) Find(_ context.Context, id uuid.UUID) (*jobs.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	states, ok := s.snapshots[id]
	if !ok {
		return nil, jobs.ErrNotFound
	}

	pos := s.position[id]
	if pos >= len(states) {
		pos = len(states) - 1
	} else {
		s.position[id]++
	}

	snap := states[pos]
	snap.ID = id
	return &snap, nil
}

func (s *scriptedStore) Create(context.Context, string, uuid.UUID) (*jobs.Job, error) {
	return nil, nil
}
func (s *scriptedStore) SetProgress(context.Context, uuid.UUID, int, string) error { return nil }
func (s *scriptedStore) SetPhase(context.Context, uuid.UUID, string) error         { return nil }
func (s *scriptedStore) Complete(context.Context, uuid.UUID, any) error            { return nil }
func (s *scriptedStore) Fail(context.Context, uuid.UUID, string) error             { return nil }

func collect(t *testing.T, streamer *jobs.Streamer, id uuid.UUID) []jobs.Event {
	t.Helper()

	var events []jobs.Event
	err := streamer.Stream(context.Background(), id, func(e jobs.Event) error {
		events = append(events, e)
		return nil
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	return events
}

func newTestStreamer(store jobs.Store) *jobs.Streamer {
	return jobs.NewStreamer(store, slog.New(slog.DiscardHandler), time.Millisecond, time.Millisecond)
}

func running(progress int, step string) jobs.Job {
	return jobs.Job{Status: jobs.StatusRunning, Progress: progress, CurrentStep: step}
}

func TestStreamEmitsLifecycleSequence(t *testing.T) {
	id := uuid.New()
	store := newScriptedStore()

	completed := jobs.Job{
		Status:   jobs.StatusCompleted,
		Progress: 100,
		Result:   json.RawMessage(`{"success":true}`),
	}

	store.script(id,
		running(10, "extracting company data"),
		running(55, "timeline complete"),
		completed,
	)

	events := collect(t, newTestStreamer(store), id)

	types := make([]jobs.EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}

	want := []jobs.EventType{
		jobs.EventHeartbeat,
		jobs.EventProgress,
		jobs.EventStep,
		jobs.EventProgress,
		jobs.EventStep,
		jobs.EventComplete,
	}

	if len(types) != len(want) {
		t.Fatalf("events: got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("event %d: got %s, want %s (full: %v)", i, types[i], want[i], types)
		}
	}
}

func TestStreamTerminalTickEmitsOnlyTerminalEvent(t *testing.T) {
	id := uuid.New()
	store := newScriptedStore()

	// job is already terminal on first poll; no progress event for the
	// final 100 may precede the complete event
	store.script(id, jobs.Job{
		Status:   jobs.StatusCompleted,
		Progress: 100,
		Result:   json.RawMessage(`{"ok":true}`),
	})

	events := collect(t, newTestStreamer(store), id)

	if len(events) != 2 {
		t.Fatalf("events: got %d, want heartbeat + complete", len(events))
	}
	if events[0].Type != jobs.EventHeartbeat {
		t.Errorf("first event: got %s, want %s", events[0].Type, jobs.EventHeartbeat)
	}
	if events[1].Type != jobs.EventComplete {
		t.Errorf("second event: got %s, want %s", events[1].Type, jobs.EventComplete)
	}
}

func TestStreamFailedJobEmitsError(t *testing.T) {
	id := uuid.New()
	store := newScriptedStore()

	msg := "extraction exhausted retries"
	store.script(id,
		running(10, ""),
		jobs.Job{Status: jobs.StatusFailed, Progress: 10, ErrorMessage: &msg},
	)

	events := collect(t, newTestStreamer(store), id)

	last := events[len(events)-1]
	if last.Type != jobs.EventError {
		t.Fatalf("last event: got %s, want %s", last.Type, jobs.EventError)
	}
}

func TestStreamUnknownJob(t *testing.T) {
	store := newScriptedStore()

	events := collect(t, newTestStreamer(store), uuid.New())

	if len(events) != 2 {
		t.Fatalf("events: got %d, want heartbeat + error", len(events))
	}
	if events[1].Type != jobs.EventError {
		t.Errorf("got %s, want %s", events[1].Type, jobs.EventError)
	}
}

func TestStreamClientDisconnect(t *testing.T) {
	id := uuid.New()
	store := newScriptedStore()
	store.script(id, running(10, ""))

	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	count := 0
	done := make(chan error, 1)
	go func() {
		done <- newTestStreamer(store).Stream(ctx, id, func(jobs.Event) error {
			mu.Lock()
			defer mu.Unlock()
			count++
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("stream did not stop on context cancellation")
	}
}

func TestStreamManyClosesWhenAllTerminal(t *testing.T) {
	store := newScriptedStore()

	first := uuid.New()
	second := uuid.New()

	store.script(first,
		running(30, ""),
		jobs.Job{Status: jobs.StatusCompleted, Progress: 100, Result: json.RawMessage(`{}`)},
	)
	msg := "boom"
	store.script(second,
		jobs.Job{Status: jobs.StatusFailed, ErrorMessage: &msg},
	)

	var events []jobs.Event
	err := newTestStreamer(store).StreamMany(context.Background(), []uuid.UUID{first, second},
		func(e jobs.Event) error {
			events = append(events, e)
			return nil
		})
	if err != nil {
		t.Fatalf("stream many: %v", err)
	}

	terminal := map[uuid.UUID]jobs.EventType{}
	for _, e := range events {
		if e.Type == jobs.EventComplete || e.Type == jobs.EventError {
			terminal[e.JobID] = e.Type
		}
	}

	if terminal[first] != jobs.EventComplete {
		t.Errorf("first job: got %s, want %s", terminal[first], jobs.EventComplete)
	}
	if terminal[second] != jobs.EventError {
		t.Errorf("second job: got %s, want %s", terminal[second], jobs.EventError)
	}
}
