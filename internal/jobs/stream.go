package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EmitFunc delivers one event to a subscriber. A non-nil error aborts the
// stream; the poll loop stops immediately.
type EmitFunc func(Event) error

// Streamer polls the job store and converts observed record changes into
// typed events. Polling is a deliberate simplicity trade-off over a push
// bus; the SSE contract upstream does not depend on it.
type Streamer struct {
	store         Store
	logger        *slog.Logger
	interval      time.Duration
	multiInterval time.Duration
}

// NewStreamer creates a Streamer with the given single-job and multi-job
// poll intervals.
func NewStreamer(store Store, logger *slog.Logger, interval, multiInterval time.Duration) *Streamer {
	return &Streamer{
		store:         store,
		logger:        logger.With("system", "stream"),
		interval:      interval,
		multiInterval: multiInterval,
	}
}

// tracker remembers the last observed job state so each poll emits at most
// one event per changed facet. lastProgress starts below zero so the first
// observed progress value always emits.
type tracker struct {
	lastProgress int
	lastPhase    string
	lastStep     string
}

func newTracker() *tracker {
	return &tracker{lastProgress: -1}
}

// Stream emits a heartbeat, then polls the job until it reaches a terminal
// state, emitting progress, phase, and step events for observed changes.
// A terminal status emits a single complete or error event and ends the
// stream. Context cancellation (client disconnect) stops polling with no
// orphaned timers.
func (s *Streamer) Stream(ctx context.Context, jobID uuid.UUID, emit EmitFunc) error {
	if err := emit(newEvent(EventHeartbeat, jobID, heartbeatData{JobID: jobID})); err != nil {
		return err
	}

	tr := newTracker()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		done, err := s.poll(ctx, jobID, tr, emit)
		if done || err != nil {
			return err
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			s.logger.Info("stream closed by client", "job_id", jobID)
			return nil
		}
	}
}

// StreamMany polls a set of jobs on one stream for dashboard use. Change
// detection is coarser than the single-job stream: progress and terminal
// transitions only. The stream ends once every job is terminal.
func (s *Streamer) StreamMany(ctx context.Context, ids []uuid.UUID, emit EmitFunc) error {
	if err := emit(newEvent(EventHeartbeat, uuid.Nil, multiHeartbeatData{JobIDs: ids})); err != nil {
		return err
	}

	trackers := make(map[uuid.UUID]*tracker, len(ids))
	finished := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		trackers[id] = newTracker()
	}

	ticker := time.NewTicker(s.multiInterval)
	defer ticker.Stop()

	for {
		remaining := 0
		for _, id := range ids {
			if finished[id] {
				continue
			}

			done, err := s.pollCoarse(ctx, id, trackers[id], emit)
			if err != nil {
				return err
			}
			if done {
				finished[id] = true
				continue
			}
			remaining++
		}

		if remaining == 0 {
			return nil
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			s.logger.Info("multi stream closed by client", "jobs", len(ids))
			return nil
		}
	}
}

// poll reads the job once and emits events for observed changes. A
// terminal status emits only its terminal event, regardless of any other
// changes landed in the same tick.
func (s *Streamer) poll(ctx context.Context, jobID uuid.UUID, tr *tracker, emit EmitFunc) (bool, error) {
	job, err := s.store.Find(ctx, jobID)
	if err != nil {
		return true, emit(newEvent(EventError, jobID, errorData{
			JobID:   jobID,
			Message: err.Error(),
		}))
	}

	if job.Status.Terminal() {
		return true, emit(terminalEvent(job))
	}

	if job.Progress != tr.lastProgress {
		tr.lastProgress = job.Progress
		if err := emit(newEvent(EventProgress, jobID, progressData{
			JobID:    jobID,
			Progress: job.Progress,
		})); err != nil {
			return true, err
		}
	}

	if phase := job.Phase(); phase != "" && phase != tr.lastPhase {
		tr.lastPhase = phase
		if err := emit(newEvent(EventPhase, jobID, phaseData{
			JobID: jobID,
			Phase: phase,
		})); err != nil {
			return true, err
		}
	}

	if job.CurrentStep != "" && job.CurrentStep != tr.lastStep {
		tr.lastStep = job.CurrentStep
		if err := emit(newEvent(EventStep, jobID, stepData{
			JobID: jobID,
			Step:  job.CurrentStep,
		})); err != nil {
			return true, err
		}
	}

	return false, nil
}

func (s *Streamer) pollCoarse(ctx context.Context, jobID uuid.UUID, tr *tracker, emit EmitFunc) (bool, error) {
	job, err := s.store.Find(ctx, jobID)
	if err != nil {
		return true, emit(newEvent(EventError, jobID, errorData{
			JobID:   jobID,
			Message: err.Error(),
		}))
	}

	if job.Status.Terminal() {
		return true, emit(terminalEvent(job))
	}

	if job.Progress != tr.lastProgress {
		tr.lastProgress = job.Progress
		if err := emit(newEvent(EventProgress, jobID, progressData{
			JobID:    jobID,
			Progress: job.Progress,
		})); err != nil {
			return true, err
		}
	}

	return false, nil
}

func terminalEvent(job *Job) Event {
	if job.Status == StatusCompleted {
		var result any = json.RawMessage("null")
		if len(job.Result) > 0 {
			result = job.Result
		}
		return newEvent(EventComplete, job.ID, result)
	}

	message := "job " + string(job.Status)
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		message = *job.ErrorMessage
	}

	return newEvent(EventError, job.ID, errorData{
		JobID:   job.ID,
		Status:  job.Status,
		Message: message,
	})
}

type multiHeartbeatData struct {
	JobIDs []uuid.UUID `json:"job_ids"`
}
