package jobs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/pkg/handlers"
	"github.com/prospect-labs/prospect/pkg/routes"
)

// Handler provides HTTP endpoints for job lookup and Server-Sent Event
// progress streams.
type Handler struct {
	store    Store
	streamer *Streamer
	logger   *slog.Logger
}

// NewHandler creates a Handler with the given store, streamer, and logger.
func NewHandler(store Store, streamer *Streamer, logger *slog.Logger) *Handler {
	return &Handler{
		store:    store,
		streamer: streamer,
		logger:   logger.With("handler", "jobs"),
	}
}

// Routes returns the route group definition for job endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/jobs",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/events", Handler: h.StreamMany},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/events", Handler: h.Stream},
		},
	}
}

// Find returns a single job record by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidJob)
		return
	}

	job, err := h.store.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, job)
}

// Stream serves the progress event stream for one job over SSE. The
// response stays open until the job reaches a terminal state or the client
// disconnects.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidJob)
		return
	}

	emit, ok := h.openStream(w)
	if !ok {
		return
	}

	if err := h.streamer.Stream(r.Context(), id, emit); err != nil {
		h.logger.Warn("event stream interrupted", "job_id", id, "error", err)
	}
}

// StreamMany serves a combined progress stream for the comma-separated job
// ids in the "ids" query parameter.
func (h *Handler) StreamMany(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDs(r.URL.Query().Get("ids"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	emit, ok := h.openStream(w)
	if !ok {
		return
	}

	if err := h.streamer.StreamMany(r.Context(), ids, emit); err != nil {
		h.logger.Warn("multi event stream interrupted", "jobs", len(ids), "error", err)
	}
}

// openStream writes the SSE response headers and returns an emit function
// that frames events onto the wire and flushes after each write.
func (h *Handler) openStream(w http.ResponseWriter) (EmitFunc, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError,
			fmt.Errorf("streaming unsupported by connection"))
		return nil, false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return func(e Event) error {
		data, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("encode event payload: %w", err)
		}

		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\nid: %s\n\n",
			e.Type, data, e.Timestamp.Format(time.RFC3339)); err != nil {
			return err
		}

		flusher.Flush()
		return nil
	}, true
}

func parseIDs(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return nil, fmt.Errorf("missing ids parameter")
	}

	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid job id %q", part)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
