package leads

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/prospect-labs/prospect/internal/jobs"
	"github.com/prospect-labs/prospect/pkg/handlers"
	"github.com/prospect-labs/prospect/pkg/pagination"
	"github.com/prospect-labs/prospect/pkg/routes"
)

// Qualifier starts a qualification pipeline run for a lead and returns the
// background job tracking it.
type Qualifier interface {
	Start(ctx context.Context, leadID uuid.UUID) (*jobs.Job, error)
}

// Handler provides HTTP endpoints for lead operations, qualification
// kickoff, and error recovery actions.
type Handler struct {
	sys        System
	qualifier  Qualifier
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, qualifier, logger, and pagination config.
func NewHandler(sys System, qualifier Qualifier, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		qualifier:  qualifier,
		logger:     logger.With("handler", "leads"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for lead endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/leads",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "POST", Pattern: "/{id}/qualify", Handler: h.Qualify},
			{Method: "POST", Pattern: "/{id}/agents/{agent}/retry", Handler: h.RetryAgent},
			{Method: "POST", Pattern: "/{id}/agents/{agent}/skip", Handler: h.SkipAgent},
			{Method: "POST", Pattern: "/{id}/errors/{error_id}/resolve", Handler: h.ResolveError},
		},
	}
}

// List returns a paginated list of leads with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single lead by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLead)
		return
	}

	lead, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, lead)
}

// Create registers a new lead from a JSON body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLead)
		return
	}

	lead, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, lead)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching leads.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLead)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete removes a lead by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLead)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Qualify starts a background qualification run for the lead and responds
// with the tracking job. Clients follow progress via the job event stream.
func (h *Handler) Qualify(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLead)
		return
	}

	job, err := h.qualifier.Start(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusAccepted, job)
}

// RetryAgent clears the agent's unresolved errors and resets the lead to
// the agent's running status.
func (h *Handler) RetryAgent(w http.ResponseWriter, r *http.Request) {
	h.recover(w, r, h.sys.Retry)
}

// SkipAgent resolves the agent's errors with a skip action and advances the
// lead to the agent's skip target.
func (h *Handler) SkipAgent(w http.ResponseWriter, r *http.Request) {
	h.recover(w, r, h.sys.Skip)
}

func (h *Handler) recover(
	w http.ResponseWriter,
	r *http.Request,
	action func(context.Context, uuid.UUID, AgentKind) (*Lead, error),
) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLead)
		return
	}

	agent, err := ParseAgentKind(r.PathValue("agent"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrUnknownAgent)
		return
	}

	lead, err := action(r.Context(), id, agent)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, lead)
}

// ResolveError marks a single agent error resolved without changing status.
func (h *Handler) ResolveError(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidLead)
		return
	}

	errorID, err := uuid.Parse(r.PathValue("error_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrErrorNotFound)
		return
	}

	lead, err := h.sys.ResolveError(r.Context(), id, errorID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, lead)
}
