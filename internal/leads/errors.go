package leads

import (
	"errors"
	"net/http"
)

// Domain errors for lead operations.
var (
	ErrNotFound       = errors.New("lead not found")
	ErrDuplicate      = errors.New("lead already exists")
	ErrInvalidLead    = errors.New("invalid lead")
	ErrUnknownAgent   = errors.New("unknown agent kind")
	ErrNotSkippable   = errors.New("agent is not skippable")
	ErrErrorNotFound  = errors.New("agent error not found")
	ErrMissingWebsite = errors.New("lead has no website")
)

// MapHTTPStatus maps lead domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidLead), errors.Is(err, ErrUnknownAgent), errors.Is(err, ErrMissingWebsite):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotSkippable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
