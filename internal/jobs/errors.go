package jobs

import (
	"errors"
	"net/http"
)

// Domain errors for job operations.
var (
	ErrNotFound   = errors.New("job not found")
	ErrInvalidJob = errors.New("invalid job")
)

// MapHTTPStatus maps job domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidJob) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
