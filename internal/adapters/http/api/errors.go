package api

import (
	"errors"
	"net/http"

	"github.com/okian/wangcai/internal/adapters/repository"
	"github.com/okian/wangcai/internal/domain/profile"
	"github.com/okian/wangcai/internal/domain/workflow"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// Error codes carried in the JSON error body.
const (
	codeBadRequest        = "bad_request"
	codeNotFound          = "not_found"
	codeInvalidTransition = "invalid_transition"
	codeInternal          = "internal"
)

// classify maps a service error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrInvalidID):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, profile.ErrInvalidProfile), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, workflow.ErrInvalidTransition):
		return http.StatusConflict, codeInvalidTransition
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
