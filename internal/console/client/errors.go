package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/common"
)

// ErrUnavailable means the store could not be reached at all (connection
// refused, DNS, timeout). Distinct from an HTTP error response.
var ErrUnavailable = errors.New("store unavailable")

// APIError is a non-2xx response from the store. It matches the shared
// sentinel errors through errors.Is so callers never inspect status codes.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("store returned status %d", e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case common.ErrTokenExpired:
		return e.StatusCode == 401 && e.Code == api.CodeTokenExpired
	case common.ErrorUnauthorized:
		return e.StatusCode == 401
	case common.ErrStepUpStale:
		return e.Code == api.CodeStepUpStale
	case common.ErrorForbidden:
		return e.StatusCode == 403
	case common.ErrorValidation:
		return e.StatusCode == 400 || e.StatusCode == 422
	case common.ErrorNotFound:
		return e.StatusCode == 404
	}
	return false
}
