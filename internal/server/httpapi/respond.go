package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/owncent-admin/internal/api"
	"github.com/dmitrijs2005/owncent-admin/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError translates the shared sentinel errors into the HTTP status and
// error code the console matches against. Anything unrecognized is a 500 with
// a generic body so internals never leak onto the wire.
func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var status int
	code := ""

	switch {
	case errors.Is(err, common.ErrTokenExpired):
		status, code = http.StatusUnauthorized, api.CodeTokenExpired
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrRefreshTokenExpired):
		status, code = http.StatusUnauthorized, api.CodeUnauthorized
	case errors.Is(err, common.ErrStepUpStale):
		status, code = http.StatusForbidden, api.CodeStepUpStale
	case errors.Is(err, common.ErrorForbidden),
		errors.Is(err, common.ErrImpersonationActive),
		errors.Is(err, common.ErrImpersonationRequired):
		status, code = http.StatusForbidden, api.CodeForbidden
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrUnknownKey):
		status, code = http.StatusBadRequest, api.CodeValidation
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	default:
		s.log.Error(ctx, "request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, status, api.ErrorResponse{Error: err.Error(), Code: code})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrorValidation)
	}
	return nil
}
