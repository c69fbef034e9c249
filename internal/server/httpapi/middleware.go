package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/owncent-admin/internal/common"
	"github.com/dmitrijs2005/owncent-admin/internal/server/auth"
)

type ctxKey int

const claimsKey ctxKey = iota

// claimsFrom returns the claims the authenticate middleware stored for the
// request. It panics if called on an unauthenticated route.
func claimsFrom(ctx context.Context) *auth.Claims {
	return ctx.Value(claimsKey).(*auth.Claims)
}

func tenantFrom(r *http.Request) string {
	return r.Header.Get(common.TenantHeaderName)
}

// requireTenant rejects requests without the tenant header. Every /api/v1
// route is tenant-scoped, including the unauthenticated ones.
func (s *Server) requireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tenantFrom(r) == "" {
			s.writeError(r.Context(), w, fmt.Errorf("%w: missing %s header", common.ErrorValidation, common.TenantHeaderName))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate parses the bearer access token and stores the claims on the
// request context. A token minted for another tenant is rejected even when
// the signature is valid.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			s.writeError(r.Context(), w, common.ErrorUnauthorized)
			return
		}

		claims, err := auth.ParseToken(strings.TrimPrefix(header, common.BearerPrefix), []byte(s.cfg.SecretKey))
		if err != nil {
			s.writeError(r.Context(), w, err)
			return
		}
		if claims.TenantID != tenantFrom(r) {
			s.writeError(r.Context(), w, fmt.Errorf("%w: tenant mismatch", common.ErrorForbidden))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// requestLogger logs every request at debug level with its route and timing.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug(r.Context(), "request handled",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
