package auth

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
)

type Middleware struct {
	verifier *Verifier
	logger   *zap.Logger
}

func NewMiddleware(verifier *Verifier, logger *zap.Logger) *Middleware {
	return &Middleware{verifier: verifier, logger: logger}
}

// Authenticate attaches the principal of a valid bearer token. Requests
// without an Authorization header pass through anonymously; a present but
// invalid token is rejected.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			httpx.WriteError(w, r, m.logger, apperrors.NewUnauthorizedError("malformed authorization header"))
			return
		}

		principal, err := m.verifier.Verify(raw)
		if err != nil {
			m.logger.Debug("rejected bearer token", zap.String("traceId", httpx.TraceID(r.Context())), zap.Error(err))
			httpx.WriteError(w, r, m.logger, apperrors.NewUnauthorizedError("invalid or expired token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			httpx.WriteError(w, r, m.logger, apperrors.NewUnauthorizedError("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := FromContext(r.Context())
		if !ok {
			httpx.WriteError(w, r, m.logger, apperrors.NewUnauthorizedError("authentication required"))
			return
		}
		if !p.IsAdmin() {
			httpx.WriteError(w, r, m.logger, apperrors.NewForbiddenError("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
