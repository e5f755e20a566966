package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/txingest/internal/domain"
	"github.com/iho/txingest/internal/infrastructure/metrics"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// OperatorContextKey is the context key for the authenticated operator
	OperatorContextKey ContextKey = "operator"
)

// TokenVerifier verifies bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*domain.Operator, error)
}

// AuthMiddleware creates an authentication middleware. m may be nil.
func AuthMiddleware(verifier TokenVerifier, m *metrics.Metrics) func(http.Handler) http.Handler {
	fail := func(w http.ResponseWriter, reason, message string) {
		if m != nil {
			m.AuthFailures.WithLabelValues(reason).Inc()
		}
		http.Error(w, message, http.StatusUnauthorized)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				fail(w, "missing_header", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				fail(w, "bad_format", "invalid authorization header format")
				return
			}

			operator, err := verifier.Verify(parts[1])
			if err != nil {
				reason := "invalid_token"
				if errors.Is(err, domain.ErrExpiredToken) {
					reason = "expired_token"
				}
				fail(w, reason, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), OperatorContextKey, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole creates a middleware that checks for a minimum role
func RequireRole(minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operator, ok := GetOperatorFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			switch minRole {
			case domain.RoleAdmin:
				if operator.Role != domain.RoleAdmin {
					http.Error(w, "insufficient permissions", http.StatusForbidden)
					return
				}
			case domain.RoleOperator:
				if !operator.Role.CanTrigger() {
					http.Error(w, "insufficient permissions", http.StatusForbidden)
					return
				}
			case domain.RoleViewer:
				// All authenticated operators can view
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetOperatorFromContext extracts the authenticated operator from context
func GetOperatorFromContext(ctx context.Context) (*domain.Operator, bool) {
	operator, ok := ctx.Value(OperatorContextKey).(*domain.Operator)
	return operator, ok
}
