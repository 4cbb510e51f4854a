package auth

import (
	"context"
	"net/http"
	"strings"

	"pokefinder-cloud/internal/observability/metrics"
)

// TokenRevoker reports whether a session token id has been revoked.
type TokenRevoker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Middleware validates session tokens on protected routes.
type Middleware struct {
	Secret  []byte
	Policy  Policy
	Revoker TokenRevoker
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy, revoker TokenRevoker) *Middleware {
	return &Middleware{Secret: secret, Policy: policy, Revoker: revoker}
}

// Wrap applies session token validation to the handler.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) || !m.Policy.RequiresAuth(r) {
			next.ServeHTTP(w, r)
			return
		}

		token := ExtractToken(r)
		claims, err := ParseToken(token, m.Secret)
		if err != nil {
			metrics.IncAuthFailure("invalid_token")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if m.Revoker != nil {
			revoked, err := m.Revoker.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				metrics.IncAuthFailure("revocation_check")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if revoked {
				metrics.IncAuthFailure("revoked")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		ctx := WithIdentity(r.Context(), claims.Subject, claims.Username, claims.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractToken pulls the session token from the Authorization header or,
// for websocket upgrades that cannot set headers, the token query param.
func ExtractToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	header := r.Header.Get("Authorization")
	if header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Token") {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
