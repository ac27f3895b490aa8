package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/clauseease/clauseease/internal/domain"
	"github.com/clauseease/clauseease/internal/security"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	userEmailKey contextKey = "userEmail"
)

// AttributionMiddleware resolves the requesting user, when one is claimed,
// without ever rejecting the request: analysis works for guests too. A valid
// Bearer token wins over the X-User-Email header; an invalid token or a bare
// header leaves the request attributed by email only.
type AttributionMiddleware struct {
	jwtManager *security.JWTManager
}

// NewAttributionMiddleware creates a new attribution middleware
func NewAttributionMiddleware(jwtManager *security.JWTManager) *AttributionMiddleware {
	return &AttributionMiddleware{jwtManager: jwtManager}
}

// Attribute annotates the context with the requester's identity, if any.
func (m *AttributionMiddleware) Attribute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				if claims, err := m.jwtManager.ValidateToken(parts[1]); err == nil {
					ctx = context.WithValue(ctx, userIDKey, claims.UserID)
					ctx = context.WithValue(ctx, userEmailKey, claims.Email)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
		}

		if email := r.Header.Get("X-User-Email"); email != "" {
			ctx = context.WithValue(ctx, userEmailKey, domain.NormalizeEmail(email))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID gets the authenticated user ID from context
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

// GetUserEmail gets the attributed user email from context
func GetUserEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(userEmailKey).(string)
	return email, ok
}
