package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stayfinder/listing_reviews/internal/delivery/http/response"
)

type contextKey string

const (
	callerIDKey   contextKey = "caller_id"
	callerRoleKey contextKey = "caller_role"
)

// Auth returns a middleware that verifies a bearer token and resolves the
// caller identity. Tokens are issued elsewhere; only HS256 verification
// happens here. The subject claim carries the user ID.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Error(w, http.StatusUnauthorized, "Missing bearer token")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				response.Error(w, http.StatusUnauthorized, "Invalid claims")
				return
			}

			sub, err := claims.GetSubject()
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid claims")
				return
			}

			callerID, err := uuid.Parse(sub)
			if err != nil {
				response.Error(w, http.StatusUnauthorized, "Invalid subject")
				return
			}

			role, _ := claims["role"].(string)

			ctx := context.WithValue(r.Context(), callerIDKey, callerID)
			ctx = context.WithValue(ctx, callerRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerID returns the authenticated caller's user ID from the request context
func CallerID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(callerIDKey).(uuid.UUID)
	return id, ok
}

// CallerRole returns the authenticated caller's role from the request context
func CallerRole(ctx context.Context) string {
	role, _ := ctx.Value(callerRoleKey).(string)
	return role
}

// WithCaller injects a caller identity into the context (used in tests)
func WithCaller(ctx context.Context, id uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, callerIDKey, id)
	return context.WithValue(ctx, callerRoleKey, role)
}
