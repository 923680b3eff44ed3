package http

import (
	"context"
	"net/http"

	"studysync/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// requireAuth verifies the bearer token and stashes the claims in the
// request context.
func requireAuth(tokens *auth.Manager, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "missing authorization header"})
			return
		}
		claims, err := tokens.Parse(header)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "invalid or expired token"})
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	}
}

func claimsFrom(r *http.Request) (auth.Claims, bool) {
	claims, ok := r.Context().Value(claimsKey).(auth.Claims)
	return claims, ok
}
