package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/services"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// AuthMiddleware validates the bearer token (or, for browser WebSocket
// clients that cannot set headers, a token query parameter) and injects
// the authenticated userID into the request context.
func AuthMiddleware(tokenSvc *services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r)
			if tokenStr == "" {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}
			userID, err := tokenSvc.ValidateToken(tokenStr)
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
