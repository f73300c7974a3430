package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"omniq/internal/models"
	"omniq/internal/services"
)

type contextKey string

const claimsContextKey contextKey = "tokenClaims"

// ErrorResponse is the shared error payload for API endpoints
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ClaimsFromContext extracts validated token claims stored by RequireToken
func ClaimsFromContext(ctx context.Context) (models.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(models.TokenClaims)
	return claims, ok
}

// RequireToken wraps a handler with bearer-token validation. Requests without
// a valid token are rejected before the handler runs.
func RequireToken(tokenService *services.TokenService, logger *log.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			unauthorized(w, "Missing bearer token")
			return
		}

		claims, err := tokenService.ValidateToken(token)
		if err != nil {
			logger.Printf("Rejected request with invalid token from %s", r.RemoteAddr)
			unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, *claims)
		next(w, r.WithContext(ctx))
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(http.StatusUnauthorized),
		Message: message,
		Status:  http.StatusUnauthorized,
	})
}
