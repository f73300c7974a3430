package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"omniq/internal/services"
)

// TokenHandler handles login and conversation creation
type TokenHandler struct {
	tokenService *services.TokenService
	logger       *log.Logger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokenService *services.TokenService, logger *log.Logger) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
		logger:       logger,
	}
}

// Login handles credential exchange for an access token
// @Summary Obtain an access token
// @Description Exchange consumer credentials (form fields username/password) for a short-lived bearer token
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Consumer username"
// @Param password formData string true "Consumer secret"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/login [post]
func (h *TokenHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("Login request from %s", r.RemoteAddr)

	if err := r.ParseForm(); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.sendError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := h.tokenService.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			h.sendError(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		h.logger.Printf("Login failed: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.sendJSON(w, http.StatusOK, token)
}

// CreateConversation opens a new conversation for the authenticated consumer
// @Summary Open a conversation
// @Description Mint a fresh conversation id plus a stream token for the WebSocket relay
// @Tags auth
// @Produce json
// @Success 200 {object} models.Conversation
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/directline/conversations [post]
func (h *TokenHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("Conversation request from %s", r.RemoteAddr)

	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "Missing token claims")
		return
	}

	conv, err := h.tokenService.OpenConversation(r.Context(), claims)
	if err != nil {
		h.logger.Printf("Failed to open conversation: %v", err)
		h.sendError(w, http.StatusInternalServerError, "Failed to open conversation")
		return
	}

	h.sendJSON(w, http.StatusOK, conv)
}

func (h *TokenHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *TokenHandler) sendError(w http.ResponseWriter, status int, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Status:  status,
	})
}
