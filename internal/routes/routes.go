package routes

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"omniq/internal/handlers"
	"omniq/internal/services"
)

// Handlers collects the handler instances the router wires up
type Handlers struct {
	Health http.HandlerFunc
	Home   http.HandlerFunc

	Token    *handlers.TokenHandler
	Chat     *handlers.ChatHandler
	Document *handlers.DocumentHandler
	Stream   *handlers.StreamHandler

	TokenService *services.TokenService
	Logger       *log.Logger
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/", h.Home).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()

	// Auth
	api.HandleFunc("/login", h.Token.Login).Methods(http.MethodPost)
	api.HandleFunc("/directline/conversations",
		h.withToken(h.Token.CreateConversation)).Methods(http.MethodPost)

	// Chat
	api.HandleFunc("/chat", h.withToken(h.Chat.Chat)).Methods(http.MethodPost)

	// Documents
	api.HandleFunc("/documents", h.withToken(h.Document.Upload)).Methods(http.MethodPost)
	api.HandleFunc("/documents", h.withToken(h.Document.List)).Methods(http.MethodGet)
	// Content URLs carry their own HMAC signature instead of a bearer token
	api.HandleFunc("/content/{name}", h.Document.Content).Methods(http.MethodGet)

	// Stream relay; the token travels in the `t` query parameter
	api.HandleFunc("/directline/conversations/{conversationId}/stream",
		h.Stream.Stream).Methods(http.MethodGet)
}

func (h *Handlers) withToken(next http.HandlerFunc) http.HandlerFunc {
	return handlers.RequireToken(h.TokenService, h.Logger, next)
}
