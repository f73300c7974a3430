package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"omniq/internal/models"
	"omniq/internal/services"
)

// ChatHandler handles HTTP requests for the conversational chat endpoint
type ChatHandler struct {
	chatService *services.ChatService
	logger      *log.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService, logger *log.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat handles chat requests
// @Summary Ask a question
// @Description Answer a user question against the indexed documents, with citations and follow-up suggestions
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "Question with optional chat history"
// @Success 200 {object} models.ApproachResponse
// @Failure 400 {object} models.ApproachResponse
// @Failure 500 {object} models.ApproachResponse
// @Security BearerAuth
// @Router /api/v1/chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	h.logger.Printf("Chat request from %s", r.RemoteAddr)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Printf("Failed to decode chat request: %v", err)
		h.sendJSON(w, http.StatusBadRequest, models.ApproachResponse{Error: "Invalid request body"})
		return
	}

	if req.LastUserQuestion == "" {
		h.sendJSON(w, http.StatusBadRequest, models.ApproachResponse{Error: "lastUserQuestion is required"})
		return
	}

	resp, err := h.chatService.AnswerQuestion(r.Context(), req.LastUserQuestion, req.History)
	if err != nil {
		h.logger.Printf("Failed to answer question: %v", err)
		h.sendJSON(w, http.StatusInternalServerError, models.ApproachResponse{Error: "Failed to answer question"})
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("Failed to encode JSON: %v", err)
	}
}
