package services

import (
	"context"
	"log"
	"strings"

	"omniq/internal/models"
)

// Contextualizer rewrites a question that leans on chat history into a
// standalone one. It is never a hard dependency: any failure falls back to
// the question as asked.
type Contextualizer struct {
	llm    Completer
	logger *log.Logger
}

// NewContextualizer creates a new contextualizer
func NewContextualizer(llm Completer, logger *log.Logger) *Contextualizer {
	return &Contextualizer{
		llm:    llm,
		logger: logger,
	}
}

// Contextualize returns the question unchanged when history is empty (no
// model call), otherwise asks the model for a standalone reformulation.
func (c *Contextualizer) Contextualize(ctx context.Context, history []models.ChatTurn, question string) string {
	if len(history) == 0 {
		return question
	}

	messages := make([]Message, 0, len(history)*2+2)
	messages = append(messages, Message{Role: RoleSystem, Content: contextualizeSystemPrompt})
	for _, turn := range history {
		messages = append(messages, Message{Role: RoleUser, Content: turn.User})
		messages = append(messages, Message{Role: RoleAssistant, Content: turn.Bot})
	}
	messages = append(messages, Message{Role: RoleUser, Content: question})

	rewritten, err := c.llm.Complete(ctx, messages)
	if err != nil {
		c.logger.Printf("Contextualization failed, using original question: %v", err)
		return question
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		c.logger.Printf("Contextualization returned empty output, using original question")
		return question
	}

	return rewritten
}
