package services

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// FollowUpGenerator proposes related questions a user might ask next. It
// retrieves context for itself, keyed to the question it is given, so follow-
// ups stay anchored to the vocabulary of the indexed documents.
type FollowUpGenerator struct {
	llm       Completer
	retriever Retriever
	logger    *log.Logger
}

// NewFollowUpGenerator creates a new follow-up generator
func NewFollowUpGenerator(llm Completer, retriever Retriever, logger *log.Logger) *FollowUpGenerator {
	return &FollowUpGenerator{
		llm:       llm,
		retriever: retriever,
		logger:    logger,
	}
}

// GenerateFollowUps asks for three questions, one per line, and sanitizes
// every returned line. The model is told not to number or dash-prefix the
// questions, but sanitization runs regardless. Three is a target, not an
// enforced count: short or long outputs pass through as-is.
func (g *FollowUpGenerator) GenerateFollowUps(ctx context.Context, question string) ([]string, error) {
	chunks, err := g.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("follow-up retrieval failed: %w", err)
	}

	prompt := fmt.Sprintf(followUpPrompt, formatContext(chunks), question)
	raw, err := g.llm.Complete(ctx, []Message{{Role: RoleUser, Content: prompt}})
	if err != nil {
		return nil, fmt.Errorf("follow-up generation failed: %w", err)
	}

	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		sanitized := sanitizeFollowUp(line)
		if strings.TrimSpace(sanitized) == "" {
			continue
		}
		questions = append(questions, sanitized)
	}
	return questions, nil
}

// sanitizeFollowUp strips every digit, then every literal "- " sequence,
// in that order. This guards against the model ignoring the formatting
// instructions and emitting numbered or dashed lists anyway.
func sanitizeFollowUp(line string) string {
	withoutDigits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, line)
	return strings.ReplaceAll(withoutDigits, "- ", "")
}
