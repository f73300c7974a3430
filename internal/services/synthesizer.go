package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrAnswerSchema reports that the model output could not be coerced into
// the two-field answer schema. Callers must treat this as a hard failure.
var ErrAnswerSchema = errors.New("model output does not match answer schema")

// SynthesizedAnswer is the structured result of answer synthesis
type SynthesizedAnswer struct {
	Answer   string `json:"answer"`
	Thoughts string `json:"thoughts"`
}

// Synthesizer produces a grounded, schema-constrained answer from a question
// and retrieved context.
type Synthesizer struct {
	llm    Completer
	logger *log.Logger
}

// NewSynthesizer creates a new answer synthesizer
func NewSynthesizer(llm Completer, logger *log.Logger) *Synthesizer {
	return &Synthesizer{
		llm:    llm,
		logger: logger,
	}
}

// Synthesize concatenates the chunk contents in order into a context blob,
// prompts the model, and parses the output into exactly {answer, thoughts}.
// A response that cannot be parsed fails with ErrAnswerSchema.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, chunks []RetrievedChunk) (*SynthesizedAnswer, error) {
	messages := []Message{
		{Role: RoleSystem, Content: fmt.Sprintf(answerSystemPrompt, formatContext(chunks), formatInstructions)},
		{Role: RoleUser, Content: "Question: " + question},
	}

	raw, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("answer synthesis failed: %w", err)
	}

	answer, err := parseAnswer(raw)
	if err != nil {
		s.logger.Printf("Failed to parse model output into answer schema: %v", err)
		return nil, err
	}
	return answer, nil
}

// formatContext joins chunk contents in retrieval order, blank-line separated
func formatContext(chunks []RetrievedChunk) string {
	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}
	return strings.Join(contents, "\n\n")
}

// parseAnswer coerces raw model text into the answer schema. Code fences and
// surrounding prose are tolerated; a missing field is not.
func parseAnswer(raw string) (*SynthesizedAnswer, error) {
	payload := extractJSONObject(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: no JSON object in output", ErrAnswerSchema)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnswerSchema, err)
	}

	answer := &SynthesizedAnswer{}
	for name, target := range map[string]*string{
		"answer":   &answer.Answer,
		"thoughts": &answer.Thoughts,
	} {
		value, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrAnswerSchema, name)
		}
		if err := json.Unmarshal(value, target); err != nil {
			return nil, fmt.Errorf("%w: field %q is not a string", ErrAnswerSchema, name)
		}
	}

	return answer, nil
}

// extractJSONObject returns the outermost {...} span of the text, stripping
// markdown code fences if present.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
