package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"omniq/internal/models"
	"omniq/internal/repositories"
)

const citationURLTTL = 30 * time.Minute

// ChatService orchestrates the question-answering pipeline: contextualize
// against history, retrieve, synthesize, then attach citations, supporting
// content and follow-up suggestions. Each call is stateless; history is
// supplied by the caller.
//
// Retrieval is keyed on the contextualized question whenever history is
// present; follow-up generation is always keyed on the question as asked.
// Retrieval failure degrades to the no-context path rather than failing the
// request - that policy is applied uniformly and logged.
type ChatService struct {
	retriever      Retriever
	contextualizer *Contextualizer
	synthesizer    *Synthesizer
	followUps      *FollowUpGenerator
	blobRepo       repositories.BlobRepository
	logger         *log.Logger
}

// NewChatService creates a new chat service
func NewChatService(retriever Retriever, llm Completer, blobRepo repositories.BlobRepository, logger *log.Logger) *ChatService {
	return &ChatService{
		retriever:      retriever,
		contextualizer: NewContextualizer(llm, logger),
		synthesizer:    NewSynthesizer(llm, logger),
		followUps:      NewFollowUpGenerator(llm, retriever, logger),
		blobRepo:       blobRepo,
		logger:         logger,
	}
}

// AnswerQuestion answers a user question against the indexed documents
func (s *ChatService) AnswerQuestion(ctx context.Context, question string, history []models.ChatTurn) (*models.ApproachResponse, error) {
	searchQuery := s.contextualizer.Contextualize(ctx, history, question)

	chunks, err := s.retriever.Retrieve(ctx, searchQuery)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Printf("Retrieval failed, answering without context: %v", err)
		chunks = nil
	}

	if len(chunks) == 0 {
		return s.answerWithoutContext(ctx, question)
	}

	answer, err := s.synthesizer.Synthesize(ctx, question, chunks)
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	followUps, err := s.followUps.GenerateFollowUps(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Printf("Follow-up generation failed, answering without follow-ups: %v", err)
		followUps = nil
	}

	sources := uniqueSources(chunks)
	finalAnswer := answer.Answer + " " + citationMarkers(sources) + " " + followUpMarkers(followUps)

	return &models.ApproachResponse{
		Answer:          finalAnswer,
		Thoughts:        answer.Thoughts,
		DataPoints:      supportingContent(chunks),
		CitationBaseURL: s.citationBaseURL(chunks),
	}, nil
}

// answerWithoutContext handles the empty-retrieval path: the model is still
// asked (expect a "don't know" style answer), supporting content is a single
// empty placeholder, and the citation URL falls back to the container.
func (s *ChatService) answerWithoutContext(ctx context.Context, question string) (*models.ApproachResponse, error) {
	answer, err := s.synthesizer.Synthesize(ctx, question, nil)
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	return &models.ApproachResponse{
		Answer:          answer.Answer,
		Thoughts:        answer.Thoughts,
		DataPoints:      []models.SupportingContentRecord{{Title: "", Content: ""}},
		CitationBaseURL: s.blobRepo.SignedBaseURL(),
	}, nil
}

// citationBaseURL signs a time-limited URL for the first retrieved chunk's
// source document, degrading to the container URL if signing fails.
func (s *ChatService) citationBaseURL(chunks []RetrievedChunk) string {
	url, err := s.blobRepo.SignedURL(sourceName(chunks[0]), citationURLTTL)
	if err != nil {
		s.logger.Printf("Failed to sign citation URL, using base URL: %v", err)
		return s.blobRepo.SignedBaseURL()
	}
	return url
}

// citationMarkers renders one [name] marker per unique source, first-seen order
func citationMarkers(sources []string) string {
	var b strings.Builder
	for _, source := range sources {
		b.WriteString("[")
		b.WriteString(source)
		b.WriteString("]")
	}
	return b.String()
}

// followUpMarkers renders each follow-up as <<question>>, no separator
func followUpMarkers(questions []string) string {
	var b strings.Builder
	for _, q := range questions {
		b.WriteString("<<")
		b.WriteString(q)
		b.WriteString(">>")
	}
	return b.String()
}
