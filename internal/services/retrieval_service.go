package services

import (
	"context"
	"fmt"
	"log"

	"omniq/internal/repositories"
)

const (
	// DefaultCollection is the vector collection the ingestion trigger writes to
	DefaultCollection = "documents"

	retrievalTopK  = 3
	scoreThreshold = 0.5
)

// RetrievedChunk is one document chunk returned by similarity search.
// Source holds the stored path of the originating document; Metadata keeps
// whatever else the ingestion side recorded.
type RetrievedChunk struct {
	Content  string
	Source   string
	Metadata map[string]interface{}
}

// Retriever returns the chunks most similar to a query, best first
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]RetrievedChunk, error)
}

// RetrievalService implements Retriever against the vector repository:
// embed the query, take the top K hits, drop everything below the
// similarity threshold. Read-only.
type RetrievalService struct {
	embedder   Embedder
	vectorRepo repositories.VectorRepository
	collection string
	topK       int
	minScore   float32
	logger     *log.Logger
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(embedder Embedder, vectorRepo repositories.VectorRepository, collection string, logger *log.Logger) *RetrievalService {
	if collection == "" {
		collection = DefaultCollection
	}
	return &RetrievalService{
		embedder:   embedder,
		vectorRepo: vectorRepo,
		collection: collection,
		topK:       retrievalTopK,
		minScore:   scoreThreshold,
		logger:     logger,
	}
}

// Retrieve returns at most topK chunks with similarity >= minScore,
// preserving search order.
func (s *RetrievalService) Retrieve(ctx context.Context, query string) ([]RetrievedChunk, error) {
	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.vectorRepo.SearchChunks(ctx, s.collection, embedding, s.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	chunks := make([]RetrievedChunk, 0, len(results))
	for _, result := range results {
		if result.Score < s.minScore {
			continue
		}
		chunk := RetrievedChunk{
			Content:  result.Text,
			Metadata: result.Metadata,
		}
		if source, ok := result.Metadata["source"].(string); ok {
			chunk.Source = source
		}
		chunks = append(chunks, chunk)
	}

	s.logger.Printf("Retrieved %d/%d chunks above threshold for query", len(chunks), len(results))
	return chunks, nil
}
