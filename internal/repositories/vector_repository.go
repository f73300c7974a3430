package repositories

import (
	"context"
)

// VectorRepository abstracts the vector index. The chat path only reads;
// the store/delete operations exist for the external ingestion trigger that
// populates the index.
type VectorRepository interface {
	// Read path
	SearchChunks(ctx context.Context, collectionName string, queryEmbedding []float32, topK int) ([]*ChunkSearchResult, error)
	CollectionExists(ctx context.Context, name string) (bool, error)
	CountChunks(ctx context.Context, collectionName string) (int, error)

	// Ingestion path
	CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) error
	StoreChunks(ctx context.Context, collectionName string, chunks []*EmbeddedChunk) error
	DeleteChunks(ctx context.Context, collectionName string, chunkIDs []string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}

// EmbeddedChunk is a text chunk with its embedding, as written by ingestion
type EmbeddedChunk struct {
	ID        string                 `json:"id"`
	Text      string                 `json:"text"`
	Embedding []float32              `json:"embedding"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// ChunkSearchResult is a single similarity search hit. Score is cosine
// similarity in [0,1], higher is better; Metadata carries at least the
// "source" path the ingestion side recorded.
type ChunkSearchResult struct {
	ChunkID  string                 `json:"chunk_id"`
	Text     string                 `json:"text"`
	Score    float32                `json:"score"`
	Distance float32                `json:"distance"`
	Metadata map[string]interface{} `json:"metadata"`
}

// VectorRepositoryError represents errors from the vector repository
type VectorRepositoryError struct {
	Operation string
	Err       error
	Message   string
}

func (e *VectorRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *VectorRepositoryError) Unwrap() error {
	return e.Err
}

// NewVectorRepositoryError creates a new vector repository error
func NewVectorRepositoryError(operation string, err error, message string) *VectorRepositoryError {
	return &VectorRepositoryError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}
