package repositories

import (
	"context"

	"omniq/internal/db"
)

// ChromaVectorRepository implements VectorRepository using ChromaDB
type ChromaVectorRepository struct {
	client *db.ChromaDBClient
}

// NewChromaVectorRepository creates a new ChromaDB-backed vector repository
func NewChromaVectorRepository(client *db.ChromaDBClient) VectorRepository {
	return &ChromaVectorRepository{
		client: client,
	}
}

// SearchChunks runs a similarity query and maps distances to similarity scores
func (r *ChromaVectorRepository) SearchChunks(ctx context.Context, collectionName string, queryEmbedding []float32, topK int) ([]*ChunkSearchResult, error) {
	resp, err := r.client.Query(ctx, collectionName, [][]float32{queryEmbedding}, topK, nil)
	if err != nil {
		return nil, NewVectorRepositoryError("search_chunks", err, "")
	}

	if len(resp.IDs) == 0 {
		return []*ChunkSearchResult{}, nil
	}

	// Single query embedding, so only the first group matters
	ids := resp.IDs[0]
	results := make([]*ChunkSearchResult, 0, len(ids))
	for i := range ids {
		result := &ChunkSearchResult{
			ChunkID: ids[i],
		}
		if i < len(resp.Documents[0]) {
			result.Text = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			result.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			result.Distance = resp.Distances[0][i]
			// Cosine distance to similarity
			result.Score = 1 - resp.Distances[0][i]
		}
		results = append(results, result)
	}

	return results, nil
}

// CollectionExists checks whether a collection is present
func (r *ChromaVectorRepository) CollectionExists(ctx context.Context, name string) (bool, error) {
	collections, err := r.client.ListCollections(ctx)
	if err != nil {
		return false, NewVectorRepositoryError("collection_exists", err, "")
	}
	for _, col := range collections {
		if col.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// CountChunks returns the number of embedded chunks in a collection
func (r *ChromaVectorRepository) CountChunks(ctx context.Context, collectionName string) (int, error) {
	count, err := r.client.CountCollection(ctx, collectionName)
	if err != nil {
		return 0, NewVectorRepositoryError("count_chunks", err, "")
	}
	return count, nil
}

// CreateCollection creates a new collection
func (r *ChromaVectorRepository) CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) error {
	if _, err := r.client.CreateCollection(ctx, name, metadata); err != nil {
		return NewVectorRepositoryError("create_collection", err, "failed to create collection: "+name)
	}
	return nil
}

// StoreChunks writes embedded chunks into a collection
func (r *ChromaVectorRepository) StoreChunks(ctx context.Context, collectionName string, chunks []*EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	documents := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	metadatas := make([]map[string]interface{}, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
		documents[i] = chunk.Text
		embeddings[i] = chunk.Embedding
		metadatas[i] = chunk.Metadata
	}

	if err := r.client.AddDocuments(ctx, collectionName, ids, documents, embeddings, metadatas); err != nil {
		return NewVectorRepositoryError("store_chunks", err, "")
	}
	return nil
}

// DeleteChunks removes chunks from a collection by ID
func (r *ChromaVectorRepository) DeleteChunks(ctx context.Context, collectionName string, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	if err := r.client.DeleteDocuments(ctx, collectionName, chunkIDs); err != nil {
		return NewVectorRepositoryError("delete_chunks", err, "")
	}
	return nil
}

// Ping checks connectivity to ChromaDB
func (r *ChromaVectorRepository) Ping(ctx context.Context) error {
	return r.client.Heartbeat(ctx)
}

// Close releases client connections
func (r *ChromaVectorRepository) Close() error {
	r.client.Close()
	return nil
}
