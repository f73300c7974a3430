package services

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/stretchr/testify/mock"

	"omniq/internal/models"
	"omniq/internal/repositories"
)

// ============================================================================
// Shared mocks
// ============================================================================

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string) ([]RetrievedChunk, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RetrievedChunk), args.Error(1)
}

type MockVectorRepository struct {
	mock.Mock
}

func (m *MockVectorRepository) SearchChunks(ctx context.Context, collectionName string, queryEmbedding []float32, topK int) ([]*repositories.ChunkSearchResult, error) {
	args := m.Called(ctx, collectionName, queryEmbedding, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.ChunkSearchResult), args.Error(1)
}

func (m *MockVectorRepository) CollectionExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockVectorRepository) CountChunks(ctx context.Context, collectionName string) (int, error) {
	args := m.Called(ctx, collectionName)
	return args.Int(0), args.Error(1)
}

func (m *MockVectorRepository) CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) error {
	args := m.Called(ctx, name, metadata)
	return args.Error(0)
}

func (m *MockVectorRepository) StoreChunks(ctx context.Context, collectionName string, chunks []*repositories.EmbeddedChunk) error {
	args := m.Called(ctx, collectionName, chunks)
	return args.Error(0)
}

func (m *MockVectorRepository) DeleteChunks(ctx context.Context, collectionName string, chunkIDs []string) error {
	args := m.Called(ctx, collectionName, chunkIDs)
	return args.Error(0)
}

func (m *MockVectorRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockVectorRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockBlobRepository struct {
	mock.Mock
}

func (m *MockBlobRepository) Upload(ctx context.Context, name, contentType string, content io.Reader) error {
	args := m.Called(ctx, name, contentType, content)
	return args.Error(0)
}

func (m *MockBlobRepository) List(ctx context.Context) ([]repositories.BlobInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.BlobInfo), args.Error(1)
}

func (m *MockBlobRepository) Open(ctx context.Context, name string) (io.ReadCloser, *repositories.BlobInfo, error) {
	args := m.Called(ctx, name)
	var reader io.ReadCloser
	if args.Get(0) != nil {
		reader = args.Get(0).(io.ReadCloser)
	}
	var info *repositories.BlobInfo
	if args.Get(1) != nil {
		info = args.Get(1).(*repositories.BlobInfo)
	}
	return reader, info, args.Error(2)
}

func (m *MockBlobRepository) SignedURL(name string, ttl time.Duration) (string, error) {
	args := m.Called(name, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockBlobRepository) SignedBaseURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockBlobRepository) Verify(name, expiryParam, sigParam string) error {
	args := m.Called(name, expiryParam, sigParam)
	return args.Error(0)
}

type MockConsumerRepository struct {
	mock.Mock
}

func (m *MockConsumerRepository) GetConsumer(ctx context.Context, username string) (*models.APIConsumer, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIConsumer), args.Error(1)
}

func (m *MockConsumerRepository) SaveConsumer(ctx context.Context, consumer *models.APIConsumer) error {
	args := m.Called(ctx, consumer)
	return args.Error(0)
}

func (m *MockConsumerRepository) SaveConversation(ctx context.Context, record *models.ConversationRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockConsumerRepository) GetConversation(ctx context.Context, conversationID string) (*models.ConversationRecord, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConversationRecord), args.Error(1)
}

// testLogger returns a logger for test output
func testLogger() *log.Logger {
	return log.New(io.Discard, "[TEST] ", log.LstdFlags)
}
