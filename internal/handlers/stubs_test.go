package handlers

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"omniq/internal/models"
	"omniq/internal/repositories"
	"omniq/internal/services"
)

// Handler tests run against real services wired with small in-memory stubs.

func testLogger() *log.Logger {
	return log.New(io.Discard, "[TEST] ", log.LstdFlags)
}

type stubRetriever struct {
	chunks []services.RetrievedChunk
	err    error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string) ([]services.RetrievedChunk, error) {
	return s.chunks, s.err
}

type stubCompleter struct {
	responses map[string]string // keyed by role of first message
	err       error
}

func (s *stubCompleter) Complete(ctx context.Context, messages []services.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if len(messages) == 0 {
		return "", nil
	}
	return s.responses[messages[0].Role], nil
}

type stubConsumerRepository struct {
	consumers map[string]*models.APIConsumer
}

func (s *stubConsumerRepository) GetConsumer(ctx context.Context, username string) (*models.APIConsumer, error) {
	consumer, ok := s.consumers[username]
	if !ok {
		return nil, repositories.ErrConsumerNotFound
	}
	return consumer, nil
}

func (s *stubConsumerRepository) SaveConsumer(ctx context.Context, consumer *models.APIConsumer) error {
	s.consumers[consumer.Username] = consumer
	return nil
}

func (s *stubConsumerRepository) SaveConversation(ctx context.Context, record *models.ConversationRecord) error {
	return nil
}

func (s *stubConsumerRepository) GetConversation(ctx context.Context, conversationID string) (*models.ConversationRecord, error) {
	return nil, repositories.ErrConversationNotFound
}

func newStubConsumers(t *testing.T) *stubConsumerRepository {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test secret: %v", err)
	}
	return &stubConsumerRepository{
		consumers: map[string]*models.APIConsumer{
			"webchat": {
				Username:     "webchat",
				ClientID:     "client-123",
				HashedSecret: string(hashed),
				Active:       true,
				CreatedAt:    time.Now(),
			},
		},
	}
}

func newTestTokenService(t *testing.T) *services.TokenService {
	t.Helper()
	return services.NewTokenService(newStubConsumers(t), []byte("test-signing-key"), services.DefaultTokenExpiry, "ws://localhost:8080/api/v1/directline", testLogger())
}

func newTestBlobRepository(t *testing.T) repositories.BlobRepository {
	t.Helper()
	repo, err := repositories.NewLocalBlobRepository(t.TempDir(), "http://localhost:8080/api/v1/content", []byte("test-signing-key"))
	if err != nil {
		t.Fatalf("Failed to create blob repository: %v", err)
	}
	return repo
}
