package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"omniq/internal/models"
)

const (
	// Redis key prefixes
	consumerKeyPrefix     = "consumer:"
	consumerIndexKey      = "consumers:index"
	conversationKeyPrefix = "conversation:"
)

var (
	ErrConsumerNotFound     = errors.New("api consumer not found")
	ErrConversationNotFound = errors.New("conversation not found")
)

// ConsumerRepository persists API consumers and opened conversations
type ConsumerRepository interface {
	GetConsumer(ctx context.Context, username string) (*models.APIConsumer, error)
	SaveConsumer(ctx context.Context, consumer *models.APIConsumer) error
	SaveConversation(ctx context.Context, record *models.ConversationRecord) error
	GetConversation(ctx context.Context, conversationID string) (*models.ConversationRecord, error)
}

// RedisConsumerRepository implements ConsumerRepository using Redis
type RedisConsumerRepository struct {
	client *redis.Client
}

// NewRedisConsumerRepository creates a new Redis-based consumer repository
func NewRedisConsumerRepository(client *redis.Client) *RedisConsumerRepository {
	return &RedisConsumerRepository{
		client: client,
	}
}

// GetConsumer looks up a registered API consumer by username
func (r *RedisConsumerRepository) GetConsumer(ctx context.Context, username string) (*models.APIConsumer, error) {
	data, err := r.client.Get(ctx, consumerKeyPrefix+username).Result()
	if err == redis.Nil {
		return nil, ErrConsumerNotFound
	}
	if err != nil {
		return nil, err
	}

	var consumer models.APIConsumer
	if err := json.Unmarshal([]byte(data), &consumer); err != nil {
		return nil, err
	}
	return &consumer, nil
}

// SaveConsumer registers or updates an API consumer
func (r *RedisConsumerRepository) SaveConsumer(ctx context.Context, consumer *models.APIConsumer) error {
	if consumer.CreatedAt.IsZero() {
		consumer.CreatedAt = time.Now()
	}

	data, err := json.Marshal(consumer)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, consumerKeyPrefix+consumer.Username, data, 0)
	pipe.SAdd(ctx, consumerIndexKey, consumer.Username)
	_, err = pipe.Exec(ctx)
	return err
}

// SaveConversation stores a conversation record, expiring with the token
func (r *RedisConsumerRepository) SaveConversation(ctx context.Context, record *models.ConversationRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	return r.client.Set(ctx, conversationKeyPrefix+record.ConversationID, data, ttl).Err()
}

// GetConversation retrieves a stored conversation record
func (r *RedisConsumerRepository) GetConversation(ctx context.Context, conversationID string) (*models.ConversationRecord, error) {
	data, err := r.client.Get(ctx, conversationKeyPrefix+conversationID).Result()
	if err == redis.Nil {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}

	var record models.ConversationRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, err
	}
	return &record, nil
}
