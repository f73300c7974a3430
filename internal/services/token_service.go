package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"omniq/internal/models"
	"omniq/internal/repositories"
)

const DefaultTokenExpiry = 30 * time.Minute

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// accessTokenClaims is the JWT payload of an issued access token
type accessTokenClaims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates short-lived access tokens and opens
// conversations for authenticated consumers.
type TokenService struct {
	consumers     repositories.ConsumerRepository
	signingKey    []byte
	expiry        time.Duration
	streamBaseURL string
	logger        *log.Logger
}

// NewTokenService creates a new token service
func NewTokenService(consumers repositories.ConsumerRepository, signingKey []byte, expiry time.Duration, streamBaseURL string, logger *log.Logger) *TokenService {
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}
	return &TokenService{
		consumers:     consumers,
		signingKey:    signingKey,
		expiry:        expiry,
		streamBaseURL: streamBaseURL,
		logger:        logger,
	}
}

// Login verifies consumer credentials and returns a bearer token
func (s *TokenService) Login(ctx context.Context, username, secret string) (*models.TokenResponse, error) {
	consumer, err := s.consumers.GetConsumer(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrConsumerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up consumer: %w", err)
	}
	if !consumer.Active {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(consumer.HashedSecret), []byte(secret)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, _, err := s.CreateAccessToken(models.TokenClaims{
		Subject:  consumer.Username,
		ClientID: consumer.ClientID,
	})
	if err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

// CreateAccessToken signs a new HS256 token for the given claims and returns
// it with its expiry time.
func (s *TokenService) CreateAccessToken(claims models.TokenClaims) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims{
		ClientID: claims.ClientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a bearer token, returning its claims
func (s *TokenService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	var claims accessTokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &models.TokenClaims{
		Subject:  claims.Subject,
		ClientID: claims.ClientID,
	}, nil
}

// OpenConversation mints a fresh conversation for an authenticated consumer:
// a new conversation id, a fresh token, and the stream URL to connect to.
func (s *TokenService) OpenConversation(ctx context.Context, claims models.TokenClaims) (*models.Conversation, error) {
	consumer, err := s.consumers.GetConsumer(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("look up consumer: %w", err)
	}

	token, expiresAt, err := s.CreateAccessToken(models.TokenClaims{
		Subject:  consumer.Username,
		ClientID: consumer.ClientID,
	})
	if err != nil {
		return nil, err
	}

	conversationID := uuid.NewString()
	record := &models.ConversationRecord{
		ConversationID: conversationID,
		Subject:        consumer.Username,
		ClientID:       consumer.ClientID,
		CreatedAt:      time.Now(),
		ExpiresAt:      expiresAt,
	}
	if err := s.consumers.SaveConversation(ctx, record); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	return &models.Conversation{
		ConversationID: conversationID,
		AccessToken:    token,
		ExpiresIn:      expiresAt.Unix(),
		StreamURL:      fmt.Sprintf("%s/conversations/%s/stream?t=%s", s.streamBaseURL, conversationID, token),
	}, nil
}
