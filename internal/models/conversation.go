package models

import "time"

// APIConsumer is a registered client allowed to request access tokens.
// Secrets are stored bcrypt-hashed, never in the clear.
type APIConsumer struct {
	Username     string    `json:"username"`
	ClientID     string    `json:"client_id"`
	HashedSecret string    `json:"hashed_secret"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// TokenClaims are the JWT claims carried by an issued access token
type TokenClaims struct {
	Subject  string `json:"sub"`
	ClientID string `json:"client_id"`
}

// TokenResponse is returned by the login endpoint
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Conversation is returned when a new conversation is opened: a fresh
// short-lived token plus the stream URL the client should connect to.
type Conversation struct {
	ConversationID string `json:"conversationId"`
	AccessToken    string `json:"access_token"`
	ExpiresIn      int64  `json:"expires_in"` // unix timestamp of token expiry
	StreamURL      string `json:"streamUrl"`
}

// ConversationRecord is the persisted side of a Conversation
type ConversationRecord struct {
	ConversationID string    `json:"conversation_id"`
	Subject        string    `json:"subject"`
	ClientID       string    `json:"client_id"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}
