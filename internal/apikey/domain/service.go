package domain

import (
	"context"
	"errors"
	"time"
)

const (
	ScopeCommentsRead = "comments:read"
)

type Service interface {
	List(ctx context.Context, userID string) ([]Response, error)
	Create(ctx context.Context, userID string, req CreateRequest) (*SecretResponse, error)
	Revoke(ctx context.Context, userID, keyID string) error

	// Authenticate resolves a raw bearer key to its active record and bumps
	// the usage counter. Returns ErrInvalidKey for unknown or revoked keys.
	Authenticate(ctx context.Context, raw string) (*APIKey, error)
}

type CreateRequest struct {
	Name string `json:"name"`
}

type Response struct {
	KeyID         string     `json:"key_id"`
	Name          string     `json:"name"`
	KeyPreview    string     `json:"key_preview"`
	RequestsCount int64      `json:"requests_count"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUsedAt    *time.Time `json:"last_used_at"`
}

type SecretResponse struct {
	KeyID      string `json:"key_id"`
	APIKey     string `json:"api_key"`
	KeyPreview string `json:"key_preview"`
	Name       string `json:"name"`
}

var (
	ErrInvalidUser     = errors.New("invalid_user")
	ErrInvalidKeyID    = errors.New("invalid_key_id")
	ErrInvalidKey      = errors.New("invalid_api_key")
	ErrNotFound        = errors.New("not_found")
	ErrKeyLimitReached = errors.New("key_limit_reached")
	ErrPremiumRequired = errors.New("premium_required")
)
