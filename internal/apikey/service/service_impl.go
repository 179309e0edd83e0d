package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/commentpull/commentpull/internal/apikey/domain"
	"github.com/commentpull/commentpull/internal/clock"
	premiumdomain "github.com/commentpull/commentpull/internal/premium/domain"
	"github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	apiKeyPrefix      = "cp_live_"
	apiKeySecretBytes = 24
	maxKeysPerUser    = 5
	defaultKeyName    = "API Key"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	PremiumSvc premiumdomain.Service
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	premium premiumdomain.Service
}

func NewService(p Params) domain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("apikey.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		premium: p.PremiumSvc,
	}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Response, error) {
	userID, err := s.requirePremium(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateRequest) (*domain.SecretResponse, error) {
	userID, err := s.requirePremium(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultKeyName
	}

	count, err := s.repo.CountByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if count >= maxKeysPerUser {
		return nil, domain.ErrKeyLimitReached
	}

	plain, err := generateKey()
	if err != nil {
		return nil, err
	}
	preview := previewOf(plain)
	now := s.clock.Now(ctx)

	key := &domain.APIKey{
		ID:         s.genID.Generate(),
		UserID:     userID,
		Name:       name,
		KeyPreview: preview,
		KeyHash:    domain.HashAPIKey(plain),
		Scopes:     pq.StringArray{domain.ScopeCommentsRead},
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, key); err != nil {
		return nil, err
	}

	return &domain.SecretResponse{
		KeyID:      key.ID.String(),
		APIKey:     plain,
		KeyPreview: preview,
		Name:       name,
	}, nil
}

func (s *service) Revoke(ctx context.Context, userID, keyID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrInvalidUser
	}

	id, err := parseKeyID(keyID)
	if err != nil {
		return err
	}

	key, err := s.repo.FindByID(ctx, s.db, userID, id)
	if err != nil {
		return err
	}
	if key == nil || !key.IsActive {
		return domain.ErrNotFound
	}

	return s.repo.Deactivate(ctx, s.db, userID, id, s.clock.Now(ctx))
}

func (s *service) Authenticate(ctx context.Context, raw string) (*domain.APIKey, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, apiKeyPrefix) {
		return nil, domain.ErrInvalidKey
	}

	key, err := s.repo.FindByHash(ctx, s.db, domain.HashAPIKey(raw))
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, domain.ErrInvalidKey
	}

	if err := s.repo.MarkUsed(ctx, s.db, key.ID, s.clock.Now(ctx)); err != nil {
		// Usage accounting is best-effort; the key itself is valid.
		s.log.Warn("failed to bump api key usage",
			zap.String("key_id", key.ID.String()), zap.Error(err))
	}

	return key, nil
}

func (s *service) requirePremium(ctx context.Context, userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", domain.ErrInvalidUser
	}

	status, err := s.premium.GetStatus(ctx, userID)
	if err != nil {
		return "", err
	}
	if !status.IsPremium {
		return "", domain.ErrPremiumRequired
	}
	return userID, nil
}

func generateKey() (string, error) {
	buf := make([]byte, apiKeySecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(buf), nil
}

func previewOf(plain string) string {
	return plain[:len(apiKeyPrefix)+6] + "********" + plain[len(plain)-4:]
}

func parseKeyID(keyID string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(keyID)
	if trimmed == "" {
		return 0, domain.ErrInvalidKeyID
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidKeyID
	}
	return snowflake.ID(parsed), nil
}

func toResponse(key *domain.APIKey) domain.Response {
	return domain.Response{
		KeyID:         key.ID.String(),
		Name:          key.Name,
		KeyPreview:    key.KeyPreview,
		RequestsCount: key.RequestsCount,
		CreatedAt:     key.CreatedAt,
		LastUsedAt:    key.LastUsedAt,
	}
}
