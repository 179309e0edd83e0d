package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, key *APIKey) error
	List(ctx context.Context, db *gorm.DB, userID string) ([]APIKey, error)
	CountByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	FindByHash(ctx context.Context, db *gorm.DB, hash string) (*APIKey, error)
	FindByID(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID) (*APIKey, error)
	MarkUsed(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	Deactivate(ctx context.Context, db *gorm.DB, userID string, id snowflake.ID, at time.Time) error
}
