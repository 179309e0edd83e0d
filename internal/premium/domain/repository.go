package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, status *PremiumStatus) error
	Update(ctx context.Context, db *gorm.DB, status *PremiumStatus) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*PremiumStatus, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*PremiumStatus, error)
	FindBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string) (*PremiumStatus, error)
}
