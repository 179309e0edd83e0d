package repository

import (
	"context"

	"github.com/commentpull/commentpull/internal/premium/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, status *domain.PremiumStatus) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO premium_users
		 (id, user_id, email, subscription_id, plan_id, plan, is_active, renewal_date, activated_at, cancelled_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		status.ID,
		status.UserID,
		status.Email,
		status.SubscriptionID,
		status.PlanID,
		status.Plan,
		status.IsActive,
		status.RenewalDate,
		status.ActivatedAt,
		status.CancelledAt,
		status.CreatedAt,
		status.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, status *domain.PremiumStatus) error {
	return db.WithContext(ctx).Exec(
		`UPDATE premium_users
		 SET user_id = ?, email = ?, subscription_id = ?, plan_id = ?, plan = ?,
		     is_active = ?, renewal_date = ?, activated_at = ?, cancelled_at = ?, updated_at = ?
		 WHERE id = ?`,
		status.UserID,
		status.Email,
		status.SubscriptionID,
		status.PlanID,
		status.Plan,
		status.IsActive,
		status.RenewalDate,
		status.ActivatedAt,
		status.CancelledAt,
		status.UpdatedAt,
		status.ID,
	).Error
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*domain.PremiumStatus, error) {
	return r.findOne(ctx, db, "user_id = ?", userID)
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.PremiumStatus, error) {
	return r.findOne(ctx, db, "email = ?", email)
}

func (r *repo) FindBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string) (*domain.PremiumStatus, error) {
	return r.findOne(ctx, db, "subscription_id = ?", subscriptionID)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, cond string, arg any) (*domain.PremiumStatus, error) {
	var status domain.PremiumStatus
	err := db.WithContext(ctx).
		Model(&domain.PremiumStatus{}).
		Where(cond, arg).
		Limit(1).
		Find(&status).Error
	if err != nil {
		return nil, err
	}
	if status.ID == 0 {
		return nil, nil
	}
	return &status, nil
}
