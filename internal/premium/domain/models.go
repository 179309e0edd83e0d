package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PremiumStatus is the durable record of an actor's paid entitlement.
// Rows are never hard-deleted; termination flips IsActive off.
type PremiumStatus struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	// UserID may be empty: billing events identify payers by email before an
	// account exists. Uniqueness is only enforced for non-empty ids.
	UserID         string       `gorm:"column:user_id;type:text;index" json:"user_id"`
	Email          string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	SubscriptionID string       `gorm:"column:subscription_id;type:text;index" json:"subscription_id"`
	PlanID         string       `gorm:"column:plan_id;type:text" json:"plan_id"`
	Plan           string       `gorm:"type:text;not null;default:'premium'" json:"plan"`
	IsActive       bool         `gorm:"column:is_active;not null;default:false" json:"is_active"`
	RenewalDate    *time.Time   `gorm:"column:renewal_date" json:"renewal_date"`
	ActivatedAt    *time.Time   `gorm:"column:activated_at" json:"activated_at"`
	CancelledAt    *time.Time   `gorm:"column:cancelled_at" json:"cancelled_at"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PremiumStatus) TableName() string { return "premium_users" }

// EntitledAt reports whether the status grants unlimited access at the given
// instant. A cancelled subscription stays entitled until its paid-through
// date (the grace period); a terminated one never is.
func (p *PremiumStatus) EntitledAt(now time.Time) bool {
	if p == nil || !p.IsActive {
		return false
	}
	if p.CancelledAt == nil {
		return true
	}
	return p.RenewalDate != nil && p.RenewalDate.After(now)
}
