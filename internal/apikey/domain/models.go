package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
)

// APIKey stores hashed API credentials owned by a premium user.
type APIKey struct {
	ID            snowflake.ID   `gorm:"primaryKey"`
	UserID        string         `gorm:"column:user_id;type:text;not null;index"`
	Name          string         `gorm:"type:text;not null"`
	KeyPreview    string         `gorm:"column:key_preview;type:text;not null"`
	KeyHash       string         `gorm:"column:key_hash;type:text;not null;uniqueIndex"`
	Scopes        pq.StringArray `gorm:"type:text"`
	RequestsCount int64          `gorm:"column:requests_count;not null;default:0"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
	LastUsedAt    *time.Time     `gorm:"column:last_used_at"`
}

func (APIKey) TableName() string { return "api_keys" }
