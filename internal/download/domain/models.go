package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Download is an append-only history entry for a completed, permitted fetch.
// Guests are not historied; rows always carry a user id.
type Download struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID       string            `gorm:"column:user_id;type:text;not null;index" json:"user_id"`
	VideoID      string            `gorm:"column:video_id;type:text;not null" json:"video_id"`
	CommentCount int               `gorm:"column:comment_count;not null;default:0" json:"comment_count"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Download) TableName() string { return "downloads" }
