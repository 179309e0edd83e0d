package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, dl *Download) error
	ListByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]Download, error)
}
