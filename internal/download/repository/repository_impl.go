package repository

import (
	"context"

	"github.com/commentpull/commentpull/internal/download/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, dl *domain.Download) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO downloads (id, user_id, video_id, comment_count, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		dl.ID,
		dl.UserID,
		dl.VideoID,
		dl.CommentCount,
		dl.Metadata,
		dl.CreatedAt,
	).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Download, error) {
	var downloads []domain.Download
	err := db.WithContext(ctx).
		Model(&domain.Download{}).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&downloads).Error
	if err != nil {
		return nil, err
	}
	return downloads, nil
}
