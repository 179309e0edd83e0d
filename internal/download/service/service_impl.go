package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/commentpull/commentpull/internal/clock"
	"github.com/commentpull/commentpull/internal/download/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultHistoryLimit = 50

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("download.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *service) Record(ctx context.Context, userID, videoID string, commentCount int) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return
	}

	dl := &domain.Download{
		ID:           s.genID.Generate(),
		UserID:       userID,
		VideoID:      videoID,
		CommentCount: commentCount,
		CreatedAt:    s.clock.Now(ctx),
	}

	if err := s.repo.Insert(ctx, s.db, dl); err != nil {
		// History is best-effort; the download itself already succeeded.
		s.log.Warn("failed to record download",
			zap.String("user_id", userID),
			zap.String("video_id", videoID),
			zap.Error(err))
	}
}

func (s *service) History(ctx context.Context, userID string, limit int) ([]domain.Download, error) {
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	return s.repo.ListByUser(ctx, s.db, strings.TrimSpace(userID), limit)
}
