package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commentpull/commentpull/internal/download/domain"
	"github.com/commentpull/commentpull/internal/download/repository"
	"github.com/commentpull/commentpull/internal/download/service"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now(context.Context) time.Time { return c.now }

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *fixedClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Download{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := &fixedClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}

	svc := service.NewService(service.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	})

	return svc, db, clk
}

func TestRecordAndHistory(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	svc.Record(ctx, "user-1", "video-a", 120)
	clk.now = clk.now.Add(time.Minute)
	svc.Record(ctx, "user-1", "video-b", 45)

	history, err := svc.History(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Newest first.
	assert.Equal(t, "video-b", history[0].VideoID)
	assert.Equal(t, 45, history[0].CommentCount)
	assert.Equal(t, "video-a", history[1].VideoID)
}

func TestRecordSkipsGuests(t *testing.T) {
	svc, db, _ := newTestService(t)

	svc.Record(context.Background(), "", "video-a", 10)
	svc.Record(context.Background(), "   ", "video-b", 10)

	var count int64
	require.NoError(t, db.Model(&domain.Download{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestHistoryIsScopedToUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.Record(ctx, "user-1", "video-a", 10)
	svc.Record(ctx, "user-2", "video-b", 10)

	history, err := svc.History(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "video-a", history[0].VideoID)
}

func TestHistoryCapsLimit(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		svc.Record(ctx, "user-1", fmt.Sprintf("video-%d", i), i)
		clk.now = clk.now.Add(time.Second)
	}

	history, err := svc.History(ctx, "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 50)
	assert.Equal(t, "video-59", history[0].VideoID)

	history, err = svc.History(ctx, "user-1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 10)
}
