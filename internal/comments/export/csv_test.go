package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/commentpull/commentpull/internal/comments/domain"
	"github.com/commentpull/commentpull/internal/comments/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	comments := []domain.Comment{
		{ID: "c1", Type: "comment", Author: "a", Text: "hello, \"world\"", Likes: 3, ReplyCount: 1, PublishedAt: "2026-03-01T00:00:00Z"},
		{ID: "r1", Type: "reply", ParentID: "c1", Author: "b", Text: "multi\nline", PublishedAt: "2026-03-02T00:00:00Z"},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, comments))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"id", "type", "author", "text", "likes", "reply_count", "published_at", "parent_id"}, records[0])
	assert.Equal(t, "hello, \"world\"", records[1][3])
	assert.Equal(t, "multi\nline", records[2][3])
	assert.Equal(t, "c1", records[2][7])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
