package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/commentpull/commentpull/internal/comments/domain"
)

var csvHeader = []string{"id", "type", "author", "text", "likes", "reply_count", "published_at", "parent_id"}

// WriteCSV streams the comments as CSV with a fixed header row.
func WriteCSV(w io.Writer, comments []domain.Comment) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, c := range comments {
		record := []string{
			c.ID,
			c.Type,
			c.Author,
			c.Text,
			strconv.FormatInt(c.Likes, 10),
			strconv.FormatInt(c.ReplyCount, 10),
			c.PublishedAt,
			c.ParentID,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
