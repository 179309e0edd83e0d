package domain

import (
	"context"
	"errors"
)

type Comment struct {
	ID          string `json:"id"`
	Type        string `json:"type"` // "comment" or "reply"
	ParentID    string `json:"parent_id,omitempty"`
	Author      string `json:"author"`
	Text        string `json:"text"`
	Likes       int64  `json:"likes"`
	ReplyCount  int64  `json:"reply_count"`
	PublishedAt string `json:"published_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type FetchRequest struct {
	VideoID        string
	IncludeReplies bool

	// MaxResults caps the flattened comment count; the tier of the caller
	// decides the cap, not this package.
	MaxResults int
}

type FetchResult struct {
	VideoID  string    `json:"video_id"`
	Comments []Comment `json:"comments"`

	// HasMore signals the cap was hit while the upstream had more pages.
	HasMore bool `json:"has_more"`
}

// Source fetches comments for a resource id from the upstream provider.
type Source interface {
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)
}

var (
	ErrMissingVideoID   = errors.New("missing_video_id")
	ErrCommentsDisabled = errors.New("comments_disabled")
	ErrUpstream         = errors.New("upstream_error")
)
