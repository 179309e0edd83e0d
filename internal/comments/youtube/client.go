package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/commentpull/commentpull/internal/comments/domain"
	"github.com/commentpull/commentpull/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const pageSize = 100

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

type Params struct {
	fx.In

	Log *zap.Logger
	Cfg config.Config
}

type Client struct {
	log     *zap.Logger
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(p Params) domain.Source {
	timeout := time.Duration(p.Cfg.YouTube.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		log:     p.Log.Named("comments.youtube"),
		baseURL: strings.TrimRight(p.Cfg.YouTube.BaseURL, "/"),
		apiKey:  p.Cfg.YouTube.APIKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type threadListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			TotalReplyCount int64 `json:"totalReplyCount"`
			TopLevelComment struct {
				Snippet commentSnippet `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
		Replies struct {
			Comments []struct {
				ID      string         `json:"id"`
				Snippet commentSnippet `json:"snippet"`
			} `json:"comments"`
		} `json:"replies"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
	Error         *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type commentSnippet struct {
	AuthorDisplayName string `json:"authorDisplayName"`
	TextDisplay       string `json:"textDisplay"`
	LikeCount         int64  `json:"likeCount"`
	PublishedAt       string `json:"publishedAt"`
	UpdatedAt         string `json:"updatedAt"`
}

func (c *Client) Fetch(ctx context.Context, req domain.FetchRequest) (*domain.FetchResult, error) {
	videoID := strings.TrimSpace(req.VideoID)
	if videoID == "" {
		return nil, domain.ErrMissingVideoID
	}
	if req.MaxResults <= 0 {
		req.MaxResults = pageSize
	}

	var all []domain.Comment
	pageToken := ""
	hasMore := false

	for {
		page, err := c.fetchPage(ctx, videoID, req.IncludeReplies, pageToken)
		if err != nil {
			return nil, err
		}
		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			top := item.Snippet.TopLevelComment.Snippet
			all = append(all, domain.Comment{
				ID:          item.ID,
				Type:        "comment",
				Author:      top.AuthorDisplayName,
				Text:        stripHTML(top.TextDisplay),
				Likes:       top.LikeCount,
				ReplyCount:  item.Snippet.TotalReplyCount,
				PublishedAt: top.PublishedAt,
				UpdatedAt:   top.UpdatedAt,
			})

			if req.IncludeReplies {
				for _, reply := range item.Replies.Comments {
					all = append(all, domain.Comment{
						ID:          reply.ID,
						Type:        "reply",
						ParentID:    item.ID,
						Author:      reply.Snippet.AuthorDisplayName,
						Text:        stripHTML(reply.Snippet.TextDisplay),
						Likes:       reply.Snippet.LikeCount,
						PublishedAt: reply.Snippet.PublishedAt,
						UpdatedAt:   reply.Snippet.UpdatedAt,
					})
				}
			}

			if len(all) >= req.MaxResults {
				break
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
		if len(all) >= req.MaxResults {
			hasMore = true
			break
		}
	}

	if len(all) > req.MaxResults {
		all = all[:req.MaxResults]
	}

	return &domain.FetchResult{
		VideoID:  videoID,
		Comments: all,
		HasMore:  hasMore,
	}, nil
}

func (c *Client) fetchPage(ctx context.Context, videoID string, includeReplies bool, pageToken string) (*threadListResponse, error) {
	part := "snippet"
	if includeReplies {
		part = "snippet,replies"
	}

	q := url.Values{}
	q.Set("part", part)
	q.Set("videoId", videoID)
	q.Set("maxResults", fmt.Sprintf("%d", pageSize))
	q.Set("order", "relevance")
	q.Set("key", c.apiKey)
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	reqURL := c.baseURL + "/commentThreads?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	var page threadListResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "upstream error"
		if page.Error != nil && page.Error.Message != "" {
			msg = page.Error.Message
		}
		if strings.Contains(strings.ToLower(msg), "disabled") {
			return nil, domain.ErrCommentsDisabled
		}
		c.log.Warn("comment source request failed",
			zap.String("video_id", videoID),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, msg)
	}

	return &page, nil
}

func stripHTML(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}
