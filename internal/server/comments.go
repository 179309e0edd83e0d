package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	commentsdomain "github.com/commentpull/commentpull/internal/comments/domain"
	"github.com/commentpull/commentpull/internal/comments/export"
	"github.com/commentpull/commentpull/internal/comments/youtube"
	"go.uber.org/zap"
)

// getComments serves the dashboard fetch. The caller's tier decides how many
// comments one request may return.
func (s *Server) getComments(c *gin.Context) {
	req, err := s.parseFetchRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	tierMax := s.cfg.YouTube.FreeMax
	if uid := c.GetString(contextUserIDKey); uid != "" {
		status, err := s.premiumSvc.GetStatus(c.Request.Context(), uid)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if status.IsPremium {
			tierMax = s.cfg.YouTube.PremiumMax
		}
	}
	if req.MaxResults <= 0 || req.MaxResults > tierMax {
		req.MaxResults = tierMax
	}

	result, err := s.comments.Fetch(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.writeFetchResult(c, result)
}

func (s *Server) parseFetchRequest(c *gin.Context) (commentsdomain.FetchRequest, error) {
	videoID := strings.TrimSpace(c.Query("video_id"))
	if videoID == "" {
		if url := c.Query("url"); url != "" {
			videoID = youtube.VideoIDFromURL(url)
		}
	}
	if videoID == "" {
		return commentsdomain.FetchRequest{}, newValidationError("video_id", "required", "video_id or url is required")
	}

	maxResults := 0
	if raw := c.Query("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return commentsdomain.FetchRequest{}, newValidationError("max_results", "invalid", "max_results must be a non-negative integer")
		}
		maxResults = n
	}

	return commentsdomain.FetchRequest{
		VideoID:        videoID,
		IncludeReplies: c.Query("include_replies") == "true",
		MaxResults:     maxResults,
	}, nil
}

func (s *Server) writeFetchResult(c *gin.Context, result *commentsdomain.FetchResult) {
	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_comments.csv", result.VideoID))
		if err := export.WriteCSV(c.Writer, result.Comments); err != nil {
			s.log.Warn("csv export aborted", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
