package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type recordDownloadRequest struct {
	VideoID      string `json:"video_id"`
	CommentCount int    `json:"comment_count"`
}

type downloadDecisionResponse struct {
	Success   bool `json:"success"`
	Count     int  `json:"count"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
	Unlimited bool `json:"unlimited,omitempty"`
}

type downloadDeniedResponse struct {
	Error        string `json:"error"`
	LimitReached bool   `json:"limitReached"`
	Count        int    `json:"count"`
	Limit        int    `json:"limit"`
}

// recordDownload reserves one unit of today's quota before the caller
// proceeds. The reservation is committed before the response is written, so
// two racing requests can never both squeeze through the last slot.
func (s *Server) recordDownload(c *gin.Context) {
	var req recordDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}
	if strings.TrimSpace(req.VideoID) == "" {
		AbortWithError(c, newValidationError("video_id", "required", "video_id is required"))
		return
	}

	subject := s.subjectFor(c)
	decision, err := s.ledgerSvc.CheckAndReserve(c.Request.Context(), subject, 0)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if !decision.Allowed {
		c.JSON(http.StatusTooManyRequests, downloadDeniedResponse{
			Error:        "Daily download limit reached",
			LimitReached: true,
			Count:        decision.Used,
			Limit:        decision.Limit,
		})
		return
	}

	s.downloadSvc.Record(c.Request.Context(), subject.UserID, req.VideoID, req.CommentCount)

	c.JSON(http.StatusOK, downloadDecisionResponse{
		Success:   true,
		Count:     decision.Used,
		Limit:     decision.Limit,
		Remaining: decision.Remaining,
		Unlimited: decision.Unlimited,
	})
}

func (s *Server) getDownloadStatus(c *gin.Context) {
	decision, err := s.ledgerSvc.Peek(c.Request.Context(), s.subjectFor(c), 0)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     decision.Used,
		"limit":     decision.Limit,
		"remaining": decision.Remaining,
		"unlimited": decision.Unlimited,
	})
}
