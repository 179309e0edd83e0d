package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getDashboard aggregates everything the account page needs in one call:
// entitlement, today's usage, and recent history.
func (s *Server) getDashboard(c *gin.Context) {
	uid := c.GetString(contextUserIDKey)
	if uid == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	ctx := c.Request.Context()

	status, err := s.premiumSvc.GetStatus(ctx, uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	usage, err := s.ledgerSvc.Peek(ctx, s.subjectFor(c), 0)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	history, err := s.downloadSvc.History(ctx, uid, 0)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription": status,
		"usage":        usage,
		"downloads":    history,
	})
}
