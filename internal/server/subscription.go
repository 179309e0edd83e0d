package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) getSubscription(c *gin.Context) {
	uid := c.GetString(contextUserIDKey)
	if uid == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	status, err := s.premiumSvc.GetStatus(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// cancelSubscription schedules a cancel-at-cycle-end. The response reflects
// the grace period: still premium, with the expiry stamped.
func (s *Server) cancelSubscription(c *gin.Context) {
	uid := c.GetString(contextUserIDKey)
	if uid == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	status, err := s.premiumSvc.Cancel(c.Request.Context(), uid)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"subscription": status,
	})
}
