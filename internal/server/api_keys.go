package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/commentpull/commentpull/internal/apikey/domain"
)

func (s *Server) listAPIKeys(c *gin.Context) {
	keys, err := s.apiKeySvc.List(c.Request.Context(), c.GetString(contextUserIDKey))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// createAPIKey mints a new key. The plaintext is returned exactly once; only
// the hash and a preview survive in storage.
func (s *Server) createAPIKey(c *gin.Context) {
	var req apikeydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	secret, err := s.apiKeySvc.Create(c.Request.Context(), c.GetString(contextUserIDKey), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, secret)
}

func (s *Server) revokeAPIKey(c *gin.Context) {
	err := s.apiKeySvc.Revoke(c.Request.Context(), c.GetString(contextUserIDKey), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
