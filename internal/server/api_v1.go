package server

import (
	apikeydomain "github.com/commentpull/commentpull/internal/apikey/domain"
	"github.com/gin-gonic/gin"
)

// getCommentsV1 is the programmatic comment fetch behind API key auth.
// A key outlives its owner's subscription, so entitlement is re-checked on
// every call; lapsed owners get 403, not a silent downgrade.
func (s *Server) getCommentsV1(c *gin.Context) {
	req, err := s.parseFetchRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status, err := s.premiumSvc.GetStatus(c.Request.Context(), c.GetString(contextUserIDKey))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !status.IsPremium {
		AbortWithError(c, apikeydomain.ErrPremiumRequired)
		return
	}

	if req.MaxResults <= 0 || req.MaxResults > s.cfg.YouTube.PremiumMax {
		req.MaxResults = s.cfg.YouTube.PremiumMax
	}

	result, err := s.comments.Fetch(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.writeFetchResult(c, result)
}
