package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apikeydomain "github.com/commentpull/commentpull/internal/apikey/domain"
	ledgerdomain "github.com/commentpull/commentpull/internal/ledger/domain"
	"go.uber.org/zap"
)

const (
	HeaderUserID     = "X-User-Id"
	HeaderRequestID  = "X-Request-Id"
	contextUserIDKey = "user_id"
	contextAPIKeyKey = "api_key"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func AccessLog(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request",
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}

// Identity trusts the user id header set by the upstream auth proxy.
// Anonymous callers are tracked by client IP.
func (s *Server) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader(HeaderUserID)); uid != "" {
			c.Set(contextUserIDKey, uid)
		}
		c.Next()
	}
}

// UserRequired rejects anonymous callers on routes that need an account.
func (s *Server) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(contextUserIDKey) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// APIKeyAuth authenticates programmatic callers by bearer key and maps the
// key back to its owner.
func (s *Server) APIKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		raw = strings.TrimPrefix(raw, "Bearer ")
		if raw == "" {
			AbortWithError(c, apikeydomain.ErrInvalidKey)
			return
		}

		key, err := s.apiKeySvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, key.UserID)
		c.Set(contextAPIKeyKey, key)
		c.Next()
	}
}

func (s *Server) subjectFor(c *gin.Context) ledgerdomain.Subject {
	return ledgerdomain.Subject{
		UserID: c.GetString(contextUserIDKey),
		IP:     c.ClientIP(),
	}
}
