package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/commentpull/commentpull/internal/billing"
	premiumdomain "github.com/commentpull/commentpull/internal/premium/domain"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

// handleBillingWebhook verifies and applies provider subscription events.
// Unknown event names are acknowledged without side effects so the provider
// stops retrying them.
func (s *Server) handleBillingWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, newValidationError("body", "unreadable", "could not read request body"))
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if !billing.VerifySignature(body, signature, s.cfg.Billing.WebhookSecret) {
		s.log.Warn("webhook signature rejected", zap.String("request_id", c.GetString("request_id")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	ev, err := billing.ParseEvent(body)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownEvent) {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		AbortWithError(c, newValidationError("body", "invalid_payload", "could not parse webhook payload"))
		return
	}

	if err := s.premiumSvc.ApplyBillingEvent(c.Request.Context(), ev); err != nil {
		// Permanently-unprocessable events are acknowledged so the provider
		// stops redelivering them; only transient store failures earn a retry.
		if errors.Is(err, premiumdomain.ErrNoSubscription) || errors.Is(err, premiumdomain.ErrInvalidBillingEvent) {
			s.log.Warn("billing event ignored",
				zap.String("event_type", string(ev.Type)),
				zap.String("subscription_id", ev.SubscriptionID),
				zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		s.log.Error("billing event apply failed",
			zap.String("event_type", string(ev.Type)),
			zap.String("subscription_id", ev.SubscriptionID),
			zap.Error(err))
		AbortWithError(c, ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
