package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	premiumdomain "github.com/commentpull/commentpull/internal/premium/domain"
)

type checkoutRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// createCheckout opens a provider subscription for the payer. The response
// carries the subscription id and public key id the payment widget needs;
// entitlement itself is granted later by the webhook or instant activation.
func (s *Server) createCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		AbortWithError(c, newValidationError("email", "required", "email is required"))
		return
	}

	subscriptionID, err := s.billing.CreateSubscription(c.Request.Context(), email, c.GetString(contextUserIDKey))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription_id": subscriptionID,
		"key_id":          s.cfg.Billing.KeyID,
	})
}

type activateSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id"`
	Email          string `json:"email"`
}

// activateSubscription grants entitlement right after the payment widget
// reports success, so the payer does not wait for webhook delivery. The
// webhook applies the same event later and converges to the same state.
func (s *Server) activateSubscription(c *gin.Context) {
	var req activateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		AbortWithError(c, newValidationError("email", "required", "email is required"))
		return
	}

	ev := premiumdomain.BillingEvent{
		Type:           premiumdomain.EventActivated,
		SubscriptionID: strings.TrimSpace(req.SubscriptionID),
		Email:          email,
		UserID:         c.GetString(contextUserIDKey),
	}
	if err := s.premiumSvc.ApplyBillingEvent(c.Request.Context(), ev); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
