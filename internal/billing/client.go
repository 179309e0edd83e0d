package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/commentpull/commentpull/internal/config"
	premiumdomain "github.com/commentpull/commentpull/internal/premium/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrUnknownEvent  = errors.New("unknown_billing_event")
	ErrNotConfigured = errors.New("billing_not_configured")
)

// subscriptionBillingCycles is the number of charges a new subscription is
// created for (monthly plan, one year).
const subscriptionBillingCycles = 12

type ClientParams struct {
	fx.In

	Log *zap.Logger
	Cfg config.Config
}

// Client talks to the subscription provider's REST API with basic auth.
type Client struct {
	log       *zap.Logger
	baseURL   string
	keyID     string
	keySecret string
	planID    string
	http      *http.Client
}

func NewClient(p ClientParams) premiumdomain.BillingProvider {
	timeout := time.Duration(p.Cfg.Billing.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		log:       p.Log.Named("billing.client"),
		baseURL:   strings.TrimRight(p.Cfg.Billing.BaseURL, "/"),
		keyID:     p.Cfg.Billing.KeyID,
		keySecret: p.Cfg.Billing.KeySecret,
		planID:    p.Cfg.Billing.PlanID,
		http:      &http.Client{Timeout: timeout},
	}
}

// CreateSubscription opens a provider subscription on the configured plan.
// The payer's email and user id travel in the notes so the webhook can
// correlate the activation back to an account.
func (c *Client) CreateSubscription(ctx context.Context, email, userID string) (string, error) {
	if c.keyID == "" || c.keySecret == "" || c.planID == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]any{
		"plan_id":         c.planID,
		"total_count":     subscriptionBillingCycles,
		"quantity":        1,
		"customer_notify": 1,
		"notes": map[string]string{
			"email":   email,
			"user_id": userID,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/subscriptions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create subscription: %w", err)
	}
	defer resp.Body.Close()

	var created struct {
		ID    string `json:"id"`
		Error *struct {
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("create subscription: decode: %w", err)
	}

	if resp.StatusCode >= 300 || created.ID == "" {
		desc := "provider rejected subscription"
		if created.Error != nil && created.Error.Description != "" {
			desc = created.Error.Description
		}
		c.log.Warn("subscription create rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("description", desc))
		return "", fmt.Errorf("create subscription: %s", desc)
	}

	c.log.Info("subscription created", zap.String("subscription_id", created.ID))
	return created.ID, nil
}

// CancelAtCycleEnd schedules the subscription to end at the current billing
// cycle instead of immediately. The local record keeps entitlement until the
// renewal date passes.
func (c *Client) CancelAtCycleEnd(ctx context.Context, subscriptionID string) error {
	payload, err := json.Marshal(map[string]int{"cancel_at_cycle_end": 1})
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s/subscriptions/%s/cancel", c.baseURL, subscriptionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.log.Warn("subscription cancel rejected",
			zap.String("subscription_id", subscriptionID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("cancel subscription: provider returned %d", resp.StatusCode)
	}

	c.log.Info("subscription cancel scheduled", zap.String("subscription_id", subscriptionID))
	return nil
}
