package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	premiumdomain "github.com/commentpull/commentpull/internal/premium/domain"
)

// VerifySignature checks the hex HMAC-SHA256 of the raw body against the
// webhook secret. A missing secret rejects everything.
func VerifySignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Subscription struct {
			Entity subscriptionEntity `json:"entity"`
		} `json:"subscription"`
		Payment struct {
			Entity struct {
				Email string `json:"email"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type subscriptionEntity struct {
	ID         string            `json:"id"`
	PlanID     string            `json:"plan_id"`
	Status     string            `json:"status"`
	CurrentEnd int64             `json:"current_end"`
	EndedAt    int64             `json:"ended_at"`
	Notes      map[string]string `json:"notes"`
}

// ParseEvent maps a raw provider webhook body onto the billing event the
// entitlement service consumes. Unknown event names return an error; the
// handler acknowledges those without applying anything.
func ParseEvent(body []byte) (premiumdomain.BillingEvent, error) {
	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return premiumdomain.BillingEvent{}, fmt.Errorf("decode webhook: %w", err)
	}

	evType, ok := eventTypeFor(p.Event)
	if !ok {
		return premiumdomain.BillingEvent{}, fmt.Errorf("%w: %q", ErrUnknownEvent, p.Event)
	}

	sub := p.Payload.Subscription.Entity
	ev := premiumdomain.BillingEvent{
		Type:           evType,
		SubscriptionID: sub.ID,
		PlanID:         sub.PlanID,
		Email:          strings.ToLower(strings.TrimSpace(emailFor(p))),
		UserID:         sub.Notes["user_id"],
	}

	if end := periodEndFor(sub); end > 0 {
		t := time.Unix(end, 0).UTC()
		ev.PeriodEnd = &t
	}

	return ev, nil
}

func eventTypeFor(name string) (premiumdomain.EventType, bool) {
	switch name {
	case "subscription.activated", "subscription.authenticated":
		return premiumdomain.EventActivated, true
	case "subscription.charged":
		return premiumdomain.EventCharged, true
	case "subscription.cancelled":
		return premiumdomain.EventCancelled, true
	case "subscription.completed":
		return premiumdomain.EventCompleted, true
	case "subscription.halted", "subscription.paused":
		return premiumdomain.EventHalted, true
	}
	return "", false
}

func emailFor(p webhookPayload) string {
	if email := p.Payload.Subscription.Entity.Notes["email"]; email != "" {
		return email
	}
	return p.Payload.Payment.Entity.Email
}

func periodEndFor(sub subscriptionEntity) int64 {
	if sub.CurrentEnd > 0 {
		return sub.CurrentEnd
	}
	return sub.EndedAt
}
