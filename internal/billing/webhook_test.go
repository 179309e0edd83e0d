package billing_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/commentpull/commentpull/internal/billing"
	premiumdomain "github.com/commentpull/commentpull/internal/premium/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"event":"subscription.activated"}`)
	secret := "whsec_test"

	assert.True(t, billing.VerifySignature(body, sign(body, secret), secret))
	assert.False(t, billing.VerifySignature(body, sign(body, "other"), secret))
	assert.False(t, billing.VerifySignature(body, "", secret))
	assert.False(t, billing.VerifySignature(body, sign(body, secret), ""))
	assert.False(t, billing.VerifySignature([]byte("tampered"), sign(body, secret), secret))
}

func TestParseEventActivated(t *testing.T) {
	body := []byte(`{
		"event": "subscription.activated",
		"payload": {
			"subscription": {
				"entity": {
					"id": "sub_ABC",
					"plan_id": "plan_premium",
					"status": "active",
					"current_end": 1775000000,
					"notes": {"user_id": "user-1", "email": "Jordan@Example.com"}
				}
			}
		}
	}`)

	ev, err := billing.ParseEvent(body)
	require.NoError(t, err)
	assert.Equal(t, premiumdomain.EventActivated, ev.Type)
	assert.Equal(t, "sub_ABC", ev.SubscriptionID)
	assert.Equal(t, "plan_premium", ev.PlanID)
	assert.Equal(t, "jordan@example.com", ev.Email)
	assert.Equal(t, "user-1", ev.UserID)
	require.NotNil(t, ev.PeriodEnd)
	assert.Equal(t, time.Unix(1775000000, 0).UTC(), *ev.PeriodEnd)
}

func TestParseEventEmailFallsBackToPayment(t *testing.T) {
	body := []byte(`{
		"event": "subscription.charged",
		"payload": {
			"subscription": {"entity": {"id": "sub_ABC", "plan_id": "plan_premium"}},
			"payment": {"entity": {"email": "payer@example.com"}}
		}
	}`)

	ev, err := billing.ParseEvent(body)
	require.NoError(t, err)
	assert.Equal(t, premiumdomain.EventCharged, ev.Type)
	assert.Equal(t, "payer@example.com", ev.Email)
	assert.Nil(t, ev.PeriodEnd)
}

func TestParseEventCancelledUsesEndedAt(t *testing.T) {
	body := []byte(`{
		"event": "subscription.cancelled",
		"payload": {
			"subscription": {"entity": {"id": "sub_ABC", "ended_at": 1775100000}}
		}
	}`)

	ev, err := billing.ParseEvent(body)
	require.NoError(t, err)
	assert.Equal(t, premiumdomain.EventCancelled, ev.Type)
	require.NotNil(t, ev.PeriodEnd)
	assert.Equal(t, time.Unix(1775100000, 0).UTC(), *ev.PeriodEnd)
}

func TestParseEventUnknown(t *testing.T) {
	_, err := billing.ParseEvent([]byte(`{"event": "invoice.paid"}`))
	assert.ErrorIs(t, err, billing.ErrUnknownEvent)

	_, err = billing.ParseEvent([]byte(`not json`))
	assert.Error(t, err)
}
