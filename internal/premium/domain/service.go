package domain

import (
	"context"
	"errors"
	"time"
)

type EventType string

const (
	EventActivated EventType = "subscription.activated"
	EventCharged   EventType = "subscription.charged"
	EventCancelled EventType = "subscription.cancelled"
	EventCompleted EventType = "subscription.completed"
	EventHalted    EventType = "subscription.halted"
)

// BillingEvent is a provider subscription lifecycle notification, already
// signature-verified by the transport layer.
type BillingEvent struct {
	Type           EventType  `json:"type"`
	SubscriptionID string     `json:"subscription_id"`
	PlanID         string     `json:"plan_id"`
	Email          string     `json:"email"`
	UserID         string     `json:"user_id"`
	PeriodEnd      *time.Time `json:"period_end"`
}

// Status is the effective entitlement the caller should act on, with the
// grace-period rule already applied.
type Status struct {
	IsPremium      bool       `json:"is_premium"`
	Plan           string     `json:"plan,omitempty"`
	ActivatedAt    *time.Time `json:"activated_at,omitempty"`
	RenewalDate    *time.Time `json:"renewal_date,omitempty"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	SubscriptionID string     `json:"subscription_id,omitempty"`
}

type Service interface {
	// GetStatus returns the effective status for a user; a user with no
	// record gets a zero-valued free Status, not an error.
	GetStatus(ctx context.Context, userID string) (Status, error)

	// ApplyBillingEvent mutates PremiumStatus according to the event type.
	// Replaying an event must converge to the same state.
	ApplyBillingEvent(ctx context.Context, ev BillingEvent) error

	// Cancel requests a cancel-at-cycle-end with the billing provider and
	// stamps the local record. Entitlement stays active until renewal.
	Cancel(ctx context.Context, userID string) (Status, error)
}

// BillingProvider is the outbound contract to the subscription provider.
type BillingProvider interface {
	// CreateSubscription opens a new provider subscription for the payer and
	// returns its id. Payment completes on the provider's side; activation
	// arrives afterwards as a billing event.
	CreateSubscription(ctx context.Context, email, userID string) (string, error)

	CancelAtCycleEnd(ctx context.Context, subscriptionID string) error
}

var (
	ErrInvalidUser         = errors.New("invalid_user")
	ErrNoSubscription      = errors.New("no_subscription")
	ErrInvalidBillingEvent = errors.New("invalid_billing_event")
)
