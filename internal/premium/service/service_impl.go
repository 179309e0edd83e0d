package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commentpull/commentpull/internal/clock"
	"github.com/commentpull/commentpull/internal/db"
	"github.com/commentpull/commentpull/internal/premium/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fallbackRenewalPeriod is used when an activation event carries no
// billing-period-end field.
const fallbackRenewalPeriod = 31 * 24 * time.Hour

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Provider domain.BillingProvider `optional:"true"`
}

type service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	provider domain.BillingProvider
}

func NewService(p Params) domain.Service {
	return &service{
		db:       p.DB,
		log:      p.Log.Named("premium.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		provider: p.Provider,
	}
}

func (s *service) GetStatus(ctx context.Context, userID string) (domain.Status, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Status{}, domain.ErrInvalidUser
	}

	status, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.Status{}, err
	}
	if status == nil {
		// No record means free tier, not an error.
		return domain.Status{}, nil
	}

	return s.toStatus(ctx, status), nil
}

func (s *service) ApplyBillingEvent(ctx context.Context, ev domain.BillingEvent) error {
	switch ev.Type {
	case domain.EventActivated, domain.EventCharged:
		return s.applyActivation(ctx, ev)
	case domain.EventCancelled:
		return s.applyCancellation(ctx, ev)
	case domain.EventCompleted, domain.EventHalted:
		return s.applyTermination(ctx, ev)
	default:
		s.log.Warn("unrecognized billing event",
			zap.String("type", string(ev.Type)),
			zap.String("subscription_id", ev.SubscriptionID))
		return domain.ErrInvalidBillingEvent
	}
}

// applyActivation upserts by email: the provider identifies the payer by
// email while our own actor id may not be known yet at payment time.
// Replaying the same event reasserts the same fields.
func (s *service) applyActivation(ctx context.Context, ev domain.BillingEvent) error {
	email := strings.TrimSpace(strings.ToLower(ev.Email))
	if email == "" {
		return domain.ErrInvalidBillingEvent
	}

	now := s.clock.Now(ctx)
	renewal := now.Add(fallbackRenewalPeriod)
	if ev.PeriodEnd != nil {
		renewal = *ev.PeriodEnd
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return err
	}

	if existing == nil {
		activatedAt := now
		status := &domain.PremiumStatus{
			ID:             s.genID.Generate(),
			UserID:         ev.UserID,
			Email:          email,
			SubscriptionID: ev.SubscriptionID,
			PlanID:         ev.PlanID,
			Plan:           "premium",
			IsActive:       true,
			RenewalDate:    &renewal,
			ActivatedAt:    &activatedAt,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.repo.Insert(ctx, s.db, status); err != nil {
			if db.IsDuplicateKeyErr(err) {
				// Only a row for the same payer counts as a concurrent
				// delivery of this event; anything else is a real failure.
				dup, findErr := s.repo.FindByEmail(ctx, s.db, email)
				if findErr == nil && dup != nil && dup.SubscriptionID == ev.SubscriptionID {
					return nil
				}
			}
			return err
		}
		s.log.Info("premium activated",
			zap.String("email", email),
			zap.String("subscription_id", ev.SubscriptionID),
			zap.Time("renewal_date", renewal))
		return nil
	}

	existing.SubscriptionID = ev.SubscriptionID
	existing.PlanID = ev.PlanID
	existing.Plan = "premium"
	existing.IsActive = true
	existing.RenewalDate = &renewal
	if ev.UserID != "" {
		existing.UserID = ev.UserID
	}
	if existing.ActivatedAt == nil {
		activatedAt := now
		existing.ActivatedAt = &activatedAt
	}
	// A fresh charge on a previously cancelled subscription restarts the cycle.
	existing.CancelledAt = nil
	existing.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return err
	}
	s.log.Info("premium reasserted",
		zap.String("email", email),
		zap.String("subscription_id", ev.SubscriptionID))
	return nil
}

// applyCancellation keeps entitlement active through the paid period;
// the renewal date becomes the expiry date.
func (s *service) applyCancellation(ctx context.Context, ev domain.BillingEvent) error {
	status, err := s.findBySubscription(ctx, ev.SubscriptionID)
	if err != nil {
		return err
	}

	now := s.clock.Now(ctx)
	cancelledAt := now
	status.CancelledAt = &cancelledAt
	status.IsActive = true
	if ev.PeriodEnd != nil {
		status.RenewalDate = ev.PeriodEnd
	}
	status.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, status); err != nil {
		return err
	}
	s.log.Info("premium cancelled, grace period started",
		zap.String("subscription_id", ev.SubscriptionID),
		zap.Timep("active_until", status.RenewalDate))
	return nil
}

func (s *service) applyTermination(ctx context.Context, ev domain.BillingEvent) error {
	status, err := s.findBySubscription(ctx, ev.SubscriptionID)
	if err != nil {
		return err
	}

	status.IsActive = false
	status.UpdatedAt = s.clock.Now(ctx)

	if err := s.repo.Update(ctx, s.db, status); err != nil {
		return err
	}
	s.log.Info("premium deactivated", zap.String("subscription_id", ev.SubscriptionID))
	return nil
}

func (s *service) Cancel(ctx context.Context, userID string) (domain.Status, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Status{}, domain.ErrInvalidUser
	}

	status, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.Status{}, err
	}
	if status == nil || status.SubscriptionID == "" {
		return domain.Status{}, domain.ErrNoSubscription
	}

	if s.provider != nil {
		if err := s.provider.CancelAtCycleEnd(ctx, status.SubscriptionID); err != nil {
			return domain.Status{}, err
		}
	}

	now := s.clock.Now(ctx)
	cancelledAt := now
	status.CancelledAt = &cancelledAt
	status.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, status); err != nil {
		return domain.Status{}, err
	}

	return s.toStatus(ctx, status), nil
}

func (s *service) findBySubscription(ctx context.Context, subscriptionID string) (*domain.PremiumStatus, error) {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return nil, domain.ErrInvalidBillingEvent
	}

	status, err := s.repo.FindBySubscriptionID(ctx, s.db, subscriptionID)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, domain.ErrNoSubscription
	}
	return status, nil
}

func (s *service) toStatus(ctx context.Context, status *domain.PremiumStatus) domain.Status {
	return domain.Status{
		IsPremium:      status.EntitledAt(s.clock.Now(ctx)),
		Plan:           status.Plan,
		ActivatedAt:    status.ActivatedAt,
		RenewalDate:    status.RenewalDate,
		CancelledAt:    status.CancelledAt,
		SubscriptionID: status.SubscriptionID,
	}
}
