package service

import (
	"context"
	"fmt"
	"time"

	"github.com/commentpull/commentpull/internal/clock"
	ledgerdomain "github.com/commentpull/commentpull/internal/ledger/domain"
	premiumdomain "github.com/commentpull/commentpull/internal/premium/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// reserveScript increments the counter only while it is below the limit.
// The read and the increment happen in one script execution, so two
// concurrent requests for the same key can never both slip under the cap.
// Returns {allowed, used}.
const reserveScript = `
local limit = tonumber(ARGV[1])
local ttl = tonumber(ARGV[2])
local used = tonumber(redis.call("GET", KEYS[1]) or "0")
if used >= limit then
  return {0, used}
end
used = redis.call("INCR", KEYS[1])
if used == 1 then
  redis.call("EXPIRE", KEYS[1], ttl)
end
return {1, used}
`

type ServiceParam struct {
	fx.In

	Redis      *redis.Client
	Log        *zap.Logger
	Config     *ledgerdomain.Config
	Clock      clock.Clock
	PremiumSvc premiumdomain.Service
}

type service struct {
	redis   *redis.Client
	log     *zap.Logger
	cfg     *ledgerdomain.Config
	clock   clock.Clock
	premium premiumdomain.Service
	reserve *redis.Script
}

func NewService(p ServiceParam) ledgerdomain.Service {
	return &service{
		redis:   p.Redis,
		log:     p.Log.Named("ledger.service"),
		cfg:     p.Config,
		clock:   p.Clock,
		premium: p.PremiumSvc,
		reserve: redis.NewScript(reserveScript),
	}
}

func (s *service) CheckAndReserve(ctx context.Context, subject ledgerdomain.Subject, limit int) (ledgerdomain.Decision, error) {
	if limit <= 0 {
		limit = s.cfg.FreeDailyLimit
	}

	if !s.cfg.Enabled {
		return ledgerdomain.Decision{Allowed: true, Limit: limit, Remaining: limit, Unlimited: true}, nil
	}

	if s.isPremium(ctx, subject) {
		decisionsTotal.WithLabelValues(outcomeUnlimited).Inc()
		return ledgerdomain.Decision{Allowed: true, Unlimited: true}, nil
	}

	key := s.counterKey(ctx, subject)
	ttl := int(s.cfg.CounterTTL / time.Second)

	res, err := s.reserve.Run(ctx, s.redis, []string{key}, limit, ttl).Slice()
	if err != nil {
		// Fail open: metering is a courtesy, not a security boundary.
		s.log.Warn("usage counter unavailable, failing open",
			zap.String("key", key), zap.Error(err))
		decisionsTotal.WithLabelValues(outcomeFailOpen).Inc()
		return ledgerdomain.Decision{Allowed: true, Used: 0, Limit: limit, Remaining: limit}, nil
	}

	allowed, used := parseReserveReply(res)
	if !allowed {
		decisionsTotal.WithLabelValues(outcomeDenied).Inc()
		return ledgerdomain.Decision{Allowed: false, Used: used, Limit: limit, Remaining: 0}, nil
	}

	decisionsTotal.WithLabelValues(outcomeAllowed).Inc()
	return ledgerdomain.Decision{
		Allowed:   true,
		Used:      used,
		Limit:     limit,
		Remaining: clampNonNegative(limit - used),
	}, nil
}

func (s *service) Peek(ctx context.Context, subject ledgerdomain.Subject, limit int) (ledgerdomain.Decision, error) {
	if limit <= 0 {
		limit = s.cfg.FreeDailyLimit
	}

	if !s.cfg.Enabled || s.isPremium(ctx, subject) {
		return ledgerdomain.Decision{Allowed: true, Limit: limit, Remaining: limit, Unlimited: true}, nil
	}

	key := s.counterKey(ctx, subject)
	used, err := s.redis.Get(ctx, key).Int()
	if err != nil && err != redis.Nil {
		s.log.Warn("usage counter unavailable, reporting zero usage",
			zap.String("key", key), zap.Error(err))
		return ledgerdomain.Decision{Allowed: true, Used: 0, Limit: limit, Remaining: limit}, nil
	}

	return ledgerdomain.Decision{
		Allowed:   used < limit,
		Used:      used,
		Limit:     limit,
		Remaining: clampNonNegative(limit - used),
	}, nil
}

// isPremium resolves the subject's entitlement. A failed lookup is treated as
// free tier rather than an error: the counter still decides, and the counter
// itself fails open if the store is down.
func (s *service) isPremium(ctx context.Context, subject ledgerdomain.Subject) bool {
	if !subject.IsUser() {
		return false
	}
	status, err := s.premium.GetStatus(ctx, subject.UserID)
	if err != nil {
		s.log.Warn("premium lookup failed, treating subject as free tier",
			zap.String("user_id", subject.UserID), zap.Error(err))
		return false
	}
	return status.IsPremium
}

// counterKey scopes counters to the UTC calendar day; a new day implicitly
// starts at zero because the previous day's key is never consulted.
func (s *service) counterKey(ctx context.Context, subject ledgerdomain.Subject) string {
	day := s.clock.Now(ctx).UTC().Format("2006-01-02")
	return fmt.Sprintf("ledger:dl:%s:%s", subject.Key(), day)
}

func parseReserveReply(res []interface{}) (bool, int) {
	if len(res) < 2 {
		return false, 0
	}
	return toInt64(res[0]) == 1, int(toInt64(res[1]))
}

func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
