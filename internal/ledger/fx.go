package ledger

import (
	"time"

	"github.com/commentpull/commentpull/internal/config"
	"github.com/commentpull/commentpull/internal/ledger/domain"
	"github.com/commentpull/commentpull/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(NewConfig),
	fx.Provide(service.NewService),
)

func NewConfig(cfg config.Config) *domain.Config {
	return &domain.Config{
		Enabled:        cfg.Ledger.Enabled,
		FreeDailyLimit: cfg.Ledger.FreeDailyLimit,
		CounterTTL:     time.Duration(cfg.Ledger.CounterTTLHrs) * time.Hour,
	}
}
