package migration

import (
	"github.com/commentpull/commentpull/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(runOnStart),
)

func runOnStart(db *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if err := Run(db, cfg.Database.Type); err != nil {
		return err
	}
	log.Info("migrations applied", zap.String("dialect", cfg.Database.Type))
	return nil
}
