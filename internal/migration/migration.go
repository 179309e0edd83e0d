package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	apikeydomain "github.com/commentpull/commentpull/internal/apikey/domain"
	downloaddomain "github.com/commentpull/commentpull/internal/download/domain"
	premiumdomain "github.com/commentpull/commentpull/internal/premium/domain"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

// Run applies the embedded SQL migrations. Postgres goes through the
// versioned migrator; other dialects auto-migrate from the models, which
// covers the sqlite test setup and small mysql deploys.
func Run(gdb *gorm.DB, dialect string) error {
	if gdb == nil {
		return errors.New("migration database handle is required")
	}

	if dialect != "postgres" {
		return gdb.AutoMigrate(
			&premiumdomain.PremiumStatus{},
			&downloaddomain.Download{},
			&apikeydomain.APIKey{},
		)
	}

	db, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("unwrap sql db: %w", err)
	}
	return runVersioned(db)
}

func runVersioned(db *sql.DB) error {
	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := ensureNotDirty(migrator); err != nil {
		return err
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return ensureNotDirty(migrator)
}

func ensureNotDirty(migrator *migrate.Migrate) error {
	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database migrations are dirty at version %d", version)
	}
	return nil
}
