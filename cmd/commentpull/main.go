package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/commentpull/commentpull/internal/apikey"
	"github.com/commentpull/commentpull/internal/billing"
	"github.com/commentpull/commentpull/internal/clock"
	"github.com/commentpull/commentpull/internal/comments"
	"github.com/commentpull/commentpull/internal/config"
	"github.com/commentpull/commentpull/internal/db"
	"github.com/commentpull/commentpull/internal/download"
	"github.com/commentpull/commentpull/internal/ledger"
	"github.com/commentpull/commentpull/internal/logger"
	"github.com/commentpull/commentpull/internal/migration"
	"github.com/commentpull/commentpull/internal/premium"
	"github.com/commentpull/commentpull/internal/redis"
	"github.com/commentpull/commentpull/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "commentpull",
		Short:   "CommentPull API server",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newMigrateCmd(), newServeCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func runMigrate() error {
	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		migration.Module,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("migrate failed: %w", err)
	}
	_ = app.Stop(context.Background())
	return nil
}

func runServe() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		redis.Module,
		clock.Module,
		premium.Module,
		ledger.Module,
		download.Module,
		apikey.Module,
		comments.Module,
		billing.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
