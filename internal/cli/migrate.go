package cli

import (
	"context"
	"fmt"

	"celebrity-trivia/internal/config"
	"celebrity-trivia/internal/infra/postgres"
	"celebrity-trivia/internal/logging"
	"github.com/spf13/cobra"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level)
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	return postgres.Migrate(ctx, cfg.Postgres.URL)
}
