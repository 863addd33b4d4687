package migrate

import (
	"context"
	"fmt"

	"github.com/dorozco/marketpulse-backend/pkg/config"
	"github.com/dorozco/marketpulse-backend/pkg/db"
	"github.com/dorozco/marketpulse-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations at startup. It is a no-op unless
// the app runs in dev mode with the auto-migrate flag on; prod deployments
// run cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "dir": DefaultDir})
	logg.Info(ctx, "running goose migrations (dev auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
