package migrate

import (
	"context"
	"fmt"

	"github.com/artisanmarket/cart-backend/pkg/config"
	"github.com/artisanmarket/cart-backend/pkg/db"
	"github.com/artisanmarket/cart-backend/pkg/db/models"
	"github.com/artisanmarket/cart-backend/pkg/logger"
)

// MaybeRunDev prepares the schema at boot when ARTISAN_AUTO_MIGRATE is set.
// SQLite databases are migrated with gorm AutoMigrate; Postgres runs the
// goose migrations, and only outside production.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.AutoMigrate || client == nil {
		return nil
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "db_driver": client.Driver()})

	if client.Driver() == config.DBDriverSQLite {
		logg.Info(ctx, "auto-migrating sqlite schema")
		if err := client.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("auto-migrate sqlite: %w", err)
		}
		return nil
	}

	if cfg.App.IsProd() {
		logg.Warn(ctx, "auto-migrate ignored in prod; run cmd/migrate instead")
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithField(ctx, "dir", DefaultDir)
	logg.Info(ctx, "running goose migrations (auto-run)")

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	logg.Info(ctx, "goose migrations completed")
	return nil
}
