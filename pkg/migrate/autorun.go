package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/haani-backend/pkg/config"
	"github.com/angelmondragon/haani-backend/pkg/db"
	"github.com/angelmondragon/haani-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot in dev when
// HAANI_AUTO_MIGRATE is set. Deployed environments run cmd/migrate instead.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	applied, err := Up(ctx, sqlDB, Embedded())
	if err != nil {
		return err
	}
	for _, m := range applied {
		logg.Info(logg.WithField(ctx, "version", m.Version), "migration applied")
	}
	logg.Info(logg.WithField(ctx, "applied", len(applied)), "dev auto-migrate complete")
	return nil
}
