package main

import (
	"context"
	"fmt"

	"bloodlink/internal/db"
	"bloodlink/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply pending database migrations",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		pool, err := connectAndMigrate(c.Context, cfg, logrus.StandardLogger())
		if err != nil {
			return err
		}
		defer pool.Close()

		logrus.Info("Migrations applied")
		return nil
	},
}

func connectAndMigrate(ctx context.Context, cfg *types.Config, logger logrus.FieldLogger) (*pgxpool.Pool, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx, pool, cfg.DatabaseSchema, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return pool, nil
}
