package main

import (
	"fmt"

	"bloodlink/internal/seed"
	"bloodlink/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo donors",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "donors",
			Usage: "Number of demo donors to create",
			Value: seed.DefaultDonorCount,
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Remove previously seeded donors first",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(true)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := c.Context

		pool, err := connectAndMigrate(ctx, cfg, logrus.StandardLogger())
		if err != nil {
			return err
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		donorRepo := store.NewDonorRepository(pool)

		if c.Bool("reset") {
			removed, err := seed.Reset(ctx, donorRepo)
			if err != nil {
				return err
			}
			logrus.WithField("removed", removed).Info("Seeded donors removed")
		}

		logrus.Info("Seeding donors...")
		created, err := seed.SeedDonors(ctx, donorRepo, c.Int("donors"))
		if err != nil {
			return fmt.Errorf("failed to seed donors: %w", err)
		}

		logrus.WithField("created", created).Info("Donors seeded successfully")

		return nil
	},
}
