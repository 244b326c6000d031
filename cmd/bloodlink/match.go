package main

import (
	"fmt"

	"bloodlink/internal/matching"
	"bloodlink/internal/store"
	"bloodlink/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var matchCommand = &cli.Command{
	Name:  "match",
	Usage: "Print the donors a blood request would be matched with",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "blood-group",
			Aliases:  []string{"b"},
			Usage:    "Recipient blood group, e.g. A+",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "city",
			Usage:    "Recipient city",
			Required: true,
		},
	},
	Action: func(c *cli.Context) error {
		group, err := types.ParseBloodGroup(c.String("blood-group"))
		if err != nil {
			return err
		}

		cfg, err := loadConfig(true)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := logrus.StandardLogger()

		pool, err := connectAndMigrate(c.Context, cfg, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		engine := matching.New(
			store.NewDonorRepository(pool),
			logger,
			matching.WithOtherCityLimit(cfg.OtherCityLimit),
		)

		result, err := engine.FindMatches(c.Context, group, types.NewCity(c.String("city")))
		if err != nil {
			return fmt.Errorf("failed to find matches: %w", err)
		}

		_, err = pp.Println(result)
		return err
	},
}
