package main

import (
	"fmt"

	"bloodlink/internal/utils"

	"github.com/urfave/cli/v2"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Generate NanoIDs for use as record ids",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
		&cli.IntFlag{
			Name:    "size",
			Aliases: []string{"s"},
			Usage:   "ID length, 0 for the default",
		},
	},
	Action: func(c *cli.Context) error {
		count, size := c.Int("count"), c.Int("size")
		for range count {
			if size > 0 {
				fmt.Println(utils.NanoIDSize(size))
				continue
			}
			fmt.Println(utils.NanoID())
		}
		return nil
	},
}
