package main

import (
	"fmt"

	"bloodlink/internal/matching"
	"bloodlink/pkg/types"

	"github.com/kelseyhightower/envconfig"
)

// loadConfig reads the environment. needDatabase is false only for in-memory
// runs.
func loadConfig(needDatabase bool) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if needDatabase && c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 360
	}

	if c.OtherCityLimit == 0 {
		c.OtherCityLimit = matching.DefaultOtherCityLimit
	}

	return c, nil
}
