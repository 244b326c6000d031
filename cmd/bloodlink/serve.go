package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloodlink/internal/auth"
	"bloodlink/internal/intake"
	"bloodlink/internal/matching"
	"bloodlink/internal/metrics"
	"bloodlink/internal/seed"
	"bloodlink/internal/server"
	"bloodlink/internal/store"
	"bloodlink/internal/store/memory"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "in-memory",
			Usage: "Keep all data in process memory instead of Postgres",
		},
		&cli.BoolFlag{
			Name:  "seed",
			Usage: "Load demo donors on start (in-memory only)",
		},
	},
	Action: serve,
}

type donorStore interface {
	server.DonorStore
	matching.DonorFinder
	seed.DonorRepository
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	inMemory := cCtx.Bool("in-memory")

	config, err := loadConfig(!inMemory)
	if err != nil {
		return err
	}

	if config.IsDevelopment() {
		logger.SetLevel(logrus.DebugLevel)
	}

	if config.TokenSigningKey == "" {
		return fmt.Errorf("set TOKEN_SIGNING_KEY")
	}

	var (
		donors     donorStore
		recipients server.RecipientStore
		users      server.UserStore
	)

	if inMemory {
		logger.Warn("running with in-memory storage, data is lost on exit")

		memDonors := memory.NewDonorStore()
		if cCtx.Bool("seed") {
			created, err := seed.SeedDonors(ctx, memDonors, seed.DefaultDonorCount)
			if err != nil {
				return err
			}
			logger.WithField("created", created).Info("demo donors loaded")
		}

		donors = memDonors
		recipients = memory.NewRecipientStore()
		users = memory.NewUserStore()
	} else {
		pool, err := connectAndMigrate(ctx, config, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		donors = store.NewDonorRepository(pool)
		recipients = store.NewRecipientRepository(pool)
		users = store.NewUserRepository(pool)
	}

	tokens, err := auth.NewTokenService(
		[]byte(config.TokenSigningKey),
		config.TokenIssuer,
		time.Duration(config.TokenTTLHours)*time.Hour,
	)
	if err != nil {
		return err
	}

	if config.JWKSURL != "" {
		if err := tokens.UseRemoteKeySet(ctx, config.JWKSURL); err != nil {
			return err
		}
		logger.WithField("jwks_url", config.JWKSURL).Info("verifying external tokens against remote key set")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	engine := matching.New(
		donors,
		logger,
		matching.WithOtherCityLimit(config.OtherCityLimit),
		matching.WithMetrics(m),
	)

	srv := server.New(
		config,
		logger,
		donors,
		recipients,
		users,
		intake.New(recipients, engine, logger, m),
		tokens,
		m,
	)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
