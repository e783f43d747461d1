// Command seed loads the external transaction dataset once and exits.
// Running the server with AMQP enabled lets it drop its caches afterwards.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"salesboard/internal/cli"
	applog "salesboard/internal/log"
	"salesboard/internal/seed"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(applog.ComponentSeed)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := cli.OpenStore(ctx, logger, cfg)
	defer func() {
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Warn("Failed to close record store", applog.FieldError, err)
			}
		}
	}()

	opts := []seed.Option{seed.WithHTTPClient(&http.Client{Timeout: cfg.SeedTimeout})}
	if publisher := cli.ConnectAMQP(logger, cfg, ""); publisher != nil {
		defer publisher.Close()
		opts = append(opts, seed.WithNotifier(publisher))
	}

	seeder, err := seed.NewSeeder(cfg.SeedURL, store.Store, opts...)
	if err != nil {
		cli.Fatal(logger, "Failed to create seeder", err)
	}

	if _, err := seeder.Seed(applog.NewContext(ctx, logger)); err != nil {
		cli.Fatal(logger, "Seed failed", err)
	}
}
