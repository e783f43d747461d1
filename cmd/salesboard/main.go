package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"salesboard/internal/amqp"
	"salesboard/internal/cli"
	apphttp "salesboard/internal/http"
	applog "salesboard/internal/log"
	"salesboard/internal/middleware/ratelimit"
	"salesboard/internal/seed"
	"salesboard/internal/services"
	"salesboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting salesboard", applog.FieldBackend, cfg.DataBackend, "port", cfg.Port)

	store := cli.OpenStore(context.Background(), logger, cfg)

	ranges, err := cfg.PriceRanges()
	if err != nil {
		cli.Fatal(logger, "Invalid bar chart ranges", err)
	}
	queries := services.NewQueryService(store.Store, services.QueryConfig{
		Year:        cfg.FilterYear,
		PriceRanges: ranges,
		CacheSize:   cfg.CacheSize,
		CacheTTL:    cfg.CacheTTL,
	})

	// Publisher only; the consumer below dials its own connection.
	publisher := cli.ConnectAMQP(logger, cfg, "")

	opts := []seed.Option{seed.WithHTTPClient(&http.Client{Timeout: cfg.SeedTimeout})}
	if publisher != nil {
		opts = append(opts, seed.WithNotifier(publisher))
	}
	seeder, err := seed.NewSeeder(cfg.SeedURL, store.Store, opts...)
	if err != nil {
		cli.Fatal(logger, "Failed to create seeder", err)
	}

	srv := apphttp.NewServer(":"+cfg.Port, queries, seeder, apphttp.Options{
		Logger:      logger,
		SeedTimeout: cfg.SeedTimeout + 5*time.Second,
		SeedLimit: ratelimit.Config{
			Requests: 5,
			Window:   time.Minute,
		},
		TrustedProxies: cfg.TrustedProxies,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.SeedTimeout + 15*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", applog.FieldError, err)
			}
		}
		_ = queries.Close()
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Warn("Failed to close record store", applog.FieldError, err)
			}
		}
	})

	if cfg.AMQPURL != "" {
		w := worker.NewSeededWorker(queries, func() (worker.SeededConsumer, error) {
			return amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		})
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("Seeded event worker stopped", applog.FieldError, err)
			}
		}()
	}

	logger.Info("Listening", "addr", srv.Addr, "year", cfg.FilterYear)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
