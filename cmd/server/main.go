package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lpms-app/lpms/internal/auth"
	"github.com/lpms-app/lpms/internal/db"
	"github.com/lpms-app/lpms/internal/events"
	"github.com/lpms-app/lpms/internal/httpapi"
	"github.com/lpms-app/lpms/internal/service/propertyservice"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("invalid integer, using default")
		return def
	}
	return n
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = log.With().Str("service", "lpms-api").Logger()

	// Pretty logging for local dev
	if env("ENV", "dev") == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgURL := env("DATABASE_URL", "")
	if pgURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	pool, err := db.Open(ctx, pgURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if amqpURL := env("AMQP_URL", ""); amqpURL != "" {
		exchange := env("AMQP_EXCHANGE", "lpms.events")
		p, err := events.NewAMQPPublisher(amqpURL, exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to amqp broker")
		}
		log.Info().Str("exchange", exchange).Msg("publishing domain events")
		publisher = p
	} else {
		log.Info().Msg("AMQP_URL not set, domain events disabled")
	}
	defer publisher.Close()

	srv := &httpapi.Server{
		Properties:   propertyservice.NewPropertyService(pool),
		Maintenances: propertyservice.NewMaintenanceService(pool),
		Events:       publisher,
		RateLimitConfig: httpapi.RateLimitInfo{
			WindowSeconds: 60,
			MaxRequests:   envInt("RATE_LIMIT_MAX", httpapi.DefaultRateLimit.MaxRequests),
			Burst:         envInt("RATE_LIMIT_BURST", httpapi.DefaultRateLimit.Burst),
			Writes: &httpapi.WriteLimit{
				MaxRequests: envInt("RATE_LIMIT_WRITE_MAX", httpapi.DefaultRateLimit.Writes.MaxRequests),
				Burst:       envInt("RATE_LIMIT_WRITE_BURST", httpapi.DefaultRateLimit.Writes.Burst),
			},
		},
	}

	jwtCfg := auth.JWTCfg{
		HS256Secret: env("JWT_HS256_SECRET", "dev-secret-change-in-production"),
		DevMode:     env("DEV_MODE", "") == "true",
	}

	httpAddr := env("HTTP_ADDR", ":8081")
	httpServer := &http.Server{
		Addr:         httpAddr,
		Handler:      srv.Routes(jwtCfg, auth.PgUserResolver{DB: pool}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", httpAddr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown on SIGINT/SIGTERM or server failure
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server error")
	}

	log.Info().Msg("server stopped")
}
