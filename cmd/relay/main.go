package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/barretobrock/ff-relay/internal/dedup"
	"github.com/barretobrock/ff-relay/internal/infra/firefly"
	"github.com/barretobrock/ff-relay/internal/infra/postgres"
	"github.com/barretobrock/ff-relay/internal/link"
	"github.com/barretobrock/ff-relay/internal/relay"
	"github.com/barretobrock/ff-relay/internal/transport/httpapi"
	"github.com/barretobrock/ff-relay/internal/transport/httpapi/handler"
	"github.com/barretobrock/ff-relay/pkg/config"
	"github.com/barretobrock/ff-relay/pkg/logger"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting ff-relay",
		"env", cfg.Env,
		"port", cfg.Port,
		"ledger", cfg.FireflyBaseURL,
	)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Error("Invalid TIMEZONE", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	// Pick dedup guard and link store backends. Postgres gives both
	// durable admissions and durable derivation links; Redis gives
	// durable admissions only; with neither, state is process-local and
	// lost on restart.
	var (
		guard relay.Guard     = dedup.NewMemoryGuard()
		links relay.LinkStore = link.NewMemoryStore()
		db    *postgres.DB
	)
	switch {
	case cfg.DatabaseURL != "":
		db, err = postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL})
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		guard = postgres.NewClaimRepository(db.Pool)
		links = postgres.NewLinkRepository(db.Pool)
		log.Info("Database connection established, using durable dedup and links")
	case cfg.RedisURL != "":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		guard = dedup.NewRedisGuard(redisClient)
		log.Info("Redis connection established, using durable dedup")
	default:
		log.Warn("No DATABASE_URL or REDIS_URL configured; dedup state is process-local and a restart during webhook redelivery can duplicate derivations")
	}

	// Initialize ledger client and reconciliation engine
	ledgerClient := firefly.NewClient(cfg.FireflyBaseURL, cfg.FireflyToken, firefly.Config{
		CurrencyCode: cfg.CurrencyCode,
		Location:     loc,
	}, log)
	builder := relay.NewBuilder(cfg.IncomeAccountID, cfg.OwedAccountID, cfg.FireflyBaseURL)
	engine := relay.NewEngine(ledgerClient, guard, links, builder, cfg.FireflyBaseURL, log)
	log.Info("Reconciliation engine initialized",
		"income_account", cfg.IncomeAccountID,
		"owed_account", cfg.OwedAccountID,
	)

	// Initialize HTTP handlers
	webhookHandler := handler.NewWebhookHandler(engine, log)
	routerCfg := httpapi.Config{
		Logger:         log,
		WebhookHandler: webhookHandler,
	}
	if db != nil {
		routerCfg.HealthHandler = handler.NewHealthHandler(db)
	}
	r := httpapi.NewRouter(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
