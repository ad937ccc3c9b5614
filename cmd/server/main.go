package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"personadesk/internal/audit"
	"personadesk/internal/customer"
	customerhandler "personadesk/internal/customer/handler"
	"personadesk/internal/customer/metrics"
	"personadesk/internal/identity"
	"personadesk/internal/persona/store"
	"personadesk/internal/platform/config"
	"personadesk/internal/platform/httpserver"
	"personadesk/internal/platform/logger"
	"personadesk/internal/platform/postgres"
	platformredis "personadesk/internal/platform/redis"
	httptransport "personadesk/internal/transport/http"
)

// main is the composition root: every collaborator is constructed here and
// passed down explicitly. Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Backing stores. Either may be absent: redis only disables the page
	// cache, postgres falls back to in-memory persistence.
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	pool, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}

	var (
		personaStore store.Store
		auditStore   audit.Store
	)
	if pool != nil {
		if _, err := pool.Exec(ctx, store.Schema); err != nil {
			log.Error("persona schema setup failed", "error", err)
			os.Exit(1)
		}
		if _, err := pool.Exec(ctx, audit.Schema); err != nil {
			log.Error("audit schema setup failed", "error", err)
			os.Exit(1)
		}
		personaStore = store.NewPostgres(pool.Pool)
		auditStore = audit.NewPostgresStore(pool.Pool)
	} else {
		log.Warn("DATABASE_URL not set, persona edits will not survive restarts")
		personaStore = store.NewMemory()
		auditStore = audit.NewMemoryStore()
	}

	// Identity source, optionally fronted by the redis page cache.
	identityClient := identity.NewClient(cfg.Identity, log)
	var source identity.Source = identityClient
	if redisClient != nil {
		source = identity.NewCachedSource(
			identityClient,
			identity.NewRedisCache(redisClient.Client),
			cfg.Identity.CacheTTL,
			log,
		)
	}

	auditService := audit.NewService(auditStore, log)
	go auditService.Run(ctx)

	customerService := customer.NewService(
		source,
		identityClient,
		personaStore,
		auditService,
		log,
		metrics.New(),
	)

	healthChecks := map[string]httptransport.HealthChecker{
		"postgres": nil,
		"redis":    nil,
	}
	if pool != nil {
		healthChecks["postgres"] = pool
	}
	if redisClient != nil {
		healthChecks["redis"] = redisClient
	}

	router := httptransport.NewRouter(log,
		customerhandler.New(customerService, log),
		httptransport.NewHealthHandler(healthChecks),
	)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting personadesk", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Stop the audit worker after in-flight requests have drained.
	cancel()
	if pool != nil {
		pool.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
}
