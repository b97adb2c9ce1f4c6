// Command rack runs the package registry server.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/raccoonpkg/rack/pkg/api"
	"github.com/raccoonpkg/rack/pkg/auth"
	"github.com/raccoonpkg/rack/pkg/blob"
	"github.com/raccoonpkg/rack/pkg/config"
	"github.com/raccoonpkg/rack/pkg/migrations"
	"github.com/raccoonpkg/rack/pkg/observability"
	"github.com/raccoonpkg/rack/pkg/publish"
	"github.com/raccoonpkg/rack/pkg/registry"
	"github.com/raccoonpkg/rack/pkg/tokens"
	"github.com/raccoonpkg/rack/pkg/users"
)

// statsInterval is how often the business gauges are refreshed from the
// database.
const statsInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rack: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if cfg.Database.RunMigrations {
		if err := migrations.Up(ctx, db); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	metrics := observability.NewMetrics(nil)

	var storage blob.Gateway
	switch cfg.Storage.Type {
	case "memory":
		storage = blob.NewMemoryGateway()
		logger.Warn("using in-memory blob storage; archives are lost on restart")
	default:
		storage, err = blob.NewS3Gateway(ctx, cfg.Storage.S3)
		if err != nil {
			return fmt.Errorf("init blob storage: %w", err)
		}
	}
	storage = blob.Instrument(storage, metrics)

	userStore := users.NewStore(db)
	credentials := auth.NewService(userStore, auth.Config{
		SigningKey: []byte(cfg.Auth.SigningKey),
		SessionTTL: cfg.Auth.SessionTTL,
	})
	packageStore := registry.NewStore(db)
	tokenStore := tokens.NewStore(db)
	tokenSvc := tokens.NewService(tokenStore, packageStore)
	pipeline := publish.NewPipeline(packageStore, tokenSvc, storage, metrics)
	health := observability.NewHealthChecker(db, storage)

	server := api.NewServer(api.Deps{
		Logger:      logger,
		Metrics:     metrics,
		Users:       userStore,
		Credentials: credentials,
		Packages:    packageStore,
		Tokens:      tokenSvc,
		Storage:     storage,
		Pipeline:    pipeline,
		Health:      health,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port for probes and scrapers. The
	// health handler is also registered on the main router.
	opsMux := http.NewServeMux()
	opsMux.HandleFunc("/health", health.Handler)
	if cfg.Observability.MetricsEnabled {
		opsMux.Handle("/metrics", metrics.Handler())
	}
	opsServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: opsMux,
	}

	// Keep the business gauges fresh from the store counts.
	if cfg.Observability.MetricsEnabled {
		poller := observability.NewStatsPoller(metrics, logger, statsInterval, func(ctx context.Context) (observability.Stats, error) {
			packages, versions, err := packageStore.Counts(ctx)
			if err != nil {
				return observability.Stats{}, err
			}
			activeUsers, err := userStore.CountActive(ctx)
			if err != nil {
				return observability.Stats{}, err
			}
			activeTokens, err := tokenStore.CountActive(ctx)
			if err != nil {
				return observability.Stats{}, err
			}
			return observability.Stats{
				Packages:  packages,
				Versions:  versions,
				Users:     activeUsers,
				APITokens: activeTokens,
			}, nil
		})
		pollCtx, stopPoller := context.WithCancel(ctx)
		defer stopPoller()
		go poller.Run(pollCtx)
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return opsServer.Shutdown(ctx)
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return db.Close()
	})

	go func() {
		logger.Info("ops server listening", "addr", opsServer.Addr)
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("ops server failed")
		}
	}()

	go func() {
		logger.Info("registry server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	return shutdown.WaitForShutdown()
}
