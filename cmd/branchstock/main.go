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

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"

	"github.com/dmaros/branchstock/internal/adapter/fsm"
	"github.com/dmaros/branchstock/internal/adapter/otel"
	"github.com/dmaros/branchstock/internal/adapter/river"
	"github.com/dmaros/branchstock/internal/adapter/sqlite"
	"github.com/dmaros/branchstock/internal/app"
	"github.com/dmaros/branchstock/internal/auth"
	"github.com/dmaros/branchstock/internal/config"
	"github.com/dmaros/branchstock/internal/domain"

	handler "github.com/dmaros/branchstock/internal/adapter/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "branchstock: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	// --- Observability ---
	otelCfg, err := otel.ConfigFromEnv()
	if err != nil {
		return err
	}
	providers, err := otel.Setup(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", zap.Error(err))
		}
	}()

	// --- Adapters (out) ---
	db, err := otel.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	repo, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	riverClient, err := river.Setup(ctx, db, logger)
	if err != nil {
		return fmt.Errorf("river setup: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("river start: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			logger.Warn("river stop", zap.Error(err))
		}
	}()

	publisher := otel.NewTracingPublisher(river.NewPublisher(riverClient))
	transfers := otel.NewTracingRepository(repo)

	if err := seedAdmin(ctx, repo, cfg); err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}

	// --- Application ---
	transferSvc := app.NewTransferService(transfers, repo, repo, publisher, fsm.New())
	catalogSvc := app.NewCatalogService(repo, repo)

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware("branchstock", otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig("branchstock", "0.1.0"))
	handler.Register(api, handler.Handler{
		Transfers: transferSvc,
		Catalog:   catalogSvc,
		Users:     repo,
		JWTSecret: cfg.JWTSecret,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	case <-done:
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}

// seedAdmin creates the admin account on first start so a fresh deployment
// can log in and bootstrap branches, products and team users.
func seedAdmin(ctx context.Context, repo *sqlite.Repository, cfg config.Config) error {
	_, err := repo.GetUserByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	return repo.CreateUser(ctx, domain.User{
		ID:           uuid.NewString(),
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
}
