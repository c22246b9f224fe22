// Package main is the entrypoint for the ExportDesk API server.
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

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/exportdesk/exportdesk/internal/api"
	"github.com/exportdesk/exportdesk/internal/api/handler"
	mw "github.com/exportdesk/exportdesk/internal/api/middleware"
	"github.com/exportdesk/exportdesk/internal/audit"
	"github.com/exportdesk/exportdesk/internal/cache"
	"github.com/exportdesk/exportdesk/internal/config"
	"github.com/exportdesk/exportdesk/internal/crm"
	"github.com/exportdesk/exportdesk/internal/store"
	"github.com/exportdesk/exportdesk/pkg/models"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := run(log); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(log zerolog.Logger) error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Info().Str("env", cfg.Server.Env).Msg("config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info().Msg("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	log.Info().Msg("redis connected")

	// 5. Create store and core services
	pgStore := store.NewPostgresStore(pool)
	services := crm.NewServices(pgStore, audit.NewRecorder(), redisCache)

	// 6. Build router with dependencies
	auth := mw.NewAuth(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	rateLimit := mw.NewRateLimit(redisCache, cfg.RateLimit.RequestsPerMinute)

	deps := api.Dependencies{
		Log:       log,
		Auth:      auth,
		RateLimit: rateLimit,

		Health:    handler.NewHealthHandler(pgStore, redisCache),
		Login:     handler.NewLoginHandler(loginCore{services}, auth),
		Tenants:   handler.NewTenantHandler(services.Tenants),
		Users:     handler.NewUserHandler(services.Users),
		Companies: handler.NewCompanyHandler(services.Companies),
		Contacts:  handler.NewContactHandler(services.Contacts),
		Deals:     handler.NewDealHandler(services.Deals),
		Orders:    handler.NewOrderHandler(services.Orders),
		Shipments: handler.NewShipmentHandler(services.Shipments),
		Documents: handler.NewDocumentHandler(services.Documents),
		Audit:     handler.NewAuditHandler(services.Audit),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received, draining connections")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info().Msg("server stopped gracefully")
	return nil
}

// loginCore adapts the tenant and user services to the login handler's
// interface.
type loginCore struct {
	svc *crm.Services
}

func (l loginCore) TenantBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	return l.svc.Tenants.GetBySlug(ctx, slug)
}

func (l loginCore) UserByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error) {
	return l.svc.Users.GetByEmail(ctx, tenantID, email)
}

func (l loginCore) RecordLogin(ctx context.Context, u *models.User) error {
	return l.svc.Users.RecordLogin(ctx, u)
}
