package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"kitchenstock/internal/handlers"
	"kitchenstock/internal/jobs"
	"kitchenstock/internal/jobs/background"
	"kitchenstock/internal/middleware"
	"kitchenstock/internal/notify"
	"kitchenstock/internal/realtime"
	"kitchenstock/internal/server"
	"kitchenstock/pkg/database"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and background jobs",
		Long: `Start the HTTP API, the realtime subscriber and the background jobs.

The process stops on SIGINT or SIGTERM, draining in-flight requests and
flushing pending inventory writes before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	return cmd
}

func runServe(parent context.Context, rootOpts *RootOptions, migrate bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := rootOpts.load()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if migrate || cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, a.pool, "up"); err != nil {
			return err
		}
	}

	auth, err := middleware.NewAuthenticator(ctx, middleware.AuthConfig{
		JWKSURL:         cfg.Auth.JWKSURL,
		Secret:          cfg.Auth.JWTSecret,
		Issuer:          cfg.Auth.Issuer,
		Audience:        cfg.Auth.Audience,
		RefreshInterval: cfg.Auth.JWKSRefresh,
	}, logger)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	defer auth.Close()

	guard := middleware.NewTenantGuard(a.tenantRepo, 30*time.Second)

	h := server.Handlers{
		Inventory:  handlers.NewInventoryHandlers(a.engines, a.logRepo, logger).WithCostCache(a.cache),
		Recipes:    handlers.NewRecipeHandlers(a.recipes, logger),
		Purchases:  handlers.NewPurchaseHandlers(a.purchases, logger),
		Checklists: handlers.NewChecklistHandlers(a.checklists, logger),
		Utensils:   handlers.NewUtensilHandlers(a.utensils, logger),
		Tenants:    handlers.NewTenantHandlers(a.tenants, guard, logger),
		Transfer:   handlers.NewTransferHandlers(a.transfer, logger),
		Realtime:   handlers.NewRealtimeHandlers(a.hub, logger),
		Ops:        handlers.NewOpsHandlers(a.outbox, a.dispatcher, logger),
		Health: handlers.NewHealthHandlers(rootOpts.Version, map[string]handlers.Check{
			"database": handlers.DatabaseCheck(a.pool),
			"redis":    handlers.RedisCheck(a.redis),
		}, nil),
	}

	scheduler, err := background.NewJobScheduler(*cfg, background.Deps{
		Inventory:  a.engines,
		Outbox:     a.dispatcher,
		Checklists: jobs.NewChecklistRollover(a.tenants, a.checklists, cfg.Jobs.Location(), logger),
		Digests:    jobs.NewLowStockDigestService(a.tenants, a.stock, notify.AsDigester(a.alerter), a.metrics, logger),
		Metrics:    a.metrics,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	h.Ops.WithJobs(scheduler)

	e := server.NewRouter(h, server.Middleware{
		Authenticate: auth.Middleware(),
		Tenant:       guard.Middleware(),
		CommandLimit: middleware.RateLimit(a.cache, "commands", cfg.Inventory.CommandRateLimit, cfg.Inventory.CommandWindow, logger),
	}, server.Options{
		Metrics:      promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}),
		AllowOrigins: cfg.App.CORSOrigins,
		Logger:       logger,
	})

	subscriber := realtime.NewSubscriber(a.redis, logger, a.engines.HandleChange, a.hub.Broadcast)
	go func() {
		if err := subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("change subscriber stopped")
		}
	}()

	scheduler.Start()

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("version", rootOpts.Version).Msg("kitchenstock server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			stop()
			_ = scheduler.Stop()
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info().Msg("shutting down")
	timeout := cfg.App.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if err := scheduler.Stop(); err != nil {
		logger.Error().Err(err).Msg("scheduler shutdown")
	}
	a.engines.Close()
	// Whatever is still parked is replayed by the next instance.
	if _, err := a.dispatcher.Drain(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("final outbox drain")
	}
	return nil
}
