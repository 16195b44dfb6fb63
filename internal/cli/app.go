package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"kitchenstock/internal/caching"
	"kitchenstock/internal/config"
	"kitchenstock/internal/inventory"
	"kitchenstock/internal/metrics"
	"kitchenstock/internal/notify"
	"kitchenstock/internal/persistence"
	"kitchenstock/internal/realtime"
	"kitchenstock/internal/repositories"
	"kitchenstock/internal/services"
	"kitchenstock/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app holds the long-lived dependencies shared by the commands.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger

	pool     *pgxpool.Pool
	redis    *redis.Client
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	cache      caching.CacheService
	outbox     *persistence.Outbox
	dispatcher *persistence.Dispatcher
	alerter    notify.Alerter
	publisher  *realtime.Publisher
	hub        *realtime.Hub
	engines    *inventory.Registry

	tenantRepo repositories.TenantRepository
	logRepo    repositories.UpdateLogRepository

	stock      services.StockProvider
	tenants    services.TenantService
	recipes    services.RecipeService
	purchases  services.PurchaseService
	checklists services.ChecklistService
	utensils   services.UtensilService
	transfer   services.TransferService
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	pool, err := database.NewPool(ctx, cfg.DB.URL, database.PoolOptions{
		MaxConns:       cfg.DB.MaxConns,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	a.pool = pool

	a.redis = caching.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := a.redis.Ping(ctx).Err(); err != nil {
		a.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.metrics = metrics.New(a.registry)

	a.cache = caching.NewRedisCacheService(a.redis, caching.CacheOptions{})

	// Persistence
	itemRepo := repositories.NewItemRepo(pool)
	sheetRepo := repositories.NewSheetRepo(pool)
	a.logRepo = repositories.NewUpdateLogRepo(pool)
	a.tenantRepo = repositories.NewTenantRepo(pool)

	policy, err := persistence.ParsePolicy(cfg.Inventory.Persistence)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.outbox = persistence.NewOutbox(a.redis, persistence.OutboxOptions{
		Prefix:      cfg.Outbox.Prefix,
		BaseBackoff: cfg.Outbox.BaseBackoff,
		MaxBackoff:  cfg.Outbox.MaxBackoff,
		MaxAttempts: cfg.Outbox.MaxAttempts,
		BatchSize:   cfg.Outbox.BatchSize,
	})
	store := persistence.NewStore(itemRepo, sheetRepo, a.logRepo)
	a.dispatcher = persistence.NewDispatcher(store, a.outbox, policy, a.metrics, logger)

	// Alerts
	alerters := []notify.Alerter{}
	if cfg.Alerts.WebhookURL != "" {
		alerters = append(alerters, notify.NewWebhookAlerter(cfg.Alerts.WebhookURL, cfg.Alerts.WebhookToken, cfg.Alerts.WebhookTimeout))
	}
	if cfg.Alerts.TelegramToken != "" && cfg.Alerts.TelegramChatID != 0 {
		tg, err := notify.NewTelegramAlerter(cfg.Alerts.TelegramToken, cfg.Alerts.TelegramChatID)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram alerts disabled")
		} else {
			alerters = append(alerters, tg)
		}
	}
	a.alerter = notify.New(alerters...)

	// Engines
	a.publisher = realtime.NewPublisher(a.redis)
	a.hub = realtime.NewHub(logger)
	origin := cfg.App.InstanceID
	if origin == "" {
		if host, err := os.Hostname(); err == nil {
			origin = fmt.Sprintf("%s-%d", host, os.Getpid())
		}
	}
	a.engines = inventory.NewRegistry(inventory.Dependencies{
		Store:     a.dispatcher,
		Alerter:   a.alerter,
		Mirror:    a.cache,
		Publisher: a.publisher,
		Metrics:   a.metrics,
		Logger:    logger,
		Origin:    origin,
	}, inventory.Options{
		DebounceWait: cfg.Inventory.DebounceWait,
		LogCapacity:  cfg.Inventory.LogCapacity,
		UndoDepth:    cfg.Inventory.UndoDepth,
		MaxDistance:  cfg.Inventory.MaxDistance,
		WriteTimeout: cfg.Inventory.WriteTimeout,
	})

	// Services
	var storage services.ObjectStorage
	if cfg.Storage.Enabled() {
		storage, err = services.NewMinioStorage(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("object storage: %w", err)
		}
		if err := storage.EnsureBucketExists(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("object storage bucket: %w", err)
		}
	}
	a.stock = services.NewStockProvider(a.engines)
	a.tenants = services.NewTenantService(a.tenantRepo, a.cache, a.engines, logger)
	a.recipes = services.NewRecipeService(repositories.NewRecipeRepo(pool), a.stock, a.cache, logger)
	a.purchases = services.NewPurchaseService(repositories.NewPurchaseRepo(pool), a.stock, a.cache, logger)
	a.checklists = services.NewChecklistService(repositories.NewChecklistRepo(pool))
	a.utensils = services.NewUtensilService(repositories.NewUtensilRepo(pool))
	a.transfer = services.NewTransferService(a.stock, storage, a.cache, cfg.Storage.LinkExpiry, logger)

	return a, nil
}

// Close flushes the engines before the connections they write to go away.
func (a *app) Close() {
	if a.engines != nil {
		a.engines.Close()
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("closing redis")
		}
	}
	database.ClosePool(a.pool)
}
