package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/d60-Lab/quickcart/config"
	"github.com/d60-Lab/quickcart/internal/api/handler"
	"github.com/d60-Lab/quickcart/internal/api/router"
	"github.com/d60-Lab/quickcart/internal/auth"
	qcache "github.com/d60-Lab/quickcart/internal/cache"
	"github.com/d60-Lab/quickcart/internal/events"
	"github.com/d60-Lab/quickcart/internal/service"
	"github.com/d60-Lab/quickcart/pkg/cache"
	"github.com/d60-Lab/quickcart/pkg/database"
	"github.com/d60-Lab/quickcart/pkg/logger"
	"github.com/d60-Lab/quickcart/pkg/tracing"
)

func serveCmd() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(cfg, autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run migrations before serving")
	return cmd
}

func serve(cfg *config.Config, autoMigrate bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			AttachStacktrace: true,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if autoMigrate {
		if err := migrate(ctx, cfg, db); err != nil {
			return err
		}
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		// 缓存不可用时直接读库
		logger.Warn("redis unavailable, product cache disabled", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.TTL)
	productCache := qcache.NewProductCache(rdb, cfg.Redis.CacheTTL)
	h := handler.NewHandler(handler.Services{
		Orders:     service.NewOrderService(db, productCache, cfg.Store.LocationID),
		Wallet:     service.NewWalletService(db),
		Catalog:    service.NewCatalogService(db, productCache, cfg.Store.LocationID),
		Users:      service.NewUserService(db, tokens),
		Deliveries: service.NewDeliveryService(db),
		Stats:      service.NewStatsService(db, cfg.Store.LowStockLimit),
	})

	gin.SetMode(cfg.Server.Mode)
	engine, err := router.Setup(cfg, h, tokens)
	if err != nil {
		return err
	}

	var stopRelay func(context.Context) error
	if cfg.Kafka.Enabled() {
		publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		relay := service.NewOutboxRelay(db, publisher, 1, cfg.Kafka.BatchSize, cfg.Kafka.PollInterval)
		stopRelay = relay.Start()
		logger.Info("outbox relay started", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("location_id", cfg.Store.LocationID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if stopRelay != nil {
		if err := stopRelay(shutdownCtx); err != nil {
			logger.Error("relay shutdown", zap.Error(err))
		}
	}
	return nil
}
