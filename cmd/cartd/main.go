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

	"github.com/fjod/go_cart/cart-store/internal/cart"
	"github.com/fjod/go_cart/cart-store/internal/catalog"
	"github.com/fjod/go_cart/cart-store/internal/config"
	h "github.com/fjod/go_cart/cart-store/internal/http"
	"github.com/fjod/go_cart/cart-store/internal/logger"
	"github.com/fjod/go_cart/cart-store/internal/notify"
	"github.com/fjod/go_cart/cart-store/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Service: "cartd", Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx := context.Background()
	store, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage")
	}
	defer closeStorage()

	notifier, closeNotifier := openNotifier(cfg, log)
	defer closeNotifier()

	client := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout, catalog.WithLogger(log))

	cartStore, err := cart.New(ctx, cart.Deps{
		Inventory: client,
		Catalog:   client,
		Storage:   store,
		Notifier:  notifier,
	},
		cart.WithStorageKey(cfg.StorageKey),
		cart.WithMessages(cart.MessagesFor(cfg.Locale)),
		cart.WithLogger(log),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to load cart")
	}
	log.WithField("items", len(cartStore.Cart())).Info("cart loaded")

	handler := h.NewCartHandler(cartStore, client, cfg.RequestTimeout, log)
	router := h.NewRouter(handler, log, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "cartd"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("cartd listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down cartd...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	log.Info("cartd stopped")
}

func openStorage(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (storage.Storage, func(), error) {
	switch cfg.StorageBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		log.WithField("addr", cfg.RedisAddr).Info("using redis storage")
		return storage.NewRedis(client, cfg.RedisTTL), func() { client.Close() }, nil

	case "mongo":
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		log.WithField("database", cfg.MongoDBName).Info("using mongo storage")
		return storage.NewMongo(db), func() { db.Client().Disconnect(context.Background()) }, nil

	case "sqlite":
		s, err := storage.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, nil, err
		}
		log.WithField("path", cfg.SQLitePath).Info("using sqlite storage")
		return s, func() { s.Close() }, nil

	default:
		log.Warn("using in-memory storage, the cart will not survive a restart")
		return storage.NewMemory(), func() {}, nil
	}
}

func openNotifier(cfg *config.Config, log logrus.FieldLogger) (notify.Notifier, func()) {
	logNotifier := notify.NewLogNotifier(log)
	if cfg.NotifierBackend != "kafka" {
		return logNotifier, func() {}
	}

	kafkaNotifier := notify.NewKafkaNotifier(log, cfg.KafkaTopic, cfg.KafkaBrokers...)
	closeFn := func() {
		if err := kafkaNotifier.Close(); err != nil {
			log.WithError(err).Error("failed to close kafka writer")
		}
	}
	return notify.Multi{logNotifier, kafkaNotifier}, closeFn
}
