package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Hirdyansh9/Orderbook/internal/api"
	"github.com/Hirdyansh9/Orderbook/internal/config"
	"github.com/Hirdyansh9/Orderbook/internal/db"
	"github.com/Hirdyansh9/Orderbook/internal/kafka"
	"github.com/Hirdyansh9/Orderbook/internal/logging"
	"github.com/Hirdyansh9/Orderbook/internal/notification"
	"github.com/Hirdyansh9/Orderbook/internal/providers"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	dbConn, err := db.New(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatalf("Database connection failed: %v", err)
	}
	defer dbConn.Close()
	if err := dbConn.Migrate(ctx); err != nil {
		logger.Fatalf("Database migration failed: %v", err)
	}

	// Live channels
	hub := providers.NewHub(logger)
	defer hub.CloseAll()
	publishers := providers.Fanout{hub}

	if cfg.Kafka.Broker != "" {
		producer := kafka.NewProducer(kafka.Config{Broker: cfg.Kafka.Broker, Topic: cfg.Kafka.Topic}, logger)
		defer producer.Close()
		publishers = append(publishers, producer)
	}

	if cfg.Telegram.BotToken != "" {
		tg, err := providers.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.Chats, cfg.Telegram.RateLimit, logger)
		if err != nil {
			logger.Fatalf("Telegram init failed: %v", err)
		}
		publishers = append(publishers, tg)
		logger.Infof("Telegram forwarding enabled for %d chat(s)", len(cfg.Telegram.Chats))
	}

	// Scan lock
	var lock notification.ScanLock
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatalf("Redis connection failed: %v", err)
		}
		lock = notification.NewRedisLock(rdb, "orderbook:notification-scan", cfg.Scan.LockTTL, logger)
		logger.Infof("Using Redis scan lock at %s", cfg.Redis.Addr)
	}

	// Initialize notification service
	svc, err := notification.New(notification.Deps{
		Policies:  dbConn,
		Records:   dbConn,
		Sink:      dbConn,
		Publisher: publishers,
		Lock:      lock,
	}, logger, cfg)
	if err != nil {
		logger.Fatalf("Notification service init failed: %v", err)
	}
	var wg sync.WaitGroup
	if err := svc.Start(&wg); err != nil {
		logger.Fatalf("Scheduler start failed: %v", err)
	}

	// Start API server
	handler := api.NewHandler(dbConn, dbConn, svc, logger)
	router := api.NewRouter(logger, cfg, handler, api.NewWSHandler(hub))
	srv := &http.Server{Addr: cfg.API.Port, Handler: router}
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("API server failed: %v", err)
			stop()
		}
	}()

	// Handle graceful shutdown
	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API shutdown failed: %v", err)
	}
	svc.Stop()
	wg.Wait()
	logger.Info("Service stopped")
}
