package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zlnvch/notekeep/api"
	"github.com/zlnvch/notekeep/cache"
	"github.com/zlnvch/notekeep/cache/redis"
	"github.com/zlnvch/notekeep/config"
	"github.com/zlnvch/notekeep/logging"
	"github.com/zlnvch/notekeep/service"
	"github.com/zlnvch/notekeep/store"
	"github.com/zlnvch/notekeep/store/dynamo"
	"github.com/zlnvch/notekeep/store/memory"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	notesStore, err := newStore(shutdownCtx, cfg)
	if err != nil {
		logger.Fatal("Failed to create store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}

	var notesCache cache.NotesCache = cache.NoopCache{}
	if cfg.RedisEndpoint != "" {
		redisCache, err := redis.NewRedisNotesCache(shutdownCtx, cfg.DevMode, cfg.RedisEndpoint)
		if err != nil {
			logger.Fatal("Failed to create redis cache", zap.Error(err))
		}
		defer redisCache.Close()
		notesCache = redisCache
	}

	svc, err := service.NewService(notesStore, notesCache, cfg.SigningKey(), cfg.SessionTTL, cfg.BcryptCost, logger)
	if err != nil {
		logger.Fatal("Failed to create service", zap.Error(err))
	}

	notesAPI := api.NewNotesAPI(svc, api.NewMetrics(), logger, api.Options{
		RequestTimeout:    cfg.RequestTimeout,
		AuthRatePerSecond: cfg.AuthRatePerSecond,
		AuthRateBurst:     cfg.AuthRateBurst,
		TrustedProxies:    cfg.TrustedProxies,
	})

	mux := http.NewServeMux()
	notesAPI.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + cfg.HostPort,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("hostPort", cfg.HostPort), zap.String("store", cfg.Store.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-shutdownCtx.Done()
	logger.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newStore(ctx context.Context, cfg *config.Config) (store.NotesStore, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverDynamo:
		return dynamo.NewDynamoNotesStore(ctx, cfg.DevMode, cfg.Store.Endpoint, cfg.Store.Table)
	default:
		return memory.NewMemoryNotesStore(), nil
	}
}
