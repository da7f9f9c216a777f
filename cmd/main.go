package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swarajdesk/backend/internal/api/handler"
	"swarajdesk/backend/internal/complaint"
	"swarajdesk/backend/internal/config"
	"swarajdesk/backend/internal/database"
	"swarajdesk/backend/internal/hub"
	"swarajdesk/backend/internal/logging"
	"swarajdesk/backend/internal/normalize"
	"swarajdesk/backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func setupDependencies(cfg *config.Config, log zerolog.Logger) (*gorm.DB, *redis.Client) {
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	if cfg.RedisURL == "" {
		log.Info().Msg("REDIS_URL not set, running single-instance")
		return db, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid REDIS_URL")
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}

	log.Info().Msg("database and redis connections established")
	return db, rdb
}

func newNormalizer(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) complaint.Normalizer {
	url := cfg.NormalizerURL()
	if url == "" {
		log.Warn().Msg("normalizer not configured, sub-categories are stored as submitted")
		return nil
	}

	source := normalize.GoogleSource()
	if cfg.NormalizerToken != "" {
		source = normalize.StaticSource(cfg.NormalizerToken)
	}

	var tokens normalize.TokenCache = normalize.NewMemoryCache(source)
	if rdb != nil {
		tokens = normalize.NewRedisCache(rdb, source)
	}
	return normalize.NewClient(url, tokens, cfg.NormalizerTimeout, log)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logging.New(cfg.LogLevel, cfg.Environment)
	log.Info().Str("env", cfg.Environment).Msg("starting complaints backend")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, rdb := setupDependencies(cfg, log)
	store := storage.NewStorageService(db, rdb)

	h := hub.New(cfg.WSSweepInterval, cfg.WSStaleAfter, log)
	go h.Run(ctx)

	var notifier complaint.Notifier = h
	if rdb != nil {
		relay := hub.NewRedisRelay(rdb, h, log)
		notifier = relay
		go relay.Run(ctx)
	}

	opts := []complaint.Option{
		complaint.WithNotifier(notifier),
		complaint.WithWorkloadCap(cfg.AssignmentWorkloadCap),
		complaint.WithLogger(log),
	}
	if n := newNormalizer(cfg, rdb, log); n != nil {
		opts = append(opts, complaint.WithNormalizer(n))
	}
	svc := complaint.NewService(store, opts...)

	auth := handler.NewAuthenticator(cfg.JWTSecret, config.DefaultTokenTTL)
	hd := handler.NewHandler(svc, h, store, auth, cfg.CORSOrigins, cfg.IsProduction(), log)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        handler.NewRouter(hd),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := database.Close(db); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}
