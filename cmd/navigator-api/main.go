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

	"github.com/gin-gonic/gin"

	"github.com/shivamgupta214/outfox-health-assessment/internal/cache"
	"github.com/shivamgupta214/outfox-health-assessment/internal/config"
	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
	"github.com/shivamgupta214/outfox-health-assessment/internal/handler"
	"github.com/shivamgupta214/outfox-health-assessment/internal/repository"
	"github.com/shivamgupta214/outfox-health-assessment/internal/service"
	pkgconfig "github.com/shivamgupta214/outfox-health-assessment/pkg/config"
	"github.com/shivamgupta214/outfox-health-assessment/pkg/database"
	pkglog "github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load(pkgconfig.GetEnv("NAVIGATOR_CONFIG_DIR", ""))
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	closer, err := pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "navigator-api",
	})
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to init logger")
	}
	defer closer.Close()
	logger := pkglog.L()

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, &domain.HospitalData{}, &domain.StarRating{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database ready")

	// Initialize Redis cache
	var providerCache cache.ProviderCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisProviderCache(cfg.Redis, cfg.Cache.Prefix)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		providerCache = redisCache
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}

	// Initialize repository and service
	hospitalRepo := repository.NewGormHospitalRepository(db)
	navigatorService := service.NewNavigatorService(hospitalRepo, providerCache, cfg.Cache.TTL)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	handler.NewHandler(navigatorService).RegisterRoutes(r)
	handler.NewWSHandler(navigatorService, cfg.WebSocket).RegisterRoutes(r)

	server := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     r,
		ReadTimeout: 60 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("navigator-api starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down navigator-api")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("navigator-api stopped")
}
