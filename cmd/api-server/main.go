package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anilog/database"
	"anilog/internal/cache"
	"anilog/internal/config"
	"anilog/internal/jobs"
	"anilog/internal/logging"
	"anilog/internal/microservices/http-api/handler"
	"anilog/internal/microservices/http-api/middleware"
	"anilog/internal/microservices/http-api/repository"
	"anilog/internal/microservices/http-api/router"
	"anilog/internal/microservices/http-api/service"
	"anilog/internal/telemetry"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("api-server: %v", err)
	}
}

func run() error {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdownTracing, err := telemetry.InitTracing(ctx, cfg.GoEnv, os.Stdout)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				logger.Warn("tracer shutdown failed", "error", err)
			}
		}()
	}

	// 2. Connect to the database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db, logger); err != nil {
		return err
	}
	if cfg.SeedSampleData {
		if err := database.Seed(ctx, db, logger); err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
	}

	// 3. Optional redis cache
	var animeCache *cache.AnimeCache
	if cfg.RedisEnabled() {
		rdb, err := cache.NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, continuing without cache", "error", err)
		} else {
			defer rdb.Close()
			animeCache = cache.NewAnimeCache(rdb, cfg.CacheTTL, logger)
			logger.Info("redis cache enabled")
		}
	}

	// 4. Repositories and services
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	animeRepo := repository.NewAnimeRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	seriesRepo := repository.NewSeriesRepository(db)
	featuredRepo := repository.NewFeaturedRepository(db)

	authService := service.NewAuthService(userRepo, tokenRepo, cfg, logger)
	userService := service.NewUserService(userRepo, logger)
	animeService := service.NewAnimeService(animeRepo, reviewRepo, categoryRepo, seriesRepo, featuredRepo, animeCache, logger)
	reviewService := service.NewReviewService(reviewRepo, animeRepo, animeService, logger)
	commentService := service.NewCommentService(commentRepo, reviewRepo, userRepo, logger)
	catalogService := service.NewCatalogService(animeRepo, seriesRepo, categoryRepo, featuredRepo, animeService, animeCache, logger)
	adminService := service.NewAdminService(userRepo, animeRepo, reviewRepo, commentRepo, reviewService, logger)

	// 5. Background jobs
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	var ranking jobs.RankingStore
	if animeCache != nil {
		ranking = animeCache
	}
	janitor := jobs.NewJanitor(tokenRepo, limiter, reviewRepo, ranking, jobs.DefaultIntervals(), logger)
	if ranking != nil {
		if err := janitor.RebuildRanking(ctx); err != nil {
			logger.Warn("initial ranking rebuild failed", "error", err)
		}
	}
	jobCtx, cancelJobs := context.WithCancel(ctx)
	janitor.StartPollers(jobCtx)
	defer func() {
		cancelJobs()
		janitor.Wait()
	}()

	// 6. HTTP server
	r := router.New(cfg, logger, authService, limiter, pingDB(db),
		handler.NewAuthHandler(authService, logger),
		handler.NewUserHandler(userService, logger),
		handler.NewAnimeHandler(animeService, logger),
		handler.NewReviewHandler(reviewService, logger),
		handler.NewCommentHandler(commentService, logger),
		handler.NewAdminHandler(adminService, catalogService, animeService, logger),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func pingDB(db *gorm.DB) router.HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
