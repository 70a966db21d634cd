package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/seat-hold-engine/internal/clock"
	"github.com/iliyamo/seat-hold-engine/internal/config"
	"github.com/iliyamo/seat-hold-engine/internal/database"
	"github.com/iliyamo/seat-hold-engine/internal/handler"
	"github.com/iliyamo/seat-hold-engine/internal/jobs"
	"github.com/iliyamo/seat-hold-engine/internal/logger"
	"github.com/iliyamo/seat-hold-engine/internal/metrics"
	"github.com/iliyamo/seat-hold-engine/internal/middleware"
	"github.com/iliyamo/seat-hold-engine/internal/queue"
	"github.com/iliyamo/seat-hold-engine/internal/repository"
	"github.com/iliyamo/seat-hold-engine/internal/router"
	"github.com/iliyamo/seat-hold-engine/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment wins

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.With("component", "server", "env", cfg.Env)

	dsn := database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if cfg.AutoMigrate {
		version, err := database.Migrate(dsn)
		if err != nil {
			logger.Fatal("migrate failed", "error", err)
		}
		log.Info("schema up to date", "version", version)
	}

	db, err := database.OpenDSN(dsn)
	if err != nil {
		logger.Fatal("database connection failed", "error", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}

	publisher := queue.NewPublisher(cfg.RabbitURL, logger.With("component", "publisher"))
	defer publisher.Close()

	clk := clock.NewSystem()
	svc := service.NewBookingService(db,
		service.WithClock(clk),
		service.WithPublisher(publisher),
		service.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
		service.WithLogger(logger.With("component", "booking")),
	)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger.With("component", "http")))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger.With("component", "ratelimit"))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger.With("component", "cache"))

	router.RegisterRoutes(e, db)
	router.RegisterPublic(e, &handler.PublicHandler{
		ShowRepo: repository.NewShowRepo(db),
		SeatRepo: repository.NewSeatRepo(db),
		Clock:    clk,
		Log:      logger.With("component", "browse"),
	}, cache)
	router.RegisterBooking(e, handler.NewBookingHandler(svc, logger.With("component", "booking_http")), limiter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SweepInterval > 0 {
		job := jobs.NewExpiryJob(svc, cfg.SweepInterval, logger.With("component", "expiry"))
		job.Start(ctx)
		defer job.Stop()
	} else {
		log.Info("periodic sweep disabled; holds expire on reserve and confirm")
	}

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
