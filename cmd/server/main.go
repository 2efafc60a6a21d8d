package main // Entry point package

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

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/config"
	"github.com/iliyamo/video-rental/internal/database"
	"github.com/iliyamo/video-rental/internal/handler"
	"github.com/iliyamo/video-rental/internal/ledger"
	"github.com/iliyamo/video-rental/internal/logger"
	"github.com/iliyamo/video-rental/internal/middleware"
	"github.com/iliyamo/video-rental/internal/queue"
	"github.com/iliyamo/video-rental/internal/repository"
	"github.com/iliyamo/video-rental/internal/router"
	"github.com/iliyamo/video-rental/internal/service"
	"github.com/iliyamo/video-rental/internal/telemetry"
	"github.com/iliyamo/video-rental/internal/validation"
)

const (
	serviceName    = "video-rental"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	appLog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = appLog.Sync() }()

	if err := run(cfg, appLog); err != nil {
		appLog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, appLog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Money is written as a JSON number, e.g. "rentalFee": 30.
	decimal.MarshalJSONWithoutQuotes = true

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, serviceName, serviceVersion, appLog)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			appLog.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		appLog.Info("schema up to date")
	}

	rdb := config.NewRedisClient(appLog)
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	customers := repository.NewCustomerRepo(db)
	genres := repository.NewGenreRepo(db)
	movies := repository.NewMovieRepo(db)

	ledgerOpts := []ledger.Option{
		ledger.WithLogger(appLog.Named("ledger")),
		ledger.WithTimeout(cfg.LedgerTimeout),
	}
	if cfg.AMQPURL != "" {
		ledgerOpts = append(ledgerOpts, ledger.WithPublisher(service.NewRentalPublisher(cfg.AMQPURL, appLog.Named("publisher"))))
		go func() {
			err := queue.StartRentalConsumer(ctx, queue.ConsumerConfig{URL: cfg.AMQPURL, LogDir: cfg.RentalLogDir}, appLog.Named("consumer"))
			if err != nil && !errors.Is(err, context.Canceled) {
				appLog.Error("rental consumer stopped", zap.Error(err))
			}
		}()
	} else {
		appLog.Info("RABBITMQ_URL not set; rental events disabled")
	}
	rentals := ledger.New(ledger.NewSQLStore(db), ledgerOpts...)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(logger.RequestLogger(appLog.Named("http")))
	e.Use(middleware.NewTokenBucket(rateCfg, rdb, appLog.Named("ratelimit")))

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, appLog), cfg.JWTSecret)
	router.RegisterUsers(e, handler.NewUserHandler(users, cfg.BcryptCost, appLog), cfg.JWTSecret)
	router.RegisterCatalog(e, router.Catalog{
		Customers:  handler.NewCustomerHandler(customers, appLog),
		Genres:     handler.NewGenreHandler(genres, appLog),
		Movies:     handler.NewMovieHandler(movies, genres, appLog),
		Cache:      middleware.NewRedisCache(cacheCfg, rdb),
		Invalidate: middleware.InvalidateCache(cacheCfg, rdb, appLog),
	}, cfg.JWTSecret)
	router.RegisterRentals(e, handler.NewRentalHandler(rentals, appLog), cfg.JWTSecret)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	appLog.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(sctx)
}
