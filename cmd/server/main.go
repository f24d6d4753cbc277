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

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/insurance-catalog/internal/auth"
	"github.com/iliyamo/insurance-catalog/internal/config"
	"github.com/iliyamo/insurance-catalog/internal/database"
	"github.com/iliyamo/insurance-catalog/internal/handler"
	"github.com/iliyamo/insurance-catalog/internal/logging"
	"github.com/iliyamo/insurance-catalog/internal/middleware"
	"github.com/iliyamo/insurance-catalog/internal/queue"
	"github.com/iliyamo/insurance-catalog/internal/repository"
	"github.com/iliyamo/insurance-catalog/internal/router"
	"github.com/iliyamo/insurance-catalog/internal/service"
)

const tokenIssuer = "insurance-catalog"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.Load()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger := logging.New(cfg.Env, cfg.LogLevel)

	clients, err := auth.ParseClients(cfg.OAuthClients)
	if err != nil {
		return fmt.Errorf("OAUTH_CLIENTS: %w", err)
	}

	db, err := database.Open(ctx, database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}
	if cfg.DBSeed {
		if err := database.Seed(ctx, db, cfg.BcryptCost, logger); err != nil {
			return err
		}
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn(ctx, "redis unavailable; response cache off, rate limiter in-process")
	} else {
		defer rdb.Close()
	}

	events, err := queue.NewPublisher(cfg.Events, logger)
	if err != nil {
		return err
	}
	defer events.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	codec := auth.NewJWTCodec(cfg.JWTSecret, tokenIssuer)

	issuer := service.NewTokenIssuer(users, tokens, clients, codec, events, logger,
		service.IssuerConfig{TokenTTL: cfg.TokenTTL, BcryptCost: cfg.BcryptCost})
	bearer := middleware.BearerAuth(service.NewAuthorizer(users, tokens, codec), logger)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(issuer, logger), bearer, limit)
	router.RegisterCatalog(e, handler.NewProductHandler(service.NewCatalog(repository.NewProductRepo(db)), logger), bearer, cache)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Events.StartConsumer && (cfg.Events.Bus == "rabbitmq" || cfg.Events.Bus == "amqp") {
		consumer := &queue.AuditConsumer{
			URL:     cfg.Events.RabbitURL,
			Queue:   cfg.Events.Subject,
			LogPath: cfg.Events.AuditLogPath,
			Log:     logger.With("component", "audit_consumer"),
		}
		g.Go(func() error {
			if err := consumer.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	addr := ":" + cfg.Port
	g.Go(func() error {
		logger.Info(gctx, "listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info(shutdownCtx, "shutting down")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
