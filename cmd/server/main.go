package main // Entry point package

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-management/internal/config"
	"github.com/iliyamo/hotel-management/internal/database"
	"github.com/iliyamo/hotel-management/internal/handler"
	"github.com/iliyamo/hotel-management/internal/logger"
	"github.com/iliyamo/hotel-management/internal/metrics"
	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/queue"
	"github.com/iliyamo/hotel-management/internal/repository"
	"github.com/iliyamo/hotel-management/internal/router"
	"github.com/iliyamo/hotel-management/internal/service"
	"github.com/iliyamo/hotel-management/migrations"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply the embedded schema before serving")
	flag.Parse()

	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat).With().Str("env", cfg.Env).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, database.DefaultOptions())
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.DSNAddr()).Msg("database unavailable")
	}
	defer db.Close()

	if *migrate {
		if err := migrations.Apply(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("schema applied")
	}

	// ---- repositories ----
	reservations := repository.NewReservationRepo(db)
	invoices := repository.NewInvoiceRepo(db)
	customers := repository.NewCustomerRepo(db)
	rooms := repository.NewRoomRepo(db)
	agents := repository.NewAgentRepo(db)
	sessions := repository.NewSessionRepo(db)
	blogs := repository.NewBlogRepo(db)
	faqs := repository.NewFAQRepo(db)
	contacts := repository.NewContactRepo(db)

	// ---- lifecycle engine and event plumbing ----
	m := metrics.New()
	var pub service.EventPublisher = service.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		pub = service.NewBreakerPublisher(service.NewAMQPPublisher(cfg.RabbitMQURL), 30*time.Second,
			logger.Component(log, "publisher"))
	}
	lifecycle := service.NewLifecycle(db, reservations, invoices, pub, m, logger.Component(log, "lifecycle"))

	if cfg.RabbitMQURL != "" {
		consumer := queue.NewPaymentConsumer(cfg.RabbitMQURL, lifecycle, log, m)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("payment consumer stopped")
			}
		}()
	} else {
		log.Warn().Msg("RABBITMQ_URL not set; events are not published and payments are not consumed")
	}

	go purgeSessions(ctx, sessions, logger.Component(log, "sessions"))

	// ---- redis-backed edge middleware ----
	var cache *middleware.ResponseCache
	var limiter echo.MiddlewareFunc = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; cache and rate limiting disabled")
		cache = middleware.NewResponseCache(config.CacheConfig{}, nil, log)
	} else {
		defer rdb.Close()
		cache = middleware.NewResponseCache(config.LoadCacheConfig(), rdb, logger.Component(log, "cache"))
		limiter = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger.Component(log, "ratelimit"))
	}

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = middleware.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(m.Middleware())
	e.Use(echomw.BodyLimit("1M"))

	roomH := handler.NewRoomHandler(rooms, cache)
	contentH := handler.NewContentHandler(blogs, faqs, contacts, cache)
	reservationH := handler.NewReservationHandler(reservations, rooms, customers, invoices, lifecycle)

	router.RegisterRoutes(e, db, m)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, agents, sessions), cfg.AgentJWTSecret, cfg.RootJWTSecret, sessions, limiter)
	router.RegisterPublic(e, roomH, contentH, cache, limiter)
	router.RegisterAgent(e, router.AgentHandlers{
		Customers:    handler.NewCustomerHandler(customers, reservations),
		Rooms:        roomH,
		Reservations: reservationH,
		Invoices:     handler.NewInvoiceHandler(invoices),
		Content:      contentH,
	}, cfg.AgentJWTSecret, sessions)
	router.RegisterRoot(e, handler.NewAgentHandler(agents, cfg.BcryptCost), reservationH, cfg.RootJWTSecret, sessions)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// purgeSessions drops expired revocation entries once an hour.
func purgeSessions(ctx context.Context, sessions *repository.SessionRepo, log zerolog.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := sessions.PurgeExpired(ctx, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge revoked sessions")
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("revoked sessions purged")
			}
		}
	}
}
