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

	"github.com/chris/escrow-marketplace/pkg/api"
	"github.com/chris/escrow-marketplace/pkg/bootstrap"
	"github.com/chris/escrow-marketplace/pkg/handlers"
	wshandlers "github.com/chris/escrow-marketplace/pkg/handlers/websockets"
	"github.com/chris/escrow-marketplace/pkg/metrics"
	"github.com/chris/escrow-marketplace/pkg/middleware"
	"github.com/chris/escrow-marketplace/pkg/ratelimit"
	"github.com/chris/escrow-marketplace/pkg/scheduler"
	"github.com/chris/escrow-marketplace/pkg/websockets"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Open(ctx, ".")
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	cfg, logger := rt.Config, rt.Logger
	if err := cfg.Validate(); err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	// Metrics
	var recorder metrics.Recorder = metrics.Noop{}
	var prom *metrics.Metrics
	if cfg.MetricsEnabled {
		prom = metrics.New()
		recorder = prom
	}

	// Notifications. Without an API Gateway endpoint, clients connect to /ws here.
	hub := websockets.NewLocalHub(logger)
	producer := rt.Producer()
	defer producer.Close()
	dispatcher := rt.Dispatcher(rt.Publisher(hub), producer)

	svc := rt.Service(bootstrap.ServiceOptions{
		Scheduler: rt.Scheduler(),
		Notifier:  dispatcher,
		Metrics:   recorder,
	})

	// The sweep also covers deadlines whose scheduled message was lost.
	sweeper := scheduler.NewSweeper(svc, cfg.AutoReleaseSweepSchedule, logger)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	// Rate limiting
	var limiter ratelimit.Limiter
	limitCfg := ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute, Burst: cfg.RateLimitBurst}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, cfg.RedisRateLimitPrefix, limitCfg)
	} else {
		limiter = ratelimit.NewMemoryLimiter(limitCfg)
	}

	verifier := middleware.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	apiHandler := handlers.NewApiHandler(svc, logger)
	wsHandler := wshandlers.NewHandler(rt.Store, verifier, hub, logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.NewStructuredLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if prom != nil {
		router.Use(middleware.Metrics(prom))
		router.Method(http.MethodGet, "/metrics", prom.Handler())
	}
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(verifier))
		r.Use(middleware.RateLimit(limiter, logger))
		r.Handle("/ws", wsHandler)
		api.HandlerFromMux(apiHandler, r)
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.HTTPPort, "storage_backend", cfg.StorageBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	<-sweeper.Stop().Done()
	dispatcher.Wait()
}
