package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/yurfit/steam-scout/internal/config"
	"github.com/yurfit/steam-scout/internal/container"
	"github.com/yurfit/steam-scout/internal/handler"
	"github.com/yurfit/steam-scout/internal/middleware"
	"github.com/yurfit/steam-scout/internal/ratelimit"
	"github.com/yurfit/steam-scout/internal/repository"
	"github.com/yurfit/steam-scout/internal/service"
	"github.com/yurfit/steam-scout/pkg/database"
	"github.com/yurfit/steam-scout/pkg/logger"
	"github.com/yurfit/steam-scout/pkg/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	c, err := container.New(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize container")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = repository.EnsureSchema(ctx, db)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("Failed to ensure database schema")
	}

	leadRepo := repository.NewLeadRepository(db)
	leadService := service.NewLeadService(leadRepo, c.GetCacheService(), log)
	c.Services.Leads = leadService

	// Two limiter instances with isolated storage: a lenient one for the
	// whole API and a stricter one in front of the Steam proxy, which has
	// upstream rate limits of its own to respect.
	apiLimiter := ratelimit.New(ratelimit.Config{
		Window:      cfg.RateLimitWindow,
		MaxRequests: cfg.RateLimitMax,
	}, log)
	steamLimiter := ratelimit.New(ratelimit.Config{
		Window:      cfg.SteamRateLimitWindow,
		MaxRequests: cfg.SteamRateLimitMax,
	}, log)

	router := buildRouter(c, leadService, apiLimiter, steamLimiter, log)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	server.Run(httpServer, log)

	// Server has drained; release everything else.
	apiLimiter.Close()
	steamLimiter.Close()
	if redisClient := c.GetRedisClient(); redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Error("Failed to close Redis connection")
		}
	}
	db.Close()
	log.Info("Shutdown complete")
}

func buildRouter(
	c *container.Container,
	leadService service.LeadService,
	apiLimiter, steamLimiter *ratelimit.Limiter,
	log *logger.Logger,
) chi.Router {
	cfg := c.GetConfig()

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(c)
	steamHandler := handler.NewSteamHandler(c.GetSteamService(), log)
	leadHandler := handler.NewLeadHandler(leadService, log)

	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(apiLimiter, middleware.UserOrIPKey, log))

		// Steam proxy (public, stricter limiter stacked on the API one).
		r.Route("/steam", func(r chi.Router) {
			r.Use(middleware.RateLimit(steamLimiter, middleware.UserOrIPKey, log))
			steamHandler.RegisterRoutes(r)
		})

		// Lead management (auth required).
		r.Route("/leads", func(r chi.Router) {
			r.Use(middleware.Auth(c.GetAuthService(), log))
			leadHandler.RegisterRoutes(r)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"type":"not_found","message":"Endpoint not found"}}`))
	})

	log.Info("Router configured successfully")
	return r
}
