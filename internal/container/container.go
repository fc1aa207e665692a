package container

import (
	"github.com/yurfit/steam-scout/internal/cache"
	"github.com/yurfit/steam-scout/internal/config"
	"github.com/yurfit/steam-scout/internal/service"
	"github.com/yurfit/steam-scout/internal/service/auth"
	"github.com/yurfit/steam-scout/internal/steam"
	"github.com/yurfit/steam-scout/pkg/logger"
	"github.com/yurfit/steam-scout/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	RedisClient *redis.Client
	Services    *service.Services
}

// New creates a new dependency injection container. The lead service is wired
// separately because it needs the database, which main owns.
func New(cfg *config.Config, logger *logger.Logger) (*Container, error) {
	// Redis is optional: without it lead reads always hit Postgres.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, logger.Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without caching")
	}

	authService, err := auth.NewService(cfg.ClerkPEMPublicKey, cfg.ClerkAuthorizedParties, logger)
	if err != nil {
		return nil, err
	}

	steamClient := steam.NewClient(logger)
	steamCache := cache.New(service.CacheTTL)
	steamService := service.NewSteamService(steamClient, steamCache, cfg.SteamAppIDs, logger)

	services := &service.Services{
		Auth:  authService,
		Steam: steamService,
	}

	return &Container{
		Config:      cfg,
		Logger:      logger,
		RedisClient: redisClient,
		Services:    services,
	}, nil
}

// GetAuthService returns the auth service
func (c *Container) GetAuthService() service.AuthService {
	return c.Services.Auth
}

// GetSteamService returns the Steam aggregation service
func (c *Container) GetSteamService() service.SteamService {
	return c.Services.Steam
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// GetCacheService returns the lead cache service (nil when Redis is absent)
func (c *Container) GetCacheService() *service.CacheService {
	if c.RedisClient == nil {
		return nil
	}
	return service.NewCacheService(c.RedisClient, c.Logger.Logger)
}
