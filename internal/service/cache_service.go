package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yurfit/steam-scout/internal/domain"
	"github.com/yurfit/steam-scout/pkg/redis"
)

// CacheService is the Redis cache-aside layer for lead reads. Every cache
// problem degrades to the database; Redis is never on the critical path.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service.
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// GetLeadsWithCache returns the user's lead list, consulting Redis first and
// falling back to the database on miss, corruption, or connectivity errors.
func (c *CacheService) GetLeadsWithCache(ctx context.Context, userID string, dbFallback func(ctx context.Context, userID string) ([]domain.Lead, error)) ([]domain.Lead, error) {
	cacheKey := fmt.Sprintf(redis.KeyLeadsByUser, userID)

	cachedData, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cachedData != "" {
		var leads []domain.Lead
		if marshalErr := json.Unmarshal([]byte(cachedData), &leads); marshalErr == nil {
			c.logger.Debug("Lead list cache hit", zap.String("user_id", userID))
			return leads, nil
		} else {
			c.logger.Warn("Lead list cache corrupted, falling back to database",
				zap.String("user_id", userID),
				zap.Error(marshalErr))
		}
	} else if err != nil && err != goredis.Nil {
		c.logger.Warn("Lead list cache error, falling back to database",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	c.logger.Debug("Lead list cache miss", zap.String("user_id", userID))
	leads, err := dbFallback(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("database fallback failed: %w", err)
	}

	go c.cacheLeadsAsync(userID, leads)

	return leads, nil
}

// GetLeadWithCache returns a single lead, consulting Redis first. Cached leads
// carry their owner, so a hit on another user's lead still goes through the
// user-scoped database lookup.
func (c *CacheService) GetLeadWithCache(ctx context.Context, userID string, leadID int64, dbFallback func(ctx context.Context, userID string, id int64) (*domain.Lead, error)) (*domain.Lead, error) {
	cacheKey := fmt.Sprintf(redis.KeyLeadByID, leadID)

	cachedData, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cachedData != "" {
		var lead domain.Lead
		if marshalErr := json.Unmarshal([]byte(cachedData), &lead); marshalErr == nil {
			if lead.UserID == userID {
				c.logger.Debug("Lead cache hit", zap.Int64("lead_id", leadID))
				return &lead, nil
			}
		} else {
			c.logger.Warn("Lead cache corrupted, falling back to database",
				zap.Int64("lead_id", leadID),
				zap.Error(marshalErr))
		}
	} else if err != nil && err != goredis.Nil {
		c.logger.Warn("Lead cache error, falling back to database",
			zap.Int64("lead_id", leadID),
			zap.Error(err))
	}

	lead, err := dbFallback(ctx, userID, leadID)
	if err != nil {
		return nil, err
	}

	go c.cacheLeadAsync(lead)

	return lead, nil
}

// InvalidateLeadCaches drops the user's cached lead list plus any given lead
// entries after a write.
func (c *CacheService) InvalidateLeadCaches(userID string, leadIDs ...int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		keys := []string{fmt.Sprintf(redis.KeyLeadsByUser, userID)}
		for _, id := range leadIDs {
			keys = append(keys, fmt.Sprintf(redis.KeyLeadByID, id))
		}
		if err := c.redis.Delete(ctx, keys...); err != nil {
			c.logger.Error("Failed to invalidate lead cache",
				zap.String("user_id", userID),
				zap.Error(err))
			return
		}

		c.logger.Debug("Lead caches invalidated", zap.String("user_id", userID))
	}()
}

// HealthCheck pings Redis.
func (c *CacheService) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}

// cacheLeadsAsync stores the lead list, fire and forget.
func (c *CacheService) cacheLeadsAsync(userID string, leads []domain.Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(leads)
	if err != nil {
		c.logger.Error("Failed to marshal leads for caching",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	key := fmt.Sprintf(redis.KeyLeadsByUser, userID)
	if err := c.redis.Set(ctx, key, string(data), redis.TTLLeadsByUser); err != nil {
		c.logger.Error("Failed to cache lead list",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// cacheLeadAsync stores a single lead, fire and forget.
func (c *CacheService) cacheLeadAsync(lead *domain.Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(lead)
	if err != nil {
		c.logger.Error("Failed to marshal lead for caching",
			zap.Int64("lead_id", lead.ID),
			zap.Error(err))
		return
	}

	key := fmt.Sprintf(redis.KeyLeadByID, lead.ID)
	if err := c.redis.Set(ctx, key, string(data), redis.TTLLeadByID); err != nil {
		c.logger.Error("Failed to cache lead",
			zap.Int64("lead_id", lead.ID),
			zap.Error(err))
	}
}
