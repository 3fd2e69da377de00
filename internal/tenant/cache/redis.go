package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/sairex/internal/config"
	"github.com/smallbiznis/sairex/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyPrefix = "sairex:tenant:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Provide builds the cache when Redis is enabled. With Redis disabled it
// returns a nil cache and the directory reads straight from the database.
func Provide(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (domain.Cache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log = log.Named("tenant.cache")

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}
			log.Info("tenant cache connected", zap.String("addr", cfg.Redis.Addr))
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return NewRedisCache(client, cfg.Redis.TTL), nil
}

func organizationKey(code string) string { return keyPrefix + "org:" + code }
func campusKey(code string) string       { return keyPrefix + "campus:" + code }

func (c *RedisCache) GetOrganization(ctx context.Context, code string) (*domain.Organization, error) {
	var org domain.Organization
	ok, err := c.get(ctx, organizationKey(code), &org)
	if err != nil || !ok {
		return nil, err
	}
	return &org, nil
}

func (c *RedisCache) SetOrganization(ctx context.Context, org *domain.Organization) error {
	return c.set(ctx, organizationKey(org.OrgCode), org)
}

func (c *RedisCache) GetCampus(ctx context.Context, code string) (*domain.Campus, error) {
	var campus domain.Campus
	ok, err := c.get(ctx, campusKey(code), &campus)
	if err != nil || !ok {
		return nil, err
	}
	return &campus, nil
}

func (c *RedisCache) SetCampus(ctx context.Context, campus *domain.Campus) error {
	return c.set(ctx, campusKey(campus.CampusCode), campus)
}

func (c *RedisCache) get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt entries are dropped and treated as a miss.
		c.client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

var _ domain.Cache = (*RedisCache)(nil)
