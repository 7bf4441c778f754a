package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

const planKeyPrefix = "routeplan:"

// RedisPlanCache keeps solved plans in Redis as JSON with a fixed TTL.
type RedisPlanCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisPlanCache(client *redis.Client, ttl time.Duration) *RedisPlanCache {
	return &RedisPlanCache{Client: client, TTL: ttl}
}

// Get returns ports.ErrPlanNotFound when the key is absent or expired.
func (c *RedisPlanCache) Get(ctx context.Context, key string) (_ *domain.PlanResult, err error) {
	defer obs.Time(ctx, "plan.cache.Get")(&err)

	raw, err := c.Client.Get(ctx, planKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan cache %s: %w", key, err)
	}

	var res domain.PlanResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("get plan cache %s: decode: %w", key, err)
	}
	return &res, nil
}

func (c *RedisPlanCache) Put(ctx context.Context, key string, result *domain.PlanResult) (err error) {
	defer obs.Time(ctx, "plan.cache.Put")(&err)

	if result == nil {
		return errors.New("put plan cache: result is nil")
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("put plan cache %s: encode: %w", key, err)
	}
	if err := c.Client.Set(ctx, planKeyPrefix+key, raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("put plan cache %s: %w", key, err)
	}
	return nil
}

// OpenRedis parses a redis:// URL and verifies the server answers PING.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("open redis: parse url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("open redis: ping %s: %w", opt.Addr, err)
	}
	return client, nil
}
