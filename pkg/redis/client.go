package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ecotrackth/ecotrack-backend/pkg/config"
	"github.com/ecotrackth/ecotrack-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	keyNamespace      = "et"
	idempotencyPrefix = "idempotency"
	rateLimitPrefix   = "rate_limit"
	counterPrefix     = "counter"
	sentTodayPrefix   = "sent_today"
	recentPrefix      = "recent_categories"
	pendingPrefix     = "toasts_pending"
)

// sentTodayTTL keeps daily counters one full day past their calendar day so
// a dispatch racing midnight still sees the old key before rollover.
const sentTodayTTL = 48 * time.Hour

const recentCategoriesCap = 5

// pendingToastsTTL caps how long undelivered cross-process toast records can
// sit in the feed if no API process is draining it.
const pendingToastsTTL = 24 * time.Hour

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Incr(context.Context, string) *redis.IntCmd
	Expire(context.Context, string, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
	LPush(context.Context, string, ...any) *redis.IntCmd
	RPush(context.Context, string, ...any) *redis.IntCmd
	LTrim(context.Context, string, int64, int64) *redis.StatusCmd
	LRange(context.Context, string, int64, int64) *redis.StringSliceCmd
	LPopCount(context.Context, string, int) *redis.StringSliceCmd
}

// Client wraps the redis connection helpers needed by the platform.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// RateLimiter applies fixed-window request budgets.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// IdempotencyStore exposes minimal operations used by idempotency helpers.
type IdempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Set stores a string value with an optional TTL.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Set(ctx, key, value, ttl).Err()
}

// Get returns a string value stored at key.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if c.store == nil {
		return "", errors.New("redis client not initialized")
	}
	return c.store.Get(ctx, key).Result()
}

// SetNX sets a value only if the key does not exist yet.
func (c *Client) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if c.store == nil {
		return false, errors.New("redis client not initialized")
	}
	return c.store.SetNX(ctx, key, value, ttl).Result()
}

// Incr increments the counter stored at key.
func (c *Client) Incr(ctx context.Context, key string) (int64, error) {
	if c.store == nil {
		return 0, errors.New("redis client not initialized")
	}
	return c.store.Incr(ctx, key).Result()
}

// IncrWithTTL increments and ensures the key has the supplied TTL on the first increment.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := c.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if ttl > 0 && count == 1 {
		if _, expErr := c.store.Expire(ctx, key, ttl).Result(); expErr != nil {
			return count, expErr
		}
	}
	return count, nil
}

// FixedWindowAllow applies a simple fixed-window rate limit.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	key := c.RateLimitKey(scope)
	count, err := c.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

// IdempotencyKey returns a namespaced key for idempotency storage.
func (c *Client) IdempotencyKey(scope, id string) string {
	return c.buildKey(idempotencyPrefix, scope, id)
}

// RateLimitKey returns a namespaced key for rate limit counters.
func (c *Client) RateLimitKey(scope string) string {
	return c.buildKey(rateLimitPrefix, scope)
}

// CounterKey returns a namespaced key for counters.
func (c *Client) CounterKey(name string) string {
	return c.buildKey(counterPrefix, name)
}

// SentTodayKey builds the per-device notification counter key for a local
// calendar day. Embedding the date makes the day-rollover reset implicit.
func (c *Client) SentTodayKey(deviceID, day string) string {
	return c.buildKey(sentTodayPrefix, deviceID, day)
}

// SentToday returns how many notifications were delivered to the device on
// the given local day. A missing key reads as zero.
func (c *Client) SentToday(ctx context.Context, deviceID, day string) (int, error) {
	value, err := c.Get(ctx, c.SentTodayKey(deviceID, day))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse sent-today counter: %w", err)
	}
	return count, nil
}

// IncrSentToday bumps the device's delivered counter for the given local day.
func (c *Client) IncrSentToday(ctx context.Context, deviceID, day string) (int64, error) {
	return c.IncrWithTTL(ctx, c.SentTodayKey(deviceID, day), sentTodayTTL)
}

// RecentCategoriesKey builds the per-device recently-used category list key.
func (c *Client) RecentCategoriesKey(deviceID string) string {
	return c.buildKey(recentPrefix, deviceID)
}

// PushRecentCategory records a category at the head of the device's recency
// list, trimming it to the display cap.
func (c *Client) PushRecentCategory(ctx context.Context, deviceID, categoryID string) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	key := c.RecentCategoriesKey(deviceID)
	if err := c.store.LPush(ctx, key, categoryID).Err(); err != nil {
		return err
	}
	return c.store.LTrim(ctx, key, 0, recentCategoriesCap-1).Err()
}

// RecentCategories returns the device's most recently used category ids,
// newest first.
func (c *Client) RecentCategories(ctx context.Context, deviceID string) ([]string, error) {
	if c.store == nil {
		return nil, errors.New("redis client not initialized")
	}
	return c.store.LRange(ctx, c.RecentCategoriesKey(deviceID), 0, recentCategoriesCap-1).Result()
}

// PendingToastsKey builds the cross-process toast feed key.
func (c *Client) PendingToastsKey() string {
	return c.buildKey(pendingPrefix)
}

// PushPendingToast appends a serialized toast record to the shared feed, for
// the API process's manager to drain.
func (c *Client) PushPendingToast(ctx context.Context, payload string) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	key := c.PendingToastsKey()
	if err := c.store.RPush(ctx, key, payload).Err(); err != nil {
		return err
	}
	return c.store.Expire(ctx, key, pendingToastsTTL).Err()
}

// DrainPendingToasts pops up to max records from the head of the feed,
// oldest first. An empty feed returns no records and no error.
func (c *Client) DrainPendingToasts(ctx context.Context, max int64) ([]string, error) {
	if c.store == nil {
		return nil, errors.New("redis client not initialized")
	}
	items, err := c.store.LPopCount(ctx, c.PendingToastsKey(), int(max)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return items, err
}

// Del removes the provided keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Del(ctx, keys...).Err()
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errors.New("redis client not initialized")
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

func (c *Client) buildKey(parts ...string) string {
	if len(parts) == 0 {
		return keyNamespace
	}
	clean := []string{keyNamespace}
	for _, part := range parts {
		if part == "" {
			continue
		}
		clean = append(clean, strings.TrimSpace(part))
	}
	return strings.Join(clean, ":")
}
