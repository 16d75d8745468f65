package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/iliyamo/filmorate/internal/config"
	"github.com/iliyamo/filmorate/internal/logger"
	"github.com/iliyamo/filmorate/internal/metrics"
)

// NewRateLimiter picks the limiter backend: the shared Redis token bucket
// when a client is available, otherwise a per-process bucket with the
// same parameters. Disabled config yields a pass-through.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return passThrough
	}
	if rdb == nil {
		return NewLocalTokenBucket(cfg)
	}
	return NewTokenBucket(cfg, rdb)
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

var limiterScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// NewTokenBucket limits requests with a token bucket kept in Redis so all
// instances share one budget per key. Redis errors let the request
// through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL / time.Second),
			}

			vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
			if err != nil {
				if cfg.Debug {
					logger.Warn("ratelimit: redis error", "key", key, "error", err)
				}
				return next(c)
			}

			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 3 {
				if cfg.Debug {
					logger.Warn("ratelimit: unexpected script result", "key", key, "result", fmt.Sprintf("%#v", vals))
				}
				return next(c)
			}
			allowed := asInt64(arr[0]) == 1
			remaining := asInt64(arr[1])
			retry := time.Duration(asInt64(arr[2])) * time.Millisecond

			setLimitHeaders(c, cfg.Capacity, remaining)
			if !allowed {
				if cfg.Debug {
					logger.Info("ratelimit: block", "key", key, "remaining", remaining, "retry", retry.String())
				}
				metrics.RecordRateLimited("redis")
				return tooManyRequests(c, retry)
			}
			if cfg.Debug {
				c.Response().Header().Set("X-RateLimit-Key", key)
			}
			return next(c)
		}
	}
}

// localBuckets holds one golang.org/x/time/rate limiter per key. Idle
// buckets are dropped after cfg.TTL.
type localBuckets struct {
	mu      sync.Mutex
	cfg     config.RateLimitConfig
	buckets map[string]*localBucket
	lastGC  time.Time
}

type localBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewLocalTokenBucket limits requests per key inside this process. It is
// the fallback when Redis is not reachable at startup.
func NewLocalTokenBucket(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	lb := &localBuckets{cfg: cfg, buckets: make(map[string]*localBucket), lastGC: time.Now()}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			lim := lb.get(key, time.Now())

			res := lim.Reserve()
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				setLimitHeaders(c, cfg.Capacity, 0)
				metrics.RecordRateLimited("local")
				return tooManyRequests(c, delay)
			}
			setLimitHeaders(c, cfg.Capacity, int64(lim.Tokens()))
			return next(c)
		}
	}
}

func (lb *localBuckets) get(key string, now time.Time) *rate.Limiter {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if now.Sub(lb.lastGC) > lb.cfg.TTL {
		for k, b := range lb.buckets {
			if now.Sub(b.seen) > lb.cfg.TTL {
				delete(lb.buckets, k)
			}
		}
		lb.lastGC = now
	}
	b, ok := lb.buckets[key]
	if !ok {
		every := lb.cfg.RefillInterval / time.Duration(lb.cfg.RefillTokens)
		b = &localBucket{lim: rate.NewLimiter(rate.Every(every), lb.cfg.Capacity)}
		lb.buckets[key] = b
	}
	b.seen = now
	return b.lim
}

func setLimitHeaders(c echo.Context, capacity int, remaining int64) {
	if remaining < 0 {
		remaining = 0
	}
	c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(capacity))
	c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
}

func tooManyRequests(c echo.Context, retry time.Duration) error {
	secs := int(math.Ceil(retry.Seconds()))
	if secs < 0 {
		secs = 0
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
	return c.JSON(http.StatusTooManyRequests, map[string]any{
		"error":       "TOO_MANY_REQUESTS",
		"message":     "rate limit exceeded",
		"retry_after": secs,
	})
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := rateUser(c)
	route := c.Request().Method + " " + c.Path()

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", uid, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
