package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"userdir/internal/core/telemetry"
	"userdir/pkg/config"
	. "userdir/pkg/tracing"
)

const defaultLimitKey = "default"

type RateLimitEndpointConfig struct {
	Requests int
	Window   time.Duration
	KeyFunc  func(*gin.Context) string
}

// RateLimiter is a fixed-window counter per client and route group, held
// in an expiring in-memory cache.
type RateLimiter struct {
	cache   *cache.Cache
	config  map[string]RateLimitEndpointConfig
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
	mutex   sync.RWMutex
}

type RateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

func NewRateLimiter(limits map[string]config.RateLimitConfig, logger *zap.Logger, metrics *telemetry.AppMetrics) *RateLimiter {
	rl := &RateLimiter{
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		config:  make(map[string]RateLimitEndpointConfig, len(limits)+1),
		logger:  logger,
		metrics: metrics,
	}

	rl.SetConfig(defaultLimitKey, RateLimitEndpointConfig{Requests: 60, Window: time.Minute})

	for prefix, limit := range limits {
		cfg := RateLimitEndpointConfig{Requests: limit.Requests, Window: limit.Window}
		if prefix == "/sessions" {
			cfg.KeyFunc = getSessionID
		}

		rl.SetConfig(prefix, cfg)
	}

	return rl
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		group := routeGroup(path)
		cfg := rl.lookup(c.Request.Method+" "+path, group)
		key := rl.generateKey(c, group, cfg.KeyFunc)

		allowed, remaining, resetTime := rl.checkRateLimit(key, cfg)

		keyType := "ip"
		if strings.Contains(key, "session_") {
			keyType = "session"
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			rl.metrics.RecordRateLimitHit(c.Request.Context(), group, keyType)

			AddSpanEvent(trace.SpanFromContext(c.Request.Context()), "rate_limit.exceeded", []attribute.KeyValue{
				attribute.String("rate_limit.group", group),
				attribute.String("rate_limit.key_type", keyType),
				attribute.Int("rate_limit.limit", cfg.Requests),
			})

			rl.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", path),
				zap.Int("limit", cfg.Requests),
				zap.Duration("window", cfg.Window))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     fmt.Sprintf("Too many requests. Limit: %d per %v", cfg.Requests, cfg.Window),
				"retry_after": int(time.Until(resetTime).Seconds()),
			})
			c.Abort()
			return
		}

		rl.metrics.RecordRateLimitAllowed(c.Request.Context(), group, keyType)

		c.Next()
	}
}

func (rl *RateLimiter) lookup(methodPath, group string) RateLimitEndpointConfig {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	if cfg, ok := rl.config[methodPath]; ok {
		return cfg
	}

	if cfg, ok := rl.config[group]; ok {
		return cfg
	}

	return rl.config[defaultLimitKey]
}

func (rl *RateLimiter) checkRateLimit(key string, cfg RateLimitEndpointConfig) (bool, int, time.Time) {
	now := time.Now()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if entry, found := rl.cache.Get(key); found {
		rateLimitEntry := entry.(RateLimitEntry)

		if now.Before(rateLimitEntry.ResetTime) {
			if rateLimitEntry.Count >= cfg.Requests {
				return false, 0, rateLimitEntry.ResetTime
			}

			rateLimitEntry.Count++
			rl.cache.Set(key, rateLimitEntry, time.Until(rateLimitEntry.ResetTime))

			return true, cfg.Requests - rateLimitEntry.Count, rateLimitEntry.ResetTime
		}
	}

	resetTime := now.Add(cfg.Window)
	rl.cache.Set(key, RateLimitEntry{Count: 1, ResetTime: resetTime}, cfg.Window)

	return true, cfg.Requests - 1, resetTime
}

// routeGroup reduces "/sessions/:sid/draft" to "/sessions".
func routeGroup(path string) string {
	parts := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)
	return "/" + parts[0]
}

func (rl *RateLimiter) generateKey(c *gin.Context, group string, keyFunc func(*gin.Context) string) string {
	return fmt.Sprintf("rate_limit:%s:%s", group, keyFunc(c))
}

func getSessionID(c *gin.Context) string {
	if sid := c.Param("sid"); sid != "" {
		return "session_" + sid
	}
	return GetClientIP(c)
}

func (rl *RateLimiter) SetConfig(path string, cfg RateLimitEndpointConfig) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if cfg.KeyFunc == nil {
		cfg.KeyFunc = GetClientIP
	}

	rl.config[path] = cfg
}

// GetStats reports the number of live counters and configured limits.
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	return map[string]interface{}{
		"active_entries": rl.cache.ItemCount(),
		"configs":        len(rl.config),
	}
}
