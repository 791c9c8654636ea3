package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"jannypos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ── General API rate limiter ──────────────────────────────────────────────────

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter is an in-process per-IP limiter. Entries are kept in a map that
// Purge (run by StartPurge) trims periodically.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*rateEntry
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		entries: make(map[string]*rateEntry),
	}
}

// allow counts one request for key and reports whether it is within the limit,
// plus the end of the current window.
func (l *RateLimiter) allow(key string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// Handler returns the gin middleware. A non-positive limit disables it.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit <= 0 {
			c.Next()
			return
		}
		ok, windowEnd := l.allow(c.ClientIP())
		if !ok {
			retry := int(time.Until(windowEnd).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// Purge removes expired entries and returns how many were dropped.
func (l *RateLimiter) Purge() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	purged := 0
	for ip, e := range l.entries {
		if now.After(e.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	return purged
}

const purgeInterval = 5 * time.Minute

// StartPurge trims the map every few minutes until ctx is cancelled.
func (l *RateLimiter) StartPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := l.Purge(); n > 0 {
					log.Debug().Int("entries_purged", n).Msg("rate limiter map purged")
				}
			}
		}
	}()
}

// ── Cancellation PIN attempt limiter ──────────────────────────────────────────
// Counts failed PIN attempts per client IP in Redis so the limit holds across
// instances. A 401 from the handler increments the counter; a 2xx clears it.
// Redis errors fail open: the PIN itself is still checked.

const pinAttemptPrefix = "pin_attempts:"

func PINAttemptLimiter(rdb *redis.Client, maxAttempts int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || maxAttempts <= 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := pinAttemptPrefix + c.ClientIP()

		n, err := rdb.Get(ctx, key).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("pin limiter: redis unavailable")
		}
		if n >= maxAttempts {
			ttl, err := rdb.TTL(ctx, key).Result()
			if err == nil && ttl < 0 {
				// counter lost its expiry; give it one so the block ends
				ttl = window
				expirePINKey(ctx, rdb, key, window)
			}
			if err == nil && ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiados intentos de PIN. Intente más tarde."))
			return
		}

		c.Next()

		switch status := c.Writer.Status(); {
		case status == http.StatusUnauthorized:
			pipe := rdb.TxPipeline()
			pipe.Incr(ctx, key)
			ttl := pipe.TTL(ctx, key)
			if _, err := pipe.Exec(ctx); err != nil {
				log.Warn().Err(err).Msg("pin limiter: could not record attempt")
				return
			}
			if ttl.Val() < 0 {
				expirePINKey(ctx, rdb, key, window)
			}
		case status >= 200 && status < 300:
			_ = rdb.Del(ctx, key).Err()
		}
	}
}

func expirePINKey(ctx context.Context, rdb *redis.Client, key string, window time.Duration) {
	if err := rdb.Expire(ctx, key, window).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("pin limiter: could not set expiry")
	}
}
