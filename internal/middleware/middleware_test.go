package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func do(r http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := do(r, http.MethodGet, "/x", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	w = do(r, http.MethodGet, "/x", map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRecovery_Returns500JSON(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := do(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Error interno del servidor"}`, w.Body.String())
}

func TestErrorHandler_HidesInternalError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/err", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := do(r, http.MethodGet, "/err", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://pos.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/x", map[string]string{"Origin": "https://pos.example.com"})
	assert.Equal(t, "https://pos.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/x", map[string]string{"Origin": "https://evil.example.com"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodOptions, "/x", map[string]string{"Origin": "https://pos.example.com"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/x", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(false))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(2, time.Minute)
	r := gin.New()
	r.Use(l.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", nil).Code)
	w := do(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_PurgeAndWindowReset(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	ok, _ := l.allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1")
	assert.False(t, ok)
	assert.Equal(t, 0, l.Purge())

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, l.Purge())
	ok, _ = l.allow("1.1.1.1")
	assert.True(t, ok)
}

func newPINRouter(t *testing.T, max int) (*gin.Engine, *miniredis.Miniredis, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	status := http.StatusUnauthorized
	r := gin.New()
	r.POST("/cancel", PINAttemptLimiter(rdb, max, time.Minute), func(c *gin.Context) {
		c.Status(status)
	})
	return r, mr, &status
}

func TestPINAttemptLimiter_BlocksAfterFailures(t *testing.T) {
	r, mr, _ := newPINRouter(t, 2)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/cancel", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/cancel", nil).Code)
	w := do(r, http.MethodPost, "/cancel", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// window expiry clears the block
	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/cancel", nil).Code)
}

func TestPINAttemptLimiter_CounterAlwaysExpires(t *testing.T) {
	r, mr, _ := newPINRouter(t, 2)
	const key = "pin_attempts:192.0.2.1"

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/cancel", nil).Code)
	assert.Equal(t, time.Minute, mr.TTL(key))

	// a counter left without a TTL gets one on the next failure
	require.NoError(t, mr.Set(key, "1"))
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/cancel", nil).Code)
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestPINAttemptLimiter_StuckBlockHeals(t *testing.T) {
	r, mr, _ := newPINRouter(t, 2)
	const key = "pin_attempts:192.0.2.1"
	require.NoError(t, mr.Set(key, "2"))

	w := do(r, http.MethodPost, "/cancel", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/cancel", nil).Code)
}

func TestPINAttemptLimiter_SuccessClearsCounter(t *testing.T) {
	r, mr, status := newPINRouter(t, 2)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/cancel", nil).Code)
	require.True(t, mr.Exists("pin_attempts:192.0.2.1"))

	*status = http.StatusOK
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/cancel", nil).Code)
	assert.False(t, mr.Exists("pin_attempts:192.0.2.1"))
}

func TestPINAttemptLimiter_NilRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.POST("/cancel", PINAttemptLimiter(nil, 1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusUnauthorized)
	})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/cancel", nil).Code)
	}
}
