package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DependencyCheck pings one backing service for the health endpoint.
type DependencyCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// DatabaseCheck pings the pool behind db.
func DatabaseCheck(db *gorm.DB) DependencyCheck {
	return DependencyCheck{Name: "db", Ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

func RedisCheck(rdb *redis.Client) DependencyCheck {
	return DependencyCheck{Name: "redis", Ping: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

// Health returns a JSON health check response.
// Checks every dependency; never exposes credentials or internals.
//
// @Summary Health check
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router  /api/health [get]
func Health(checks ...DependencyCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		body := gin.H{"ts": time.Now().UTC().Format(time.RFC3339)}
		healthy := true
		for _, chk := range checks {
			state := "connected"
			if err := chk.Ping(ctx); err != nil {
				state = "error"
				healthy = false
			}
			body[chk.Name] = state
		}
		body["ok"] = healthy

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}
