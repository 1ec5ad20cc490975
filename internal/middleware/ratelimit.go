package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// RateLimit returns a fixed-window per-user rate limiter backed by
// Redis, applied to the reserve endpoint so one user cannot hammer
// the seat pool.  The window is one minute; limit is the number of
// requests allowed per window.  When rdb is nil or limit is zero the
// middleware is a no-op, and a Redis error lets the request through:
// reservations must not be hostage to the limiter's backing store.
func RateLimit(rdb *redis.Client, limit int) echo.MiddlewareFunc {
	if rdb == nil || limit <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	const window = time.Minute
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := "guest"
			if v := c.Get("user_id"); v != nil {
				id = fmt.Sprint(v)
			}
			key := fmt.Sprintf("ratelimit:reserve:%s:%d", id, time.Now().Unix()/int64(window.Seconds()))

			ctx := c.Request().Context()
			count, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if count == 1 {
				_ = rdb.Expire(ctx, key, window).Err()
			}
			if count > int64(limit) {
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":   "too many requests",
					"message": fmt.Sprintf("limit of %d reservation requests per minute reached", limit),
				})
			}
			return next(c)
		}
	}
}
