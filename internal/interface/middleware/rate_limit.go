package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/daniellescalera/user-management/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString(RealIPKey); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath limits by client IP and route pattern
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// KeyByUserID limits by the authenticated user, or by IP for anonymous callers.
// It must run after RequireRoles to see the user.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			return "rl:user:anon:ip:" + ipFromCtx(c)
		}
		return "rl:user:" + uid
	}
}

// hitScript counts a request in the current window and starts the window on
// the first hit. It returns the count and the window's remaining milliseconds.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// AllowFunc reports whether a request bypasses the limiter.
type AllowFunc func(*gin.Context) bool

// window is the limiter state for one key after counting a request.
type window struct {
	count int
	reset time.Duration
}

func hit(c *gin.Context, rdb redis.Cmdable, key string, size time.Duration) (window, error) {
	res, err := hitScript.Run(c.Request.Context(), rdb, []string{key}, size.Milliseconds()).Slice()
	if err != nil {
		return window{}, err
	}
	w := window{}
	if len(res) > 0 {
		w.count = toInt(res[0])
	}
	if len(res) > 1 {
		if ms := toInt(res[1]); ms > 0 {
			w.reset = time.Duration(ms) * time.Millisecond
		}
	}
	return w, nil
}

// resetSeconds rounds the remaining window up to whole seconds.
func (w window) resetSeconds() int {
	return int((w.reset + time.Second - 1) / time.Second)
}

// RateLimit allows limit requests per key and window, tracked in Redis, and
// reports X-RateLimit-* headers. A nil client disables it; Redis errors fail open.
func RateLimit(rdb redis.Cmdable, limit int, size time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || limit <= 0 || size <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}

		w, err := hit(c, rdb, keyFn(c), size)
		if err != nil {
			c.Next()
			return
		}

		reset := w.resetSeconds()
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(0, limit-w.count)))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))
		if w.count <= limit {
			c.Next()
			return
		}

		// https://datatracker.ietf.org/doc/html/rfc6585#section-4
		if reset > 0 {
			c.Header("Retry-After", strconv.Itoa(reset))
		}
		response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
		c.Abort()
	}
}

func toInt(v any) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
