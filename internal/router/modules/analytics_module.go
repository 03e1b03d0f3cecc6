package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/daniellescalera/user-management/internal/interface/http"
	"github.com/daniellescalera/user-management/internal/interface/middleware"
)

// AnalyticsModule serves GET /analytics/retention, public and limited per IP.
type AnalyticsModule struct {
	Handler *handlers.AnalyticsHandler
	Redis   redis.Cmdable
	Limit   int
}

func NewAnalyticsModule(h *handlers.AnalyticsHandler, rdb redis.Cmdable, limit int) *AnalyticsModule {
	return &AnalyticsModule{Handler: h, Redis: rdb, Limit: limit}
}

func (m *AnalyticsModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, m.Limit, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/analytics/retention", rl, m.Handler.Retention)
}
