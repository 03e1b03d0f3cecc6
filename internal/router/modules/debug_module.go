package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/daniellescalera/user-management/internal/interface/middleware"
)

// DebugModule serves expvar counters to loopback and private-network callers.
type DebugModule struct {
	Redis redis.Cmdable
}

func NewDebugModule(rdb redis.Cmdable) *DebugModule { return &DebugModule{Redis: rdb} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/debug/vars", middleware.Only(middleware.AllowPrivateIP()), rl, gin.WrapH(expvar.Handler()))
}
