package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/daniellescalera/user-management/internal/interface/http"
	"github.com/daniellescalera/user-management/internal/interface/middleware"
)

// AuthModule serves the public account routes:
// POST /register/, POST /login/, POST /logout/, GET /verify-email/:user_id/:token
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   redis.Cmdable
	Limit   int // requests per minute per IP and path
}

func NewAuthModule(h *handlers.AuthHandler, rdb redis.Cmdable, limit int) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb, Limit: limit}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(m.Redis, m.Limit, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/register/", limiter, m.Handler.Register)
	rg.POST("/login/", limiter, m.Handler.Login)
	rg.GET("/verify-email/:user_id/:token", limiter, m.Handler.VerifyEmail)
	rg.POST("/logout/", m.Handler.Logout)
}
