package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/daniellescalera/user-management/internal/domain/entity"
	handlers "github.com/daniellescalera/user-management/internal/interface/http"
	"github.com/daniellescalera/user-management/internal/interface/middleware"
)

// EmailModule exposes POST /users/:user_id/verification-email to staff.
type EmailModule struct {
	Handler *handlers.EmailHandler
	Auth    middleware.Authorizer
	Redis   redis.Cmdable
}

func NewEmailModule(h *handlers.EmailHandler, auth middleware.Authorizer, rdb redis.Cmdable) *EmailModule {
	return &EmailModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *EmailModule) Register(rg *gin.RouterGroup) {
	rg.POST("/users/:user_id/verification-email",
		middleware.RequireRoles(m.Auth, entity.StaffRoles),
		middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByUserID(), nil),
		m.Handler.ResendVerification,
	)
}
