package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/daniellescalera/user-management/internal/domain/entity"
	handlers "github.com/daniellescalera/user-management/internal/interface/http"
	"github.com/daniellescalera/user-management/internal/interface/middleware"
)

// UserModule wires the role-gated /users routes.
// ADMIN, MANAGER: list, search, get, update, avatar upload
// ADMIN: create, delete
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    middleware.Authorizer
	Redis   redis.Cmdable
}

func NewUserModule(h *handlers.UserHandler, auth middleware.Authorizer, rdb redis.Cmdable) *UserModule {
	return &UserModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	perUser := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil)

	staff := rg.Group("/users", middleware.RequireRoles(m.Auth, entity.StaffRoles), perUser)
	{
		staff.GET("/", m.Handler.List)
		staff.GET("/search", m.Handler.Search)
		staff.GET("/:user_id", m.Handler.Get)
		staff.PUT("/:user_id", m.Handler.Update)
		staff.POST("/:user_id/avatar", m.Handler.UploadAvatar)
	}

	admin := rg.Group("/users", middleware.RequireRoles(m.Auth, entity.AdminOnly), perUser)
	{
		admin.POST("/", m.Handler.Create)
		admin.DELETE("/:user_id", m.Handler.Delete)
	}
}
