package router

import (
	"github.com/daniellescalera/user-management/internal/container"
	handlers "github.com/daniellescalera/user-management/internal/interface/http"
	"github.com/daniellescalera/user-management/internal/router/modules"
)

// InitModules builds the handlers from c and adds every feature module to r.
// Call it once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config

	auth := handlers.NewAuthHandler(c.Service, c.Logger, c.Cookies)
	users := handlers.NewUserHandler(c.Service, c.Logger)
	emails := handlers.NewEmailHandler(c.Service, c.Logger)
	analytics := handlers.NewAnalyticsHandler(c.Analytics, c.Logger)

	r.Add(
		modules.NewAuthModule(auth, c.Redis, cfg.AuthRateLimit),
		modules.NewUserModule(users, c.Service, c.Redis),
		modules.NewEmailModule(emails, c.Service, c.Redis),
		modules.NewAnalyticsModule(analytics, c.Redis, cfg.PublicRateLimit),
	)
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}
