package router

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Module is one feature area (auth, users, email, analytics, debug). Register
// adds its routes and their middleware to the API group.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects modules and mounts them under one prefix.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

// NewRegistry mounts modules at prefix; an empty prefix serves them from the root.
func NewRegistry(engine *gin.Engine, prefix string) *Registry {
	api := engine.Group("/" + strings.Trim(prefix, "/"))
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod ...Module) {
	r.modules = append(r.modules, mod...)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
