// Package router mounts handler route registrars onto the gin engine.
package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by handlers that own a set of routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them in one pass: API handlers
// under the versioned prefix, system handlers (health) at the root.
type Router struct {
	engine  *gin.Engine
	version string
	api     []RouteRegistrar
	system  []RouteRegistrar
}

// New creates a Router for the given engine and API version ("v1")
func New(engine *gin.Engine, version string) *Router {
	return &Router{
		engine:  engine,
		version: version,
	}
}

// Register mounts registrars under /api/<version>
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.api = append(r.api, registrars...)
	return r
}

// RegisterSystem mounts registrars at the engine root, outside the
// versioned prefix
func (r *Router) RegisterSystem(registrars ...RouteRegistrar) *Router {
	r.system = append(r.system, registrars...)
	return r
}

// Setup wires every collected registrar onto the engine
func (r *Router) Setup() {
	root := r.engine.Group("")
	for _, registrar := range r.system {
		registrar.RegisterRoutes(root)
	}

	api := r.engine.Group("/api/" + r.version)
	for _, registrar := range r.api {
		registrar.RegisterRoutes(api)
	}
}
