package resource

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/coachsync/internal/domain"
)

// Module implements app.Module for one domain collection.
type Module[T domain.Entity] struct {
	path    string
	handler *Handler[T]
	extra   []func(*gin.RouterGroup)
}

// NewModule mounts handler under /<path>. Panics if handler is nil or path is
// empty.
func NewModule[T domain.Entity](path string, handler *Handler[T]) *Module[T] {
	path = strings.Trim(path, "/")
	if path == "" {
		panic("resource.NewModule: path must not be empty")
	}
	if handler == nil {
		panic("resource.NewModule: handler must not be nil")
	}
	return &Module[T]{path: path, handler: handler}
}

// With adds routes registered on the module's group after the CRUD routes.
func (m *Module[T]) With(register func(*gin.RouterGroup)) *Module[T] {
	m.extra = append(m.extra, register)
	return m
}

// Path returns the collection path without slashes.
func (m *Module[T]) Path() string {
	return m.path
}

// RegisterRoutes registers the collection routes.
func (m *Module[T]) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/" + m.path)
	g.GET("", m.handler.Snapshot)
	g.POST("", m.handler.Create)
	g.POST("/refresh", m.handler.Refresh)
	g.GET("/stats", m.handler.Stats)
	g.GET("/:id", m.handler.Get)
	g.PUT("/:id", m.handler.Update)
	g.DELETE("/:id", m.handler.Delete)

	for _, register := range m.extra {
		register(g)
	}
}
