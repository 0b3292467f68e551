// Package resource exposes domain stores on the view server: a snapshot of the
// store state plus the hook operations, one route set per domain.
package resource

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/pkg"
	"github.com/simp-lee/coachsync/internal/store"
)

// Operations is the hook surface a Handler drives. *hook.Hook[T] implements it.
type Operations[T domain.Entity] interface {
	State() store.State[T]
	Fetch(ctx context.Context, filter domain.Filter) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, payload T) (T, error)
	Update(ctx context.Context, id string, payload T) (T, error)
	Delete(ctx context.Context, id string) error
	FetchStats(ctx context.Context, filter domain.Filter) (domain.Stats, error)
}

// MatchFunc decides whether item passes the view query.
type MatchFunc[T domain.Entity] func(item T, q pkg.ViewQuery) bool

// Handler serves one domain store.
type Handler[T domain.Entity] struct {
	ops    Operations[T]
	match  MatchFunc[T]
	remote []string
}

// NewHandler creates a Handler. A nil match keeps every item.
func NewHandler[T domain.Entity](ops Operations[T], match MatchFunc[T]) *Handler[T] {
	return &Handler[T]{ops: ops, match: match}
}

// ServerFilters marks view keys (category, status) the remote API filters
// on. They are forwarded with the list and stats filters and no longer
// narrow the snapshot locally.
func (h *Handler[T]) ServerFilters(keys ...string) *Handler[T] {
	h.remote = append(h.remote, keys...)
	return h
}

// Snapshot handles GET /api/v1/<domain>. The q, category and status query
// parameters narrow Items locally; pagination stays as the server sent it.
func (h *Handler[T]) Snapshot(c *gin.Context) {
	pkg.Success(c, h.view(c))
}

// Refresh handles POST /api/v1/<domain>/refresh. Query parameters other than
// the local view ones are forwarded as the remote list filter.
func (h *Handler[T]) Refresh(c *gin.Context) {
	if _, err := h.ops.Fetch(c.Request.Context(), pkg.ParseFilter(c, h.remote...)); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, h.view(c))
}

// Stats handles GET /api/v1/<domain>/stats.
func (h *Handler[T]) Stats(c *gin.Context) {
	stats, err := h.ops.FetchStats(c.Request.Context(), pkg.ParseFilter(c, h.remote...))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, stats)
}

// Get handles GET /api/v1/<domain>/:id and selects the item.
func (h *Handler[T]) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.ops.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, item)
}

// Create handles POST /api/v1/<domain>.
func (h *Handler[T]) Create(c *gin.Context) {
	var payload T
	if !pkg.BindJSON(c, &payload) {
		return
	}
	item, err := h.ops.Create(c.Request.Context(), payload)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, item)
}

// Update handles PUT /api/v1/<domain>/:id.
func (h *Handler[T]) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var payload T
	if !pkg.BindJSON(c, &payload) {
		return
	}
	item, err := h.ops.Update(c.Request.Context(), id, payload)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, item)
}

// Delete handles DELETE /api/v1/<domain>/:id.
func (h *Handler[T]) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ops.Delete(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

func (h *Handler[T]) view(c *gin.Context) store.State[T] {
	state := h.ops.State()
	q := pkg.ParseViewQuery(c).Without(h.remote...)
	if h.match == nil || q.Empty() {
		return state
	}
	state.Items = store.Visible(state, func(item T) bool { return h.match(item, q) })
	return state
}

// pathID reads and validates a numeric path parameter, answering 400 itself
// when it is malformed.
func pathID(c *gin.Context, name string) (string, bool) {
	id, err := domain.ParseID(c.Param(name))
	if err != nil {
		pkg.Error(c, err)
		return "", false
	}
	return id.String(), true
}
