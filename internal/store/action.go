package store

import (
	"encoding/json"
	"time"

	"github.com/simp-lee/coachsync/internal/domain"
)

// LoadingKey names an operation whose in-flight state is tracked.
type LoadingKey string

// Loading keys shared by every domain. Domains may define more.
const (
	Fetching  LoadingKey = "fetching"
	Creating  LoadingKey = "creating"
	Updating  LoadingKey = "updating"
	Deleting  LoadingKey = "deleting"
	Selecting LoadingKey = "selecting"
	LoadStats LoadingKey = "stats"
)

// Action is the closed set of state transitions a Reducer understands.
// The unexported method seals the set to this package.
type Action[T domain.Entity] interface {
	action()
}

// SetLoading sets Loading[Key] = Value.
type SetLoading[T domain.Entity] struct {
	Key   LoadingKey
	Value bool
}

// SetItems replaces Items with the list decoded from a raw list response.
type SetItems[T domain.Entity] struct {
	Payload json.RawMessage
	// Keys overrides the wrapper keys probed while decoding.
	Keys []string
}

// ReplaceItems replaces Items with an already-decoded list.
type ReplaceItems[T domain.Entity] struct {
	Items []T
}

// AddItem inserts a newly created entity.
type AddItem[T domain.Entity] struct {
	Item T
}

// UpdateItem replaces the item with the same key.
type UpdateItem[T domain.Entity] struct {
	Item T
}

// DeleteItem removes the item with the given key.
type DeleteItem[T domain.Entity] struct {
	Key string
}

// SetError sets the last error. An empty Message clears it.
type SetError[T domain.Entity] struct {
	Message string
}

// SetSelected replaces Selected. A nil Item clears it.
type SetSelected[T domain.Entity] struct {
	Item *T
}

// SetFilters replaces Filters.
type SetFilters[T domain.Entity] struct {
	Filters domain.Filter
}

// SetStats replaces Stats.
type SetStats[T domain.Entity] struct {
	Stats domain.Stats
}

// SetPagination replaces Pagination.
type SetPagination[T domain.Entity] struct {
	Pagination *domain.PaginationInfo
}

// MarkRead flags a single readable item as read.
type MarkRead[T domain.Entity] struct {
	Key string
	At  time.Time
}

// MarkAllRead flags every item in the store as read, whatever filters are active.
type MarkAllRead[T domain.Entity] struct {
	At time.Time
}

func (SetLoading[T]) action()    {}
func (SetItems[T]) action()      {}
func (ReplaceItems[T]) action()  {}
func (AddItem[T]) action()       {}
func (UpdateItem[T]) action()    {}
func (DeleteItem[T]) action()    {}
func (SetError[T]) action()      {}
func (SetSelected[T]) action()   {}
func (SetFilters[T]) action()    {}
func (SetStats[T]) action()      {}
func (SetPagination[T]) action() {}
func (MarkRead[T]) action()      {}
func (MarkAllRead[T]) action()   {}
