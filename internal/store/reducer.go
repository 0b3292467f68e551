// Package store implements the per-domain state container: a pure reducer over
// a closed set of actions, and a Store that serializes dispatches and notifies
// subscribers.
package store

import (
	"maps"
	"slices"
	"time"

	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/envelope"
)

// State is the in-memory copy of one domain plus its UI-facing metadata.
// Items holds at most one entry per key.
type State[T domain.Entity] struct {
	Items      []T                    `json:"items"`
	Selected   *T                     `json:"selected"`
	Filters    domain.Filter          `json:"filters"`
	Pagination *domain.PaginationInfo `json:"pagination"`
	Stats      domain.Stats           `json:"stats,omitempty"`
	Loading    map[LoadingKey]bool    `json:"loading"`
	Error      string                 `json:"error"`
}

// NewState returns an empty state with non-nil collections.
func NewState[T domain.Entity]() State[T] {
	return State[T]{
		Items:   []T{},
		Filters: domain.Filter{},
		Loading: map[LoadingKey]bool{},
	}
}

// Clone returns a copy of s that shares no slices or maps with it. Items
// implementing domain.Cloner are copied through Clone, so their nested
// collections are not shared either.
func (s State[T]) Clone() State[T] {
	out := s
	out.Items = make([]T, len(s.Items))
	for i, item := range s.Items {
		out.Items[i] = cloneItem(item)
	}
	if s.Selected != nil {
		sel := cloneItem(*s.Selected)
		out.Selected = &sel
	}
	out.Filters = s.Filters.Clone()
	if s.Pagination != nil {
		p := *s.Pagination
		out.Pagination = &p
	}
	out.Stats = s.Stats.Clone()
	out.Loading = maps.Clone(s.Loading)
	if out.Loading == nil {
		out.Loading = map[LoadingKey]bool{}
	}
	return out
}

func cloneItem[T domain.Entity](item T) T {
	if c, ok := any(item).(domain.Cloner[T]); ok {
		return c.Clone()
	}
	return item
}

// IsLoading reports whether any operation is in flight.
func (s State[T]) IsLoading() bool {
	for _, v := range s.Loading {
		if v {
			return true
		}
	}
	return false
}

// Find returns the item with the given key.
func (s State[T]) Find(key string) (T, bool) {
	for _, item := range s.Items {
		if item.Key() == key {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Visible narrows Items with a local predicate. Pagination is left as the
// server reported it, so counts may exceed len(Visible(...)).
func Visible[T domain.Entity](s State[T], keep func(T) bool) []T {
	out := make([]T, 0, len(s.Items))
	for _, item := range s.Items {
		if keep == nil || keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Placement controls where AddItem inserts new entities.
type Placement int

const (
	Append Placement = iota
	Prepend
)

// Reducer applies actions to a State. It is pure: inputs are never mutated.
type Reducer[T domain.Entity] struct {
	Placement Placement
	// Keys are the envelope wrapper keys probed by SetItems.
	Keys []string
}

// Reduce returns the state that results from applying a to s.
func (r Reducer[T]) Reduce(s State[T], a Action[T]) State[T] {
	switch act := a.(type) {
	case SetLoading[T]:
		s.Loading = maps.Clone(s.Loading)
		if s.Loading == nil {
			s.Loading = map[LoadingKey]bool{}
		}
		s.Loading[act.Key] = act.Value
	case SetItems[T]:
		keys := act.Keys
		if len(keys) == 0 {
			keys = r.Keys
		}
		s.Items = dedupe(envelope.Items[T](act.Payload, keys...))
	case ReplaceItems[T]:
		s.Items = dedupe(slices.Clone(act.Items))
	case AddItem[T]:
		s.Items = r.add(s.Items, act.Item)
	case UpdateItem[T]:
		key := act.Item.Key()
		if i := indexOf(s.Items, key); i >= 0 {
			s.Items = slices.Clone(s.Items)
			s.Items[i] = act.Item
		}
		if s.Selected != nil && (*s.Selected).Key() == key {
			item := act.Item
			s.Selected = &item
		}
	case DeleteItem[T]:
		if i := indexOf(s.Items, act.Key); i >= 0 {
			s.Items = slices.Delete(slices.Clone(s.Items), i, i+1)
		}
		if s.Selected != nil && (*s.Selected).Key() == act.Key {
			s.Selected = nil
		}
	case SetError[T]:
		s.Error = act.Message
	case SetSelected[T]:
		if act.Item == nil {
			s.Selected = nil
		} else {
			item := *act.Item
			s.Selected = &item
		}
	case SetFilters[T]:
		s.Filters = act.Filters.Clone()
	case SetStats[T]:
		s.Stats = act.Stats.Clone()
	case SetPagination[T]:
		if act.Pagination == nil {
			s.Pagination = nil
		} else {
			p := *act.Pagination
			s.Pagination = &p
		}
	case MarkRead[T]:
		if i := indexOf(s.Items, act.Key); i >= 0 {
			s.Items = slices.Clone(s.Items)
			s.Items[i] = markReadAt(s.Items[i], act.At)
		}
		if s.Selected != nil && (*s.Selected).Key() == act.Key {
			item := markReadAt(*s.Selected, act.At)
			s.Selected = &item
		}
	case MarkAllRead[T]:
		items := make([]T, len(s.Items))
		for i, item := range s.Items {
			items[i] = markReadAt(item, act.At)
		}
		s.Items = items
		if s.Selected != nil {
			item := markReadAt(*s.Selected, act.At)
			s.Selected = &item
		}
	}
	return s
}

func (r Reducer[T]) add(items []T, item T) []T {
	if i := indexOf(items, item.Key()); i >= 0 {
		out := slices.Clone(items)
		out[i] = item
		return out
	}
	out := make([]T, 0, len(items)+1)
	if r.Placement == Prepend {
		out = append(out, item)
		return append(out, items...)
	}
	out = append(out, items...)
	return append(out, item)
}

func markReadAt[T domain.Entity](item T, at time.Time) T {
	if rd, ok := any(item).(domain.Readable[T]); ok {
		return rd.MarkedRead(at)
	}
	return item
}

func indexOf[T domain.Entity](items []T, key string) int {
	for i, item := range items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// dedupe keeps the first position of each key with the last value seen for it.
func dedupe[T domain.Entity](items []T) []T {
	pos := make(map[string]int, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		key := item.Key()
		if i, ok := pos[key]; ok {
			out[i] = item
			continue
		}
		pos[key] = len(out)
		out = append(out, item)
	}
	return out
}
