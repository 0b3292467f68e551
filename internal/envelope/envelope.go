// Package envelope decodes list responses whose payload may be a bare JSON
// array or an object wrapping the array under one of several keys.
//
// Decoding never fails: an unrecognized or malformed payload yields an empty
// list with ShapeUnknown.
package envelope

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/simp-lee/coachsync/internal/domain"
)

// Shape identifies which variant of the list response was recognized.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeArray
	ShapeWrapped
)

// String implements fmt.Stringer.
func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeWrapped:
		return "wrapped"
	default:
		return "unknown"
	}
}

// DefaultKeys lists the wrapper keys probed, in order, when no keys are given.
var DefaultKeys = []string{"results", "items", "data", "content", "result"}

// List is a decoded list response.
type List[T any] struct {
	Shape      Shape
	Key        string
	Items      []T
	Pagination *domain.PaginationInfo
}

// Decode parses raw into a List. keys overrides DefaultKeys; domain-specific
// wrappers (e.g. "clients") are passed by the caller.
func Decode[T any](raw []byte, keys ...string) List[T] {
	out := List[T]{Items: []T{}}
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return out
	}
	if len(keys) == 0 {
		keys = DefaultKeys
	}

	root := gjson.ParseBytes(raw)
	switch {
	case root.IsArray():
		out.Shape = ShapeArray
		out.Items = decodeArray[T](root)
		return out
	case !root.IsObject():
		return out
	}

	out.Pagination = Pagination(raw)
	for _, key := range keys {
		v := root.Get(key)
		if v.IsArray() {
			out.Shape = ShapeWrapped
			out.Key = key
			out.Items = decodeArray[T](v)
			return out
		}
		// One level of nesting, e.g. {"data": {"items": [...], "totalCount": 3}}.
		if v.IsObject() {
			for _, inner := range keys {
				iv := v.Get(inner)
				if !iv.IsArray() {
					continue
				}
				out.Shape = ShapeWrapped
				out.Key = key + "." + inner
				out.Items = decodeArray[T](iv)
				if out.Pagination == nil {
					out.Pagination = Pagination([]byte(v.Raw))
				}
				return out
			}
		}
	}
	return out
}

// Items is shorthand for Decode(raw, keys...).Items.
func Items[T any](raw []byte, keys ...string) []T {
	return Decode[T](raw, keys...).Items
}

// decodeArray unmarshals each element on its own so one malformed element
// does not discard the rest.
func decodeArray[T any](arr gjson.Result) []T {
	items := make([]T, 0)
	arr.ForEach(func(_, value gjson.Result) bool {
		var item T
		if err := json.Unmarshal([]byte(value.Raw), &item); err == nil {
			items = append(items, item)
		}
		return true
	})
	return items
}

// Pagination extracts pagination metadata from a wrapped list response.
// It looks at the top level first, then at a nested "pagination" object.
// Returns nil when raw carries no pagination fields.
func Pagination(raw []byte) *domain.PaginationInfo {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil
	}
	if p := paginationFrom(root); p != nil {
		return p
	}
	if nested := root.Get("pagination"); nested.IsObject() {
		return paginationFrom(nested)
	}
	return nil
}

func paginationFrom(obj gjson.Result) *domain.PaginationInfo {
	total := obj.Get("totalCount")
	page := obj.Get("pageNumber")
	if !total.Exists() && !page.Exists() {
		return nil
	}
	return &domain.PaginationInfo{
		PageNumber:      int(page.Int()),
		PageSize:        int(obj.Get("pageSize").Int()),
		TotalCount:      int(total.Int()),
		TotalPages:      int(obj.Get("totalPages").Int()),
		HasPreviousPage: obj.Get("hasPreviousPage").Bool(),
		HasNextPage:     obj.Get("hasNextPage").Bool(),
	}
}

// Object decodes a detail or stats response into T. Detail endpoints return
// the entity directly, but some wrap it under "data" or "result"; an object
// without its own "id" is unwrapped once.
func Object[T any](raw []byte) (T, bool) {
	var zero T
	if !gjson.ValidBytes(raw) {
		return zero, false
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return zero, false
	}
	for _, key := range []string{"data", "result"} {
		if root.Get("id").Exists() {
			break
		}
		if v := root.Get(key); v.IsObject() {
			root = v
			break
		}
	}
	var out T
	if err := json.Unmarshal([]byte(root.Raw), &out); err != nil {
		return zero, false
	}
	return out, true
}
