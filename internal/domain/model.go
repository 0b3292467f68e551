package domain

import (
	"net/url"
	"strconv"
	"time"
)

// Entity is any record synchronized from the remote API.
// Key returns the stable identifier used to match items in a store.
type Entity interface {
	Key() string
}

// Readable is implemented by entities that carry a read/unread flag.
type Readable[T any] interface {
	IsRead() bool
	MarkedRead(at time.Time) T
}

// Cloner is implemented by entities that own nested slices or maps.
// Clone returns a copy sharing no mutable memory with the receiver.
type Cloner[T any] interface {
	Clone() T
}

// ID is the numeric identifier used by every remote resource.
type ID int64

// String renders the identifier the way it appears in resource paths.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a path or CLI identifier.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, NewAppError(CodeValidation, "invalid id "+strconv.Quote(s), err)
	}
	return ID(n), nil
}

// Filter holds optional query parameters passed verbatim to list requests.
type Filter map[string]string

// With returns a copy of f with key set to value. Empty values remove the key.
func (f Filter) With(key, value string) Filter {
	out := f.Clone()
	if value == "" {
		delete(out, key)
		return out
	}
	out[key] = value
	return out
}

// Merge returns a copy of f where every default not already present in f is added.
func (f Filter) Merge(defaults Filter) Filter {
	out := make(Filter, len(f)+len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range f {
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of f. A nil filter clones to an empty one.
func (f Filter) Clone() Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Values converts f into URL query values.
func (f Filter) Values() url.Values {
	q := make(url.Values, len(f))
	for k, v := range f {
		q.Set(k, v)
	}
	return q
}

// PaginationInfo mirrors the pagination block of a list response.
// It is never derived from the number of items held locally.
type PaginationInfo struct {
	PageNumber      int  `json:"pageNumber"`
	PageSize        int  `json:"pageSize"`
	TotalCount      int  `json:"totalCount"`
	TotalPages      int  `json:"totalPages"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// Stats is a flat statistics object returned by stats endpoints.
type Stats map[string]any

// Clone returns a shallow copy of s.
func (s Stats) Clone() Stats {
	if s == nil {
		return nil
	}
	out := make(Stats, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
