package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/envelope"
)

// Resource is the CRUD client for one REST collection, e.g. /Diets.
type Resource[T domain.Entity] struct {
	client *Client
	path   string
}

// NewResource creates a client for the collection at path.
func NewResource[T domain.Entity](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, path: path}
}

// Path returns the collection path.
func (r *Resource[T]) Path() string {
	return r.path
}

func (r *Resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// List performs GET on the collection and returns the raw body; envelope
// decoding belongs to the store.
func (r *Resource[T]) List(ctx context.Context, filter domain.Filter) ([]byte, error) {
	return r.client.Do(ctx, Request{Method: http.MethodGet, Path: r.path, Query: filter.Values()})
}

// Get performs GET on /{id}.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	raw, err := r.client.Do(ctx, Request{Method: http.MethodGet, Path: r.itemPath(id)})
	if err != nil {
		var zero T
		return zero, err
	}
	return r.entity(raw, "GET "+r.itemPath(id))
}

// Create performs POST on the collection.
func (r *Resource[T]) Create(ctx context.Context, payload T) (T, error) {
	raw, err := r.client.Do(ctx, Request{Method: http.MethodPost, Path: r.path, Body: payload})
	if err != nil {
		var zero T
		return zero, err
	}
	return r.entity(raw, "POST "+r.path)
}

// Update performs PUT on /{id}. When the server confirms without echoing the
// entity under id (empty body, or a body lacking the id) the item is read
// back with GET so callers always hold the stored version.
func (r *Resource[T]) Update(ctx context.Context, id string, payload T) (T, error) {
	raw, err := r.client.Do(ctx, Request{Method: http.MethodPut, Path: r.itemPath(id), Body: payload})
	if err != nil {
		var zero T
		return zero, err
	}
	if len(raw) > 0 {
		if item, err := r.entity(raw, "PUT "+r.itemPath(id)); err == nil && item.Key() == id {
			return item, nil
		}
	}
	return r.Get(ctx, id)
}

// Delete performs DELETE on /{id}.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.client.Do(ctx, Request{Method: http.MethodDelete, Path: r.itemPath(id)})
	return err
}

// Stats performs GET on /stats.
func (r *Resource[T]) Stats(ctx context.Context, filter domain.Filter) (domain.Stats, error) {
	return getStats(ctx, r.client, r.path+"/stats", filter)
}

func (r *Resource[T]) entity(raw []byte, op string) (T, error) {
	item, ok := envelope.Object[T](raw)
	if !ok {
		var zero T
		return zero, domain.NewAppError(domain.CodeRemote, "", fmt.Errorf("%s: unexpected response body", op))
	}
	return item, nil
}

func getStats(ctx context.Context, c *Client, path string, filter domain.Filter) (domain.Stats, error) {
	raw, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: filter.Values()})
	if err != nil {
		return nil, err
	}
	stats, ok := envelope.Object[domain.Stats](raw)
	if !ok {
		return nil, domain.NewAppError(domain.CodeRemote, "", fmt.Errorf("GET %s: unexpected stats body", path))
	}
	return stats, nil
}
