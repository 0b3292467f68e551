// Package hook binds a domain store to its service client and implements the
// operation contract: loading flags, error recording, default filters, the
// authentication precondition and stale-response protection.
package hook

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/coachsync/internal/api"
	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/envelope"
	"github.com/simp-lee/coachsync/internal/store"
)

// Service is the remote CRUD surface a Hook drives. *api.Resource implements it.
type Service[T domain.Entity] interface {
	List(ctx context.Context, filter domain.Filter) ([]byte, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, payload T) (T, error)
	Update(ctx context.Context, id string, payload T) (T, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, filter domain.Filter) (domain.Stats, error)
}

// Observer receives the outcome of every operation.
type Observer interface {
	Observe(domain, op string, elapsed time.Duration, err error)
}

// UnauthorizedFunc is called once for every operation that fails with an
// unauthorized error.
type UnauthorizedFunc func(ctx context.Context, err error)

// Operation names reported to observers and logs.
const (
	OpFetch  = "fetch"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpStats  = "stats"
)

// Fallbacks holds the error messages used when a failure carries none.
type Fallbacks struct {
	Fetch  string
	Get    string
	Create string
	Update string
	Delete string
	Stats  string
}

// DefaultFallbacks builds the standard fallbacks from a domain's singular and
// plural nouns, e.g. ("dieta", "dietas").
func DefaultFallbacks(singular, plural string) Fallbacks {
	return Fallbacks{
		Fetch:  "Erro ao carregar " + plural,
		Get:    "Erro ao carregar " + singular,
		Create: "Erro ao criar " + singular,
		Update: "Erro ao atualizar " + singular,
		Delete: "Erro ao excluir " + singular,
		Stats:  "Erro ao carregar estatísticas de " + plural,
	}
}

// Options configures a Hook.
type Options struct {
	// Name identifies the domain in logs and metrics.
	Name string
	// PageSize is the default pageSize filter. Zero means 20.
	PageSize int
	// Tenant filters are merged into every list and stats request.
	Tenant    domain.Filter
	Placement store.Placement
	// Keys overrides the envelope wrapper keys probed for list responses.
	Keys      []string
	Fallbacks Fallbacks
	// Auth is checked before every remote call when set.
	Auth api.TokenSource
	// Validator checks create and update payloads when set.
	Validator      *validator.Validate
	OnUnauthorized UnauthorizedFunc
	Observer       Observer
	Logger         *slog.Logger
}

// Hook exposes the operations of one domain over its store.
type Hook[T domain.Entity] struct {
	name      string
	store     *store.Store[T]
	svc       Service[T]
	stats     func(context.Context, domain.Filter) (domain.Stats, error)
	keys      []string
	defaults  domain.Filter
	tenant    domain.Filter
	fallbacks Fallbacks

	auth           api.TokenSource
	validate       *validator.Validate
	onUnauthorized UnauthorizedFunc
	observer       Observer
	logger         *slog.Logger

	// seq numbers list fetches; only the latest may write Items.
	seq     atomic.Uint64
	applyMu sync.Mutex

	loadMu  sync.Mutex
	loading map[store.LoadingKey]int
}

// New creates a Hook and its store.
func New[T domain.Entity](svc Service[T], opts Options) *Hook[T] {
	h := newHook[T](opts)
	h.svc = svc
	if svc != nil {
		h.stats = svc.Stats
	}
	return h
}

func newHook[T domain.Entity](opts Options) *Hook[T] {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tenant := opts.Tenant.Clone()
	defaults := tenant.Merge(domain.Filter{
		"page":     "1",
		"pageSize": strconv.Itoa(pageSize),
	})

	return &Hook[T]{
		name:           opts.Name,
		store:          store.New(opts.Name, store.Reducer[T]{Placement: opts.Placement, Keys: opts.Keys}),
		keys:           opts.Keys,
		defaults:       defaults,
		tenant:         tenant,
		fallbacks:      opts.Fallbacks,
		auth:           opts.Auth,
		validate:       opts.Validator,
		onUnauthorized: opts.OnUnauthorized,
		observer:       opts.Observer,
		logger:         logger.With(slog.String("domain", opts.Name)),
		loading:        make(map[store.LoadingKey]int),
	}
}

// Name returns the domain name.
func (h *Hook[T]) Name() string {
	return h.name
}

// Store returns the underlying store.
func (h *Hook[T]) Store() *store.Store[T] {
	return h.store
}

// State returns a snapshot of the store.
func (h *Hook[T]) State() store.State[T] {
	return h.store.Snapshot()
}

// Defaults returns the filters merged into every list request.
func (h *Hook[T]) Defaults() domain.Filter {
	return h.defaults.Clone()
}

// Fetch loads a page of items. Caller filters override the defaults. A
// response that arrives after a newer Fetch was issued is returned to the
// caller but not applied to the store.
func (h *Hook[T]) Fetch(ctx context.Context, filter domain.Filter) ([]T, error) {
	merged := filter.Merge(h.defaults)
	return h.fetchList(ctx, OpFetch, h.fallbacks.Fetch, merged, func(ctx context.Context) ([]byte, error) {
		return h.svc.List(ctx, merged)
	})
}

func (h *Hook[T]) fetchList(ctx context.Context, op, fallback string, filter domain.Filter, call func(context.Context) ([]byte, error)) ([]T, error) {
	var items []T
	err := h.exec(ctx, op, store.Fetching, fallback, func(ctx context.Context) error {
		seq := h.seq.Add(1)
		raw, err := call(ctx)
		if err != nil {
			return err
		}

		list := envelope.Decode[T](raw, h.keys...)
		items = list.Items

		h.applyMu.Lock()
		defer h.applyMu.Unlock()
		if seq != h.seq.Load() {
			h.logger.DebugContext(ctx, "discarding stale list response", slog.String("op", op), slog.Uint64("seq", seq))
			return nil
		}
		h.store.Dispatch(
			store.SetItems[T]{Payload: raw, Keys: h.keys},
			store.SetPagination[T]{Pagination: list.Pagination},
			store.SetFilters[T]{Filters: filter},
		)
		return nil
	})
	return items, err
}

// Get loads one item, selects it and refreshes its copy in Items.
func (h *Hook[T]) Get(ctx context.Context, id string) (T, error) {
	var item T
	err := h.exec(ctx, OpGet, store.Selecting, h.fallbacks.Get, func(ctx context.Context) error {
		got, err := h.svc.Get(ctx, id)
		if err != nil {
			return err
		}
		item = got
		h.store.Dispatch(store.SetSelected[T]{Item: &got}, store.UpdateItem[T]{Item: got})
		return nil
	})
	return item, err
}

// Select sets or clears the selected item locally.
func (h *Hook[T]) Select(item *T) {
	h.store.Dispatch(store.SetSelected[T]{Item: item})
}

// Create validates payload, creates it remotely and adds the confirmed entity.
func (h *Hook[T]) Create(ctx context.Context, payload T) (T, error) {
	var created T
	err := h.exec(ctx, OpCreate, store.Creating, h.fallbacks.Create, func(ctx context.Context) error {
		if err := h.check(payload); err != nil {
			return err
		}
		got, err := h.svc.Create(ctx, payload)
		if err != nil {
			return err
		}
		created = got
		h.store.Dispatch(store.AddItem[T]{Item: got})
		return nil
	})
	return created, err
}

// Update validates payload, updates it remotely and replaces the stored copy.
func (h *Hook[T]) Update(ctx context.Context, id string, payload T) (T, error) {
	var updated T
	err := h.exec(ctx, OpUpdate, store.Updating, h.fallbacks.Update, func(ctx context.Context) error {
		if err := h.check(payload); err != nil {
			return err
		}
		got, err := h.svc.Update(ctx, id, payload)
		if err != nil {
			return err
		}
		if got.Key() != id {
			// The path id is authoritative; read the confirmed item back.
			if got, err = h.svc.Get(ctx, id); err != nil {
				return err
			}
		}
		updated = got
		h.store.Dispatch(store.UpdateItem[T]{Item: got})
		return nil
	})
	return updated, err
}

// Delete removes the item remotely, then locally.
func (h *Hook[T]) Delete(ctx context.Context, id string) error {
	return h.exec(ctx, OpDelete, store.Deleting, h.fallbacks.Delete, func(ctx context.Context) error {
		if err := h.svc.Delete(ctx, id); err != nil {
			return err
		}
		h.store.Dispatch(store.DeleteItem[T]{Key: id})
		return nil
	})
}

// FetchStats loads the domain statistics. Only tenant defaults are merged.
func (h *Hook[T]) FetchStats(ctx context.Context, filter domain.Filter) (domain.Stats, error) {
	var stats domain.Stats
	err := h.exec(ctx, OpStats, store.LoadStats, h.fallbacks.Stats, func(ctx context.Context) error {
		got, err := h.stats(ctx, filter.Merge(h.tenant))
		if err != nil {
			return err
		}
		stats = got
		h.store.Dispatch(store.SetStats[T]{Stats: got})
		return nil
	})
	return stats, err
}

// Reset clears the store, e.g. after logout.
func (h *Hook[T]) Reset() {
	h.store.Reset()
}

// exec runs fn as one operation under the loading key.
func (h *Hook[T]) exec(ctx context.Context, op string, key store.LoadingKey, fallback string, fn func(context.Context) error) error {
	start := time.Now()
	end := h.begin(key)
	defer end()

	err := h.guard(ctx)
	if err == nil {
		err = fn(ctx)
	}
	if err != nil {
		h.fail(ctx, op, fallback, err)
	}
	if h.observer != nil {
		h.observer.Observe(h.name, op, time.Since(start), err)
	}
	return err
}

// begin raises the loading flag and clears the error. Flags are counted so a
// finishing operation never lowers a flag another in-flight operation holds.
func (h *Hook[T]) begin(key store.LoadingKey) func() {
	h.loadMu.Lock()
	h.loading[key]++
	if h.loading[key] == 1 {
		h.store.Dispatch(store.SetLoading[T]{Key: key, Value: true}, store.SetError[T]{})
	} else {
		h.store.Dispatch(store.SetError[T]{})
	}
	h.loadMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.loadMu.Lock()
			defer h.loadMu.Unlock()
			h.loading[key]--
			if h.loading[key] <= 0 {
				delete(h.loading, key)
				h.store.Dispatch(store.SetLoading[T]{Key: key, Value: false})
			}
		})
	}
}

func (h *Hook[T]) guard(ctx context.Context) error {
	if h.auth == nil {
		return nil
	}
	_, err := h.auth.Token(ctx)
	return err
}

func (h *Hook[T]) check(payload T) error {
	if h.validate == nil {
		return nil
	}
	if err := h.validate.Struct(payload); err != nil {
		return &domain.AppError{Code: domain.CodeValidation, Message: domain.MsgInvalidData, Err: err}
	}
	return nil
}

func (h *Hook[T]) fail(ctx context.Context, op, fallback string, err error) {
	h.store.Dispatch(store.SetError[T]{Message: domain.ErrorMessage(err, fallback)})

	level := slog.LevelWarn
	if errors.Is(err, context.Canceled) {
		level = slog.LevelDebug
	}
	h.logger.Log(ctx, level, "operation failed",
		slog.String("op", op),
		slog.Any("error", err),
	)

	if domain.IsUnauthorized(err) && h.onUnauthorized != nil {
		h.onUnauthorized(ctx, err)
	}
}
