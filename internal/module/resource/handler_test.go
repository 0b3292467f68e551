package resource

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/pkg"
	"github.com/simp-lee/coachsync/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeOps is an in-memory Operations backed by a real store.
type fakeOps[T domain.Entity] struct {
	store *store.Store[T]
	err   error

	lastFilter domain.Filter
	lastID     string
	created    T
}

func newFakeOps[T domain.Entity](items ...T) *fakeOps[T] {
	s := store.New("test", store.Reducer[T]{})
	s.Dispatch(store.ReplaceItems[T]{Items: items})
	return &fakeOps[T]{store: s}
}

func (f *fakeOps[T]) State() store.State[T] { return f.store.Snapshot() }

func (f *fakeOps[T]) Fetch(_ context.Context, filter domain.Filter) ([]T, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	f.store.Dispatch(store.SetFilters[T]{Filters: filter})
	return f.store.Snapshot().Items, nil
}

func (f *fakeOps[T]) Get(_ context.Context, id string) (T, error) {
	f.lastID = id
	item, ok := f.store.Snapshot().Find(id)
	if !ok {
		var zero T
		return zero, domain.NewAppError(domain.CodeNotFound, "Registro não encontrado", nil)
	}
	return item, f.err
}

func (f *fakeOps[T]) Create(_ context.Context, payload T) (T, error) {
	if f.err != nil {
		var zero T
		return zero, f.err
	}
	f.created = payload
	f.store.Dispatch(store.AddItem[T]{Item: payload})
	return payload, nil
}

func (f *fakeOps[T]) Update(_ context.Context, id string, payload T) (T, error) {
	f.lastID = id
	if f.err != nil {
		var zero T
		return zero, f.err
	}
	f.store.Dispatch(store.UpdateItem[T]{Item: payload})
	return payload, nil
}

func (f *fakeOps[T]) Delete(_ context.Context, id string) error {
	f.lastID = id
	if f.err != nil {
		return f.err
	}
	f.store.Dispatch(store.DeleteItem[T]{Key: id})
	return nil
}

func (f *fakeOps[T]) FetchStats(_ context.Context, filter domain.Filter) (domain.Stats, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	stats := domain.Stats{"total": 2}
	f.store.Dispatch(store.SetStats[T]{Stats: stats})
	return stats, nil
}

func setupClientRouter(ops *fakeOps[domain.Client]) *gin.Engine {
	r := gin.New()
	NewModule("clients", NewHandler[domain.Client](ops, MatchClient)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelopeOf decodes a pkg.Response whose Data holds T.
func envelopeOf[T any](t *testing.T, w *httptest.ResponseRecorder) (pkg.Response, T) {
	t.Helper()
	var raw struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to unmarshal response: %v (%s)", err, w.Body.String())
	}
	var data T
	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			t.Fatalf("failed to unmarshal data: %v", err)
		}
	}
	return pkg.Response{Code: raw.Code, Message: raw.Message}, data
}

func sampleClients() []domain.Client {
	return []domain.Client{
		{ID: 1, Name: "Ana Souza", Email: "ana@example.com", Goal: "hipertrofia", Status: 1},
		{ID: 2, Name: "Bruno Lima", Email: "bruno@example.com", Goal: "emagrecimento", Status: 0},
		{ID: 3, Name: "Carla Dias", Email: "carla@example.com", Goal: "hipertrofia", Status: 0},
	}
}

func TestHandler_Snapshot(t *testing.T) {
	ops := newFakeOps(sampleClients()...)
	ops.store.Dispatch(store.SetPagination[domain.Client]{Pagination: &domain.PaginationInfo{TotalCount: 40}})
	r := setupClientRouter(ops)

	tests := []struct {
		name    string
		query   string
		wantIDs []domain.ID
	}{
		{"no view query", "", []domain.ID{1, 2, 3}},
		{"search", "?q=LIMA", []domain.ID{2}},
		{"category", "?category=hipertrofia", []domain.ID{1, 3}},
		{"category and status", "?category=hipertrofia&status=0", []domain.ID{3}},
		{"no match", "?q=zzz", []domain.ID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, "/api/v1/clients"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			_, state := envelopeOf[store.State[domain.Client]](t, w)
			if len(state.Items) != len(tt.wantIDs) {
				t.Fatalf("items = %+v, want ids %v", state.Items, tt.wantIDs)
			}
			for i, id := range tt.wantIDs {
				if state.Items[i].ID != id {
					t.Errorf("items[%d].ID = %d, want %d", i, state.Items[i].ID, id)
				}
			}
			if state.Pagination == nil || state.Pagination.TotalCount != 40 {
				t.Errorf("pagination = %+v, want server totals untouched", state.Pagination)
			}
		})
	}

	if got := len(ops.State().Items); got != 3 {
		t.Errorf("store items = %d, view query must not modify the store", got)
	}
}

func TestHandler_Refresh(t *testing.T) {
	ops := newFakeOps(sampleClients()...)
	r := setupClientRouter(ops)

	w := serve(r, http.MethodPost, "/api/v1/clients/refresh?status=1&planId=7&page=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ops.lastFilter["planId"] != "7" || ops.lastFilter["page"] != "2" {
		t.Errorf("filter = %v", ops.lastFilter)
	}
	if _, ok := ops.lastFilter["status"]; ok {
		t.Errorf("view param status leaked into remote filter: %v", ops.lastFilter)
	}
	_, state := envelopeOf[store.State[domain.Client]](t, w)
	if len(state.Items) != 1 || state.Items[0].ID != 1 {
		t.Errorf("items = %+v, want only the active client", state.Items)
	}
}

func TestHandler_Refresh_ServerFilters(t *testing.T) {
	ops := newFakeOps(
		domain.Diet{ID: 1, Name: "Low carb", Status: 0},
		domain.Diet{ID: 2, Name: "Cutting", Status: 1},
	)
	r := gin.New()
	NewModule("diets", NewHandler[domain.Diet](ops, MatchDiet).ServerFilters("status")).RegisterRoutes(r.Group("/api/v1"))

	w := serve(r, http.MethodPost, "/api/v1/diets/refresh?status=1&q=low", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ops.lastFilter["status"] != "1" {
		t.Errorf("remote filter = %v, want status forwarded", ops.lastFilter)
	}
	if _, ok := ops.lastFilter["q"]; ok {
		t.Errorf("local search leaked into remote filter: %v", ops.lastFilter)
	}
	_, state := envelopeOf[store.State[domain.Diet]](t, w)
	if len(state.Items) != 1 || state.Items[0].ID != 1 {
		t.Errorf("items = %+v, want only the local search applied", state.Items)
	}
}

func TestHandler_Refresh_Error(t *testing.T) {
	ops := newFakeOps[domain.Client]()
	ops.err = domain.ErrUnauthorized
	r := setupClientRouter(ops)

	w := serve(r, http.MethodPost, "/api/v1/clients/refresh", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestHandler_Get(t *testing.T) {
	ops := newFakeOps(sampleClients()...)
	r := setupClientRouter(ops)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/api/v1/clients/2", http.StatusOK},
		{"not found", "/api/v1/clients/99", http.StatusNotFound},
		{"invalid id", "/api/v1/clients/abc", http.StatusBadRequest},
		{"zero id", "/api/v1/clients/0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, tt.path, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestHandler_Create(t *testing.T) {
	ops := newFakeOps[domain.Client]()
	r := setupClientRouter(ops)

	w := serve(r, http.MethodPost, "/api/v1/clients", `{"id":9,"name":"Davi","email":"davi@example.com"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	resp, client := envelopeOf[domain.Client](t, w)
	if resp.Code != http.StatusCreated || client.Name != "Davi" {
		t.Errorf("response = %+v, data = %+v", resp, client)
	}
	if ops.created.Email != "davi@example.com" {
		t.Errorf("payload = %+v", ops.created)
	}

	w = serve(r, http.MethodPost, "/api/v1/clients", `{"name":`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: expected status 400, got %d", w.Code)
	}
}

func TestHandler_Create_ValidationError(t *testing.T) {
	ops := newFakeOps[domain.Client]()
	ops.err = &domain.AppError{Code: domain.CodeValidation, Message: domain.MsgInvalidData}
	r := setupClientRouter(ops)

	w := serve(r, http.MethodPost, "/api/v1/clients", `{"name":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	resp, _ := envelopeOf[any](t, w)
	if resp.Message != domain.MsgInvalidData {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	ops := newFakeOps(sampleClients()...)
	r := setupClientRouter(ops)

	w := serve(r, http.MethodPut, "/api/v1/clients/1", `{"id":1,"name":"Ana S.","email":"ana@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected status 200, got %d", w.Code)
	}
	if ops.lastID != "1" {
		t.Errorf("update id = %q", ops.lastID)
	}
	if got, _ := ops.State().Find("1"); got.Name != "Ana S." {
		t.Errorf("stored name = %q", got.Name)
	}

	w = serve(r, http.MethodDelete, "/api/v1/clients/3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected status 200, got %d", w.Code)
	}
	if _, ok := ops.State().Find("3"); ok {
		t.Error("client 3 still stored after delete")
	}
}

func TestHandler_Stats(t *testing.T) {
	ops := newFakeOps[domain.Client]()
	r := setupClientRouter(ops)

	w := serve(r, http.MethodGet, "/api/v1/clients/stats?from=2024-01-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	_, stats := envelopeOf[domain.Stats](t, w)
	if stats["total"] != float64(2) {
		t.Errorf("stats = %v", stats)
	}
	if ops.lastFilter["from"] != "2024-01-01" {
		t.Errorf("filter = %v", ops.lastFilter)
	}
}

func TestNewModule_Panics(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"empty path", func() { NewModule("/", NewHandler[domain.Client](newFakeOps[domain.Client](), nil)) }},
		{"nil handler", func() { NewModule[domain.Client]("clients", nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestModule_Path(t *testing.T) {
	m := NewModule("/diets/", NewHandler[domain.Diet](newFakeOps[domain.Diet](), MatchDiet))
	if m.Path() != "diets" {
		t.Errorf("Path() = %q", m.Path())
	}
}
