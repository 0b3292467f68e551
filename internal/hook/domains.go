package hook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/store"
)

// Domain-specific loading keys.
const (
	Marking   store.LoadingKey = "marking"
	Meals     store.LoadingKey = "meals"
	Exporting store.LoadingKey = "exporting"
)

// NotificationService is the remote surface of the notifications domain.
type NotificationService interface {
	Service[domain.Notification]
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
}

// Notifications adds the read/unread sub-contract to the notification hook.
type Notifications struct {
	*Hook[domain.Notification]
	svc NotificationService
	now func() time.Time
}

// NewNotifications creates the notification hook.
func NewNotifications(svc NotificationService, opts Options) *Notifications {
	return &Notifications{Hook: New[domain.Notification](svc, opts), svc: svc, now: time.Now}
}

// MarkAsRead marks one notification as read remotely, then locally.
func (n *Notifications) MarkAsRead(ctx context.Context, id string) error {
	return n.exec(ctx, "mark_read", Marking, "Erro ao marcar notificação como lida", func(ctx context.Context) error {
		if err := n.svc.MarkRead(ctx, id); err != nil {
			return err
		}
		n.store.Dispatch(store.MarkRead[domain.Notification]{Key: id, At: n.now()})
		return nil
	})
}

// MarkAllAsRead marks every notification as read remotely, then every item
// held locally, whatever filters were active.
func (n *Notifications) MarkAllAsRead(ctx context.Context) error {
	return n.exec(ctx, "mark_all_read", Marking, "Erro ao marcar notificações como lidas", func(ctx context.Context) error {
		if err := n.svc.MarkAllRead(ctx); err != nil {
			return err
		}
		n.store.Dispatch(store.MarkAllRead[domain.Notification]{At: n.now()})
		return nil
	})
}

// UnreadCount counts the unread notifications held in the store.
func (n *Notifications) UnreadCount() int {
	count := 0
	for _, item := range n.store.Snapshot().Items {
		if !item.IsRead() {
			count++
		}
	}
	return count
}

// DietService is the remote surface of the diets domain.
type DietService interface {
	Service[domain.Diet]
	Meals(ctx context.Context, dietID string) ([]domain.Meal, error)
	AddMeal(ctx context.Context, dietID string, meal domain.Meal) (domain.Meal, error)
}

// Diets adds meal management to the diet hook.
type Diets struct {
	*Hook[domain.Diet]
	svc DietService
}

// NewDiets creates the diet hook.
func NewDiets(svc DietService, opts Options) *Diets {
	return &Diets{Hook: New[domain.Diet](svc, opts), svc: svc}
}

// FetchMeals loads the meals of a diet and merges them into the stored diet.
func (d *Diets) FetchMeals(ctx context.Context, dietID string) ([]domain.Meal, error) {
	var meals []domain.Meal
	err := d.exec(ctx, "fetch_meals", Meals, "Erro ao carregar refeições", func(ctx context.Context) error {
		got, err := d.svc.Meals(ctx, dietID)
		if err != nil {
			return err
		}
		meals = got
		if diet, ok := d.store.Snapshot().Find(dietID); ok {
			diet.Meals = slices.Clone(got)
			d.store.Dispatch(store.UpdateItem[domain.Diet]{Item: diet})
		}
		return nil
	})
	return meals, err
}

// AddMeal validates and creates a meal, then appends it to the stored diet.
func (d *Diets) AddMeal(ctx context.Context, dietID string, meal domain.Meal) (domain.Meal, error) {
	var created domain.Meal
	err := d.exec(ctx, "add_meal", Meals, "Erro ao adicionar refeição", func(ctx context.Context) error {
		if d.validate != nil {
			if err := d.validate.Struct(meal); err != nil {
				return &domain.AppError{Code: domain.CodeValidation, Message: domain.MsgInvalidData, Err: err}
			}
		}
		got, err := d.svc.AddMeal(ctx, dietID, meal)
		if err != nil {
			return err
		}
		created = got
		if diet, ok := d.store.Snapshot().Find(dietID); ok {
			diet.Meals = append(slices.Clone(diet.Meals), got)
			d.store.Dispatch(store.UpdateItem[domain.Diet]{Item: diet})
		}
		return nil
	})
	return created, err
}

// MessageService is the remote surface of the messages domain.
type MessageService interface {
	Service[domain.Message]
	Conversation(ctx context.Context, userID string, filter domain.Filter) ([]byte, error)
}

// Messages adds conversations to the message hook.
type Messages struct {
	*Hook[domain.Message]
	svc MessageService
}

// NewMessages creates the message hook.
func NewMessages(svc MessageService, opts Options) *Messages {
	return &Messages{Hook: New[domain.Message](svc, opts), svc: svc}
}

// FetchConversation loads the messages exchanged with userID into Items.
func (m *Messages) FetchConversation(ctx context.Context, userID string, filter domain.Filter) ([]domain.Message, error) {
	merged := filter.Merge(m.defaults)
	return m.fetchList(ctx, "fetch_conversation", "Erro ao carregar conversa", merged, func(ctx context.Context) ([]byte, error) {
		return m.svc.Conversation(ctx, userID, merged)
	})
}

// Reports adds stats export to the report hook.
type Reports struct {
	*Hook[domain.Report]
}

// NewReports creates the report hook.
func NewReports(svc Service[domain.Report], opts Options) *Reports {
	return &Reports{Hook: New[domain.Report](svc, opts)}
}

// ErrNoStats is returned by Export when no statistics have been loaded.
var ErrNoStats = domain.NewAppError(domain.CodeValidation, "Nenhuma estatística carregada para exportar", nil)

// Export writes the statistics held in the store to w as indented JSON.
func (r *Reports) Export(ctx context.Context, w io.Writer) error {
	end := r.begin(Exporting)
	defer end()

	stats := r.store.Snapshot().Stats
	var err error
	if len(stats) == 0 {
		err = ErrNoStats
	} else {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(stats); encErr != nil {
			err = domain.NewAppError(domain.CodeInternal, "", fmt.Errorf("encode report stats: %w", encErr))
		}
	}
	if err != nil {
		r.fail(ctx, "export", "Erro ao exportar relatório", err)
	}
	return err
}

// StatsService is the remote surface of stats-only domains.
type StatsService interface {
	Stats(ctx context.Context, filter domain.Filter) (domain.Stats, error)
}

// Dashboard is a stats-only hook.
type Dashboard struct {
	h *Hook[domain.DashboardCard]
}

// NewDashboard creates the dashboard hook.
func NewDashboard(svc StatsService, opts Options) *Dashboard {
	h := newHook[domain.DashboardCard](opts)
	h.stats = svc.Stats
	return &Dashboard{h: h}
}

// FetchStats loads the dashboard statistics.
func (d *Dashboard) FetchStats(ctx context.Context, filter domain.Filter) (domain.Stats, error) {
	return d.h.FetchStats(ctx, filter)
}

// State returns a snapshot of the dashboard store.
func (d *Dashboard) State() store.State[domain.DashboardCard] {
	return d.h.State()
}

// Reset clears the dashboard store.
func (d *Dashboard) Reset() {
	d.h.Reset()
}
