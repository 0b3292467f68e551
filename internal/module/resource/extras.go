package resource

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/pkg"
	"github.com/simp-lee/coachsync/internal/store"
)

// NotificationOps is implemented by *hook.Notifications.
type NotificationOps interface {
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) error
	UnreadCount() int
	State() store.State[domain.Notification]
}

// NotificationRoutes adds the read/unread routes:
//
//	GET  /notifications/unread
//	POST /notifications/read-all
//	POST /notifications/:id/read
func NotificationRoutes(ops NotificationOps) func(*gin.RouterGroup) {
	return func(g *gin.RouterGroup) {
		g.GET("/unread", func(c *gin.Context) {
			pkg.Success(c, gin.H{"unread": ops.UnreadCount()})
		})
		g.POST("/read-all", func(c *gin.Context) {
			if err := ops.MarkAllAsRead(c.Request.Context()); err != nil {
				pkg.Error(c, err)
				return
			}
			pkg.Success(c, gin.H{"unread": ops.UnreadCount()})
		})
		g.POST("/:id/read", func(c *gin.Context) {
			id, ok := pathID(c, "id")
			if !ok {
				return
			}
			if err := ops.MarkAsRead(c.Request.Context(), id); err != nil {
				pkg.Error(c, err)
				return
			}
			item, _ := ops.State().Find(id)
			pkg.Success(c, item)
		})
	}
}

// DietOps is implemented by *hook.Diets.
type DietOps interface {
	FetchMeals(ctx context.Context, dietID string) ([]domain.Meal, error)
	AddMeal(ctx context.Context, dietID string, meal domain.Meal) (domain.Meal, error)
}

// DietRoutes adds the meal routes of a diet.
func DietRoutes(ops DietOps) func(*gin.RouterGroup) {
	return func(g *gin.RouterGroup) {
		g.GET("/:id/meals", func(c *gin.Context) {
			id, ok := pathID(c, "id")
			if !ok {
				return
			}
			meals, err := ops.FetchMeals(c.Request.Context(), id)
			if err != nil {
				pkg.Error(c, err)
				return
			}
			pkg.Success(c, meals)
		})
		g.POST("/:id/meals", func(c *gin.Context) {
			id, ok := pathID(c, "id")
			if !ok {
				return
			}
			var meal domain.Meal
			if !pkg.BindJSON(c, &meal) {
				return
			}
			created, err := ops.AddMeal(c.Request.Context(), id, meal)
			if err != nil {
				pkg.Error(c, err)
				return
			}
			pkg.Created(c, created)
		})
	}
}

// MessageOps is implemented by *hook.Messages.
type MessageOps interface {
	FetchConversation(ctx context.Context, userID string, filter domain.Filter) ([]domain.Message, error)
}

// MessageRoutes adds POST /messages/conversation/:userId, which loads the
// conversation with a user into the store and returns it.
func MessageRoutes(ops MessageOps) func(*gin.RouterGroup) {
	return func(g *gin.RouterGroup) {
		g.POST("/conversation/:userId", func(c *gin.Context) {
			userID, ok := pathID(c, "userId")
			if !ok {
				return
			}
			msgs, err := ops.FetchConversation(c.Request.Context(), userID, pkg.ParseFilter(c))
			if err != nil {
				pkg.Error(c, err)
				return
			}
			pkg.Success(c, msgs)
		})
	}
}

// ReportOps is implemented by *hook.Reports.
type ReportOps interface {
	Export(ctx context.Context, w io.Writer) error
}

// ReportRoutes adds GET /reports/export, which downloads the loaded report
// statistics as a dated JSON file.
func ReportRoutes(ops ReportOps, now func() time.Time) func(*gin.RouterGroup) {
	if now == nil {
		now = time.Now
	}
	return func(g *gin.RouterGroup) {
		g.GET("/export", func(c *gin.Context) {
			var buf bytes.Buffer
			if err := ops.Export(c.Request.Context(), &buf); err != nil {
				pkg.Error(c, err)
				return
			}
			name := "relatorio-" + now().Format("2006-01-02") + ".json"
			pkg.Attachment(c, name, "application/json", buf.Bytes())
		})
	}
}

// DashboardOps is implemented by *hook.Dashboard.
type DashboardOps interface {
	FetchStats(ctx context.Context, filter domain.Filter) (domain.Stats, error)
	State() store.State[domain.DashboardCard]
}

// DashboardModule serves the stats-only dashboard store.
type DashboardModule struct {
	ops DashboardOps
}

// NewDashboardModule creates the dashboard module. Panics if ops is nil.
func NewDashboardModule(ops DashboardOps) *DashboardModule {
	if ops == nil {
		panic("resource.NewDashboardModule: ops must not be nil")
	}
	return &DashboardModule{ops: ops}
}

// RegisterRoutes registers GET /dashboard and POST /dashboard/refresh.
func (m *DashboardModule) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/dashboard")
	g.GET("", func(c *gin.Context) {
		pkg.Success(c, m.ops.State())
	})
	g.POST("/refresh", func(c *gin.Context) {
		if _, err := m.ops.FetchStats(c.Request.Context(), pkg.ParseFilter(c)); err != nil {
			pkg.Error(c, err)
			return
		}
		pkg.Success(c, m.ops.State())
	})
}
