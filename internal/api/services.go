package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/envelope"
)

// Resource paths on the remote API.
const (
	PathLogin         = "/Auth/login"
	PathUsers         = "/Users"
	PathClients       = "/Client"
	PathDiets         = "/Diets"
	PathWorkouts      = "/Workouts"
	PathCourses       = "/Courses"
	PathMessages      = "/Messages"
	PathNotifications = "/Notifications"
	PathPlans         = "/Plans"
	PathFeedback      = "/Feedback"
	PathReports       = "/Reports"
	PathDashboard     = "/Dashboard"
)

// Services groups one client per remote domain.
type Services struct {
	Auth          *AuthService
	Users         *Resource[domain.User]
	Clients       *Resource[domain.Client]
	Diets         *DietService
	Workouts      *Resource[domain.Workout]
	Courses       *Resource[domain.Course]
	Plans         *Resource[domain.Plan]
	Feedback      *Resource[domain.Feedback]
	Messages      *MessageService
	Notifications *NotificationService
	Reports       *Resource[domain.Report]
	Dashboard     *DashboardService
}

// NewServices builds every domain client on top of c.
func NewServices(c *Client) *Services {
	return &Services{
		Auth:          &AuthService{client: c},
		Users:         NewResource[domain.User](c, PathUsers),
		Clients:       NewResource[domain.Client](c, PathClients),
		Diets:         &DietService{Resource: NewResource[domain.Diet](c, PathDiets)},
		Workouts:      NewResource[domain.Workout](c, PathWorkouts),
		Courses:       NewResource[domain.Course](c, PathCourses),
		Plans:         NewResource[domain.Plan](c, PathPlans),
		Feedback:      NewResource[domain.Feedback](c, PathFeedback),
		Messages:      &MessageService{Resource: NewResource[domain.Message](c, PathMessages)},
		Notifications: &NotificationService{Resource: NewResource[domain.Notification](c, PathNotifications)},
		Reports:       NewResource[domain.Report](c, PathReports),
		Dashboard:     &DashboardService{client: c},
	}
}

// Tokens is the credential pair returned by a successful login.
type Tokens struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService talks to the authentication endpoint.
type AuthService struct {
	client *Client
}

// Login exchanges credentials for a token pair. The request is sent without
// a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (Tokens, error) {
	raw, err := s.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   PathLogin,
		Body:   map[string]string{"email": email, "password": password},
		Public: true,
	})
	if err != nil {
		return Tokens{}, err
	}

	root := gjson.ParseBytes(raw)
	var tokens Tokens
	for _, path := range []string{"token", "accessToken", "data.token", "data.accessToken"} {
		if v := root.Get(path); v.Type == gjson.String && v.String() != "" {
			tokens.Token = v.String()
			break
		}
	}
	for _, path := range []string{"refreshToken", "data.refreshToken"} {
		if v := root.Get(path); v.Type == gjson.String {
			tokens.RefreshToken = v.String()
			break
		}
	}
	if tokens.Token == "" {
		return Tokens{}, domain.NewAppError(domain.CodeRemote, "", errors.New("login response carried no token"))
	}
	return tokens, nil
}

// DietService extends the diet resource with its meal sub-collection.
type DietService struct {
	*Resource[domain.Diet]
}

func (s *DietService) mealsPath(dietID string) string {
	return s.itemPath(dietID) + "/meals"
}

// Meals lists the meals of one diet.
func (s *DietService) Meals(ctx context.Context, dietID string) ([]domain.Meal, error) {
	raw, err := s.client.Do(ctx, Request{Method: http.MethodGet, Path: s.mealsPath(dietID)})
	if err != nil {
		return nil, err
	}
	return envelope.Items[domain.Meal](raw), nil
}

// AddMeal creates a meal under one diet.
func (s *DietService) AddMeal(ctx context.Context, dietID string, meal domain.Meal) (domain.Meal, error) {
	raw, err := s.client.Do(ctx, Request{Method: http.MethodPost, Path: s.mealsPath(dietID), Body: meal})
	if err != nil {
		return domain.Meal{}, err
	}
	if len(raw) == 0 {
		return meal, nil
	}
	created, ok := envelope.Object[domain.Meal](raw)
	if !ok {
		return domain.Meal{}, domain.NewAppError(domain.CodeRemote, "", fmt.Errorf("POST %s: unexpected response body", s.mealsPath(dietID)))
	}
	return created, nil
}

// MessageService extends the message resource with conversations.
type MessageService struct {
	*Resource[domain.Message]
}

// Conversation returns the raw list of messages exchanged with userID.
func (s *MessageService) Conversation(ctx context.Context, userID string, filter domain.Filter) ([]byte, error) {
	return s.client.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   s.path + "/conversation/" + url.PathEscape(userID),
		Query:  filter.Values(),
	})
}

// NotificationService extends the notification resource with read markers.
type NotificationService struct {
	*Resource[domain.Notification]
}

// MarkRead marks one notification as read on the server.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	_, err := s.client.Do(ctx, Request{Method: http.MethodPut, Path: s.itemPath(id) + "/read"})
	return err
}

// MarkAllRead marks every notification of the current user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	_, err := s.client.Do(ctx, Request{Method: http.MethodPut, Path: s.path + "/read-all"})
	return err
}

// DashboardService reads the aggregated dashboard statistics.
type DashboardService struct {
	client *Client
}

// Stats performs GET /Dashboard/stats.
func (s *DashboardService) Stats(ctx context.Context, filter domain.Filter) (domain.Stats, error) {
	return getStats(ctx, s.client, PathDashboard+"/stats", filter)
}
