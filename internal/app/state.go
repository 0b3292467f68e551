package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/simp-lee/coachsync/internal/api"
	"github.com/simp-lee/coachsync/internal/config"
	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/envelope"
	"github.com/simp-lee/coachsync/internal/hook"
	"github.com/simp-lee/coachsync/internal/session"
	"github.com/simp-lee/coachsync/internal/store"
)

// LoginPath is where clients are sent once the session is no longer valid.
const LoginPath = "/login"

// State is the application state shared by the view server and the CLI. It is
// built once and passed by reference.
type State struct {
	Session  *session.Store
	Client   *api.Client
	Services *api.Services

	Auth          *hook.Auth
	Users         *hook.Hook[domain.User]
	Clients       *hook.Hook[domain.Client]
	Diets         *hook.Diets
	Workouts      *hook.Hook[domain.Workout]
	Courses       *hook.Hook[domain.Course]
	Messages      *hook.Messages
	Notifications *hook.Notifications
	Plans         *hook.Hook[domain.Plan]
	Feedback      *hook.Hook[domain.Feedback]
	Reports       *hook.Reports
	Dashboard     *hook.Dashboard

	logger *slog.Logger
}

// NewState opens the session store on db, builds the API client and one hook
// per domain. observer may be nil.
func NewState(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *slog.Logger, observer hook.Observer) (*State, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	sess, err := session.New(ctx, db, session.Config{
		EncryptionKey: cfg.Session.EncryptionKey,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	clientCfg := api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: config.ParseDurationOr(cfg.API.Timeout, 0),
		Tokens:  sess,
		Logger:  logger,
	}
	if rl := cfg.API.RateLimit; rl.Enabled {
		clientCfg.Limiter = rate.NewLimiter(rate.Limit(rl.RPS), rl.Burst)
	}
	client, err := api.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	s := &State{
		Session:  sess,
		Client:   client,
		Services: api.NewServices(client),
		logger:   logger,
	}
	s.buildHooks(cfg, validator.New(), observer)
	return s, nil
}

func (s *State) buildHooks(cfg *config.Config, validate *validator.Validate, observer hook.Observer) {
	var tenant domain.Filter
	if cfg.API.EmpresaID > 0 {
		tenant = domain.Filter{"empresaId": strconv.FormatInt(cfg.API.EmpresaID, 10)}
	}

	opts := func(name, singular, plural string) hook.Options {
		return hook.Options{
			Name:           name,
			Fallbacks:      hook.DefaultFallbacks(singular, plural),
			Auth:           s.Session,
			Validator:      validate,
			OnUnauthorized: s.unauthorized,
			Observer:       observer,
			Logger:         s.logger,
		}
	}
	withTenant := func(o hook.Options) hook.Options {
		o.Tenant = tenant
		return o
	}

	svc := s.Services

	s.Users = hook.New[domain.User](svc.Users, withTenant(opts("users", "usuário", "usuários")))

	clientOpts := withTenant(opts("clients", "cliente", "clientes"))
	clientOpts.Keys = append([]string{"clients"}, envelope.DefaultKeys...)
	s.Clients = hook.New[domain.Client](svc.Clients, clientOpts)

	s.Diets = hook.NewDiets(svc.Diets, withTenant(opts("diets", "dieta", "dietas")))
	s.Workouts = hook.New[domain.Workout](svc.Workouts, withTenant(opts("workouts", "treino", "treinos")))
	s.Courses = hook.New[domain.Course](svc.Courses, withTenant(opts("courses", "curso", "cursos")))
	s.Plans = hook.New[domain.Plan](svc.Plans, withTenant(opts("plans", "plano", "planos")))

	msgOpts := opts("messages", "mensagem", "mensagens")
	msgOpts.PageSize = 50
	msgOpts.Placement = store.Prepend
	s.Messages = hook.NewMessages(svc.Messages, msgOpts)

	notifOpts := opts("notifications", "notificação", "notificações")
	notifOpts.PageSize = 50
	notifOpts.Placement = store.Prepend
	s.Notifications = hook.NewNotifications(svc.Notifications, notifOpts)

	feedbackOpts := opts("feedback", "feedback", "feedbacks")
	feedbackOpts.Placement = store.Prepend
	s.Feedback = hook.New[domain.Feedback](svc.Feedback, feedbackOpts)

	s.Reports = hook.NewReports(svc.Reports, withTenant(opts("reports", "relatório", "relatórios")))
	s.Dashboard = hook.NewDashboard(svc.Dashboard, opts("dashboard", "painel", "painel"))

	s.Auth = hook.NewAuth(svc.Auth, s.Session, hook.Options{
		Validator: validate,
		Observer:  observer,
		Logger:    s.logger,
	}, s.resetters()...)
}

func (s *State) resetters() []hook.Resetter {
	return []hook.Resetter{
		s.Users, s.Clients, s.Diets, s.Workouts, s.Courses, s.Messages,
		s.Notifications, s.Plans, s.Feedback, s.Reports, s.Dashboard,
	}
}

// ResetAll clears every domain store.
func (s *State) ResetAll() {
	for _, r := range s.resetters() {
		r.Reset()
	}
}

// unauthorized is the single handler for unauthorized failures. The stored
// tokens are dropped so the next login starts clean; the failing store keeps
// its error message for the caller to show.
func (s *State) unauthorized(ctx context.Context, err error) {
	if clearErr := s.Session.Clear(context.WithoutCancel(ctx)); clearErr != nil {
		s.logger.ErrorContext(ctx, "clear session after unauthorized response", slog.Any("error", clearErr))
	}
	s.logger.WarnContext(ctx, "session is no longer valid",
		slog.String("redirect", LoginPath),
		slog.String("reason", domain.ErrorMessage(err, domain.MsgNotAuthenticated)),
	)
}
