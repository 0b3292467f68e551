package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/coachsync/internal/config"
	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/metrics"
	"github.com/simp-lee/coachsync/internal/middleware"
	"github.com/simp-lee/coachsync/internal/module/auth"
	"github.com/simp-lee/coachsync/internal/module/resource"
)

const (
	defaultServerTimeout = 30 * time.Second
	rateLimitIdle        = 10 * time.Minute
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine  *gin.Engine
	db      *gorm.DB
	logger  *logger.Logger
	cfg     *config.Config
	state   *State
	limiter *middleware.RateLimiter
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler, timeout time.Duration) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the session database, the application state (API client,
// stores and hooks), metrics, middleware and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 exposes the session to the network")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	ctx := context.Background()

	// 2. Setup the session database.
	db, err := config.SetupDatabase(ctx, &cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// 3. Application state: session store, API client, hooks.
	m := metrics.New()
	state, err := NewState(ctx, cfg, db, log.Logger, m)
	if err != nil {
		return nil, fmt.Errorf("build state: %w", err)
	}

	// 4. Create Gin engine with custom middleware (not gin.Default()).
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	// In release mode, when no allowlist is configured, cross-origin requests are denied.
	corsConfig := resolveCORSConfig(cfg.Server.Mode, &cfg.Server.CORS)

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: true,
		}),
		middleware.Logger(log.Logger, "/health", "/metrics"),
		m.Middleware(),
		middleware.CORSWithConfig(corsConfig),
		middleware.Timeout(config.ParseDurationOr(cfg.Server.Timeout, defaultServerTimeout)),
	)

	var limiter *middleware.RateLimiter
	if rl := cfg.Server.RateLimit; rl.Enabled {
		limiter = middleware.NewRateLimiter(rl.RPS, rl.Burst, rateLimitIdle, log.Logger)
		engine.Use(limiter.Handler())
	}

	// 5. Register all routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules: buildModules(state),
		DB:      db,
		Metrics: m.Handler(),
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine:  engine,
		db:      db,
		logger:  log,
		cfg:     cfg,
		state:   state,
		limiter: limiter,
	}, nil
}

// buildModules mounts one module per domain store plus auth and dashboard.
func buildModules(s *State) []Module {
	return []Module{
		auth.NewModule(auth.NewHandler(auth.NewService(s.Auth, s.Session))),
		resource.NewModule("users", resource.NewHandler[domain.User](s.Users, resource.MatchUser).ServerFilters("status")),
		resource.NewModule("clients", resource.NewHandler[domain.Client](s.Clients, resource.MatchClient)),
		resource.NewModule("diets", resource.NewHandler[domain.Diet](s.Diets, resource.MatchDiet).ServerFilters("status")).
			With(resource.DietRoutes(s.Diets)),
		resource.NewModule("workouts", resource.NewHandler[domain.Workout](s.Workouts, resource.MatchWorkout)),
		resource.NewModule("courses", resource.NewHandler[domain.Course](s.Courses, resource.MatchCourse).ServerFilters("category")),
		resource.NewModule("messages", resource.NewHandler[domain.Message](s.Messages, resource.MatchMessage)).
			With(resource.MessageRoutes(s.Messages)),
		resource.NewModule("notifications", resource.NewHandler[domain.Notification](s.Notifications, resource.MatchNotification)).
			With(resource.NotificationRoutes(s.Notifications)),
		resource.NewModule("plans", resource.NewHandler[domain.Plan](s.Plans, resource.MatchPlan)),
		resource.NewModule("feedback", resource.NewHandler[domain.Feedback](s.Feedback, resource.MatchFeedback)),
		resource.NewModule("reports", resource.NewHandler[domain.Report](s.Reports, resource.MatchReport)).
			With(resource.ReportRoutes(s.Reports, nil)),
		resource.NewDashboardModule(s.Dashboard),
	}
}

func resolveCORSConfig(mode string, cfg *config.CORSConfig) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()
	if cfg == nil {
		if mode == gin.ReleaseMode {
			corsConfig.AllowOrigins = nil
		}
		return corsConfig
	}

	switch {
	case len(cfg.AllowOrigins) > 0:
		corsConfig.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		corsConfig.AllowOrigins = nil
	}
	if len(cfg.AllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.AllowHeaders
	}
	corsConfig.AllowCredentials = cfg.AllowCredentials
	corsConfig.MaxAge = config.ParseDurationOr(cfg.MaxAge, corsConfig.MaxAge)

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// sweepLimiter drops idle rate-limit buckets until ctx is done.
func (a *App) sweepLimiter(ctx context.Context) {
	if a.limiter == nil {
		return
	}
	ticker := time.NewTicker(rateLimitIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.limiter.Sweep()
		}
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the database
// connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine, config.ParseDurationOr(a.cfg.Server.Timeout, defaultServerTimeout))

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.sweepLimiter(ctx)

	// Start HTTP server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		a.log().Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		a.log().Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		// Graceful shutdown with 5-second deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log().Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.log().Error("database close error", slog.Any("error", err))
			} else {
				a.log().Info("database connection closed")
			}
		}
	}

	a.log().Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}

// State returns the application state.
func (a *App) State() *State {
	return a.state
}
