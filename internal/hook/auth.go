package hook

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/coachsync/internal/api"
	"github.com/simp-lee/coachsync/internal/domain"
)

// LoginService exchanges credentials for tokens.
type LoginService interface {
	Login(ctx context.Context, email, password string) (api.Tokens, error)
}

// TokenStore persists the token pair.
type TokenStore interface {
	Save(ctx context.Context, tokens api.Tokens) error
	Clear(ctx context.Context) error
}

// Resetter is anything whose local state is discarded on logout.
type Resetter interface {
	Reset()
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Auth manages the session lifecycle.
type Auth struct {
	svc      LoginService
	tokens   TokenStore
	validate *validator.Validate
	observer Observer
	logger   *slog.Logger
	resets   []Resetter
}

// NewAuth creates the auth hook. Stores passed in resets are cleared on logout.
func NewAuth(svc LoginService, tokens TokenStore, opts Options, resets ...Resetter) *Auth {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{
		svc:      svc,
		tokens:   tokens,
		validate: opts.Validator,
		observer: opts.Observer,
		logger:   logger.With(slog.String("domain", "auth")),
		resets:   resets,
	}
}

// Login authenticates and persists the returned tokens.
func (a *Auth) Login(ctx context.Context, email, password string) (api.Tokens, error) {
	start := time.Now()
	tokens, err := a.login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		a.logger.WarnContext(ctx, "login failed", slog.String("email", email), slog.Any("error", err))
	} else {
		a.logger.InfoContext(ctx, "logged in", slog.String("email", email))
	}
	if a.observer != nil {
		a.observer.Observe("auth", "login", time.Since(start), err)
	}
	return tokens, err
}

func (a *Auth) login(ctx context.Context, email, password string) (api.Tokens, error) {
	if a.validate != nil {
		if err := a.validate.Struct(credentials{Email: email, Password: password}); err != nil {
			return api.Tokens{}, &domain.AppError{Code: domain.CodeValidation, Message: domain.MsgInvalidData, Err: err}
		}
	}
	tokens, err := a.svc.Login(ctx, email, password)
	if err != nil {
		return api.Tokens{}, err
	}
	if err := a.tokens.Save(ctx, tokens); err != nil {
		return api.Tokens{}, err
	}
	return tokens, nil
}

// Logout clears the stored tokens and every registered store.
func (a *Auth) Logout(ctx context.Context) error {
	err := a.tokens.Clear(ctx)
	for _, r := range a.resets {
		r.Reset()
	}
	if err != nil {
		a.logger.WarnContext(ctx, "logout failed", slog.Any("error", err))
		return err
	}
	a.logger.InfoContext(ctx, "logged out")
	return nil
}
