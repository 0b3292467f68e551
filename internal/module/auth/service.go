package auth

import (
	"context"

	"github.com/simp-lee/coachsync/internal/api"
	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/session"
)

// Authenticator is implemented by *hook.Auth.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.Tokens, error)
	Logout(ctx context.Context) error
}

// ClaimsSource is implemented by *session.Store.
type ClaimsSource interface {
	Claims(ctx context.Context) (session.Claims, error)
}

// Service defines the session operations exposed by the view server.
type Service interface {
	Login(ctx context.Context, email, password string) (*SessionResponse, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*SessionResponse, error)
}

type authService struct {
	auth   Authenticator
	claims ClaimsSource
}

// NewService creates a new auth Service.
func NewService(auth Authenticator, claims ClaimsSource) Service {
	return &authService{auth: auth, claims: claims}
}

// Login authenticates against the remote API and reports the new session.
func (s *authService) Login(ctx context.Context, email, password string) (*SessionResponse, error) {
	tokens, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	claims, ok := session.ParseClaims(tokens.Token)
	if !ok {
		// Opaque token: nothing to decode beyond the login email.
		return &SessionResponse{Authenticated: true, Email: email}, nil
	}
	resp := fromClaims(claims)
	if resp.Email == "" {
		resp.Email = email
	}
	return resp, nil
}

func (s *authService) Logout(ctx context.Context) error {
	return s.auth.Logout(ctx)
}

// Session reports the stored session. A missing or expired token is not an
// error here: it yields an unauthenticated response.
func (s *authService) Session(ctx context.Context) (*SessionResponse, error) {
	claims, err := s.claims.Claims(ctx)
	if err != nil {
		if domain.IsUnauthorized(err) {
			return &SessionResponse{}, nil
		}
		return nil, err
	}
	return fromClaims(claims), nil
}

func fromClaims(c session.Claims) *SessionResponse {
	resp := &SessionResponse{
		Authenticated: true,
		Subject:       c.Subject,
		Email:         c.Email,
		Role:          c.Role,
		Admin:         c.IsAdmin(),
	}
	if !c.ExpiresAt.IsZero() {
		exp := c.ExpiresAt
		resp.ExpiresAt = &exp
	}
	return resp
}
