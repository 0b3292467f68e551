package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simp-lee/coachsync/internal/api"
	"github.com/simp-lee/coachsync/internal/domain"
	"github.com/simp-lee/coachsync/internal/session"
)

// --- fakes ---

type fakeAuthenticator struct {
	tokens    api.Tokens
	err       error
	loggedOut bool
	logoutErr error
	email     string
}

func (f *fakeAuthenticator) Login(_ context.Context, email, _ string) (api.Tokens, error) {
	f.email = email
	return f.tokens, f.err
}

func (f *fakeAuthenticator) Logout(context.Context) error {
	f.loggedOut = true
	return f.logoutErr
}

type fakeClaims struct {
	claims session.Claims
	err    error
}

func (f fakeClaims) Claims(context.Context) (session.Claims, error) {
	return f.claims, f.err
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuthService_Login(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	jwtToken := signedToken(t, jwt.MapClaims{
		"sub":  "7",
		"role": "admin",
		"exp":  exp.Unix(),
	})

	tests := []struct {
		name      string
		tokens    api.Tokens
		wantEmail string
		wantRole  string
		wantExp   bool
	}{
		{"jwt token", api.Tokens{Token: jwtToken}, "coach@example.com", "admin", true},
		{"opaque token", api.Tokens{Token: "opaque-token"}, "coach@example.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeAuthenticator{tokens: tt.tokens}, fakeClaims{})
			resp, err := svc.Login(context.Background(), "coach@example.com", "secret")
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if !resp.Authenticated || resp.Email != tt.wantEmail || resp.Role != tt.wantRole {
				t.Errorf("Login() = %+v", resp)
			}
			if (resp.ExpiresAt != nil) != tt.wantExp {
				t.Errorf("ExpiresAt = %v, want set=%v", resp.ExpiresAt, tt.wantExp)
			}
			if tt.wantExp && !resp.ExpiresAt.Equal(exp) {
				t.Errorf("ExpiresAt = %v, want %v", resp.ExpiresAt, exp)
			}
		})
	}
}

func TestAuthService_Login_Error(t *testing.T) {
	svc := NewService(&fakeAuthenticator{err: domain.ErrUnauthorized}, fakeClaims{})
	if _, err := svc.Login(context.Background(), "coach@example.com", "bad"); !domain.IsUnauthorized(err) {
		t.Fatalf("Login() error = %v, want unauthorized", err)
	}
}

func TestAuthService_Session(t *testing.T) {
	dbErr := errors.New("database is locked")
	tests := []struct {
		name     string
		claims   fakeClaims
		wantAuth bool
		wantErr  error
	}{
		{"logged in", fakeClaims{claims: session.Claims{Subject: "7", Role: "Admin"}}, true, nil},
		{"no token", fakeClaims{err: domain.ErrUnauthorized}, false, nil},
		{"expired", fakeClaims{err: domain.ErrSessionExpired}, false, nil},
		{"store failure", fakeClaims{err: dbErr}, false, dbErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeAuthenticator{}, tt.claims)
			resp, err := svc.Session(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Session() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if resp.Authenticated != tt.wantAuth {
				t.Errorf("Authenticated = %v, want %v", resp.Authenticated, tt.wantAuth)
			}
			if tt.wantAuth && !resp.Admin {
				t.Error("Admin role should be reported")
			}
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	fa := &fakeAuthenticator{}
	if err := NewService(fa, fakeClaims{}).Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if !fa.loggedOut {
		t.Error("Logout() did not reach the authenticator")
	}
}
