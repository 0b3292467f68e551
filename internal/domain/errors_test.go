package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with wrapped error",
			err:  &AppError{Code: CodeRemote, Message: "failed to load diets", Err: errors.New("connection refused")},
			want: "failed to load diets: connection refused",
		},
		{
			name: "wrapped error without message",
			err:  &AppError{Code: CodeRemote, Err: errors.New("status 502")},
			want: "status 502",
		},
		{
			name: "without wrapped error",
			err:  &AppError{Code: CodeUnauthorized, Message: MsgNotAuthenticated},
			want: MsgNotAuthenticated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("inner error")
	appErr := &AppError{Code: CodeInternal, Message: "something failed", Err: inner}

	if !errors.Is(appErr, inner) {
		t.Error("Unwrap() should allow errors.Is to find wrapped error")
	}

	appErr2 := &AppError{Code: CodeInternal, Message: "no wrap"}
	if appErr2.Unwrap() != nil {
		t.Error("Unwrap() should return nil when Err is nil")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checkFn func(error) bool
		code    int
	}{
		{"ErrNotFound", ErrNotFound, IsNotFound, CodeNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists, IsAlreadyExists, CodeAlreadyExists},
		{"ErrValidation", ErrValidation, IsValidation, CodeValidation},
		{"ErrInternal", ErrInternal, IsInternal, CodeInternal},
		{"ErrUnauthorized", ErrUnauthorized, IsUnauthorized, CodeUnauthorized},
		{"ErrSessionExpired", ErrSessionExpired, IsUnauthorized, CodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr *AppError
			if !errors.As(tt.err, &appErr) {
				t.Fatal("should be *AppError")
			}
			if appErr.Code != tt.code {
				t.Errorf("Code = %d; want %d", appErr.Code, tt.code)
			}
			if !tt.checkFn(tt.err) {
				t.Errorf("check function should return true for %s", tt.name)
			}
		})
	}
}

func TestIsCheckers_WithWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("fetch clients: %w", NewAppError(CodeUnauthorized, "token rejected", nil))
	if !IsUnauthorized(wrapped) {
		t.Error("IsUnauthorized should detect wrapped unauthorized error")
	}
	if IsRemote(wrapped) {
		t.Error("IsRemote should return false for unauthorized error")
	}
}

func TestIsCheckers_NonAppError(t *testing.T) {
	plainErr := errors.New("some error")
	checks := []func(error) bool{IsNotFound, IsAlreadyExists, IsValidation, IsInternal, IsUnauthorized, IsRemote}
	for i, check := range checks {
		if check(plainErr) {
			t.Errorf("checker %d should return false for non-AppError", i)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{"app error uses message", NewAppError(CodeRemote, "servidor indisponível", errors.New("eof")), "x", "servidor indisponível"},
		{"wrapped app error", fmt.Errorf("op: %w", ErrUnauthorized), "x", MsgNotAuthenticated},
		{"app error without message", &AppError{Code: CodeRemote, Status: 500, Err: errors.New("status 500")}, "Erro ao carregar dietas", "Erro ao carregar dietas"},
		{"plain error", errors.New("boom"), "x", "boom"},
		{"empty plain error", errors.New(""), "fallback", "fallback"},
		{"nil error", nil, "fallback", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err, tt.fallback); got != tt.want {
				t.Errorf("ErrorMessage() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"already exists", ErrAlreadyExists, http.StatusConflict},
		{"validation", ErrValidation, http.StatusBadRequest},
		{"internal", ErrInternal, http.StatusInternalServerError},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"remote", NewAppError(CodeRemote, "bad gateway", nil), http.StatusBadGateway},
		{"unknown code", NewAppError(999, "unknown", nil), http.StatusInternalServerError},
		{"non-AppError", errors.New("plain"), http.StatusInternalServerError},
		{"nil error", nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HTTPStatusCode(tt.err)
			if got != tt.want {
				t.Errorf("HTTPStatusCode() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestCodeForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   int
	}{
		{http.StatusUnauthorized, CodeUnauthorized},
		{http.StatusForbidden, CodeUnauthorized},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusConflict, CodeAlreadyExists},
		{http.StatusBadRequest, CodeValidation},
		{http.StatusUnprocessableEntity, CodeValidation},
		{http.StatusInternalServerError, CodeRemote},
		{http.StatusServiceUnavailable, CodeRemote},
	}
	for _, tt := range tests {
		if got := CodeForStatus(tt.status); got != tt.want {
			t.Errorf("CodeForStatus(%d) = %d; want %d", tt.status, got, tt.want)
		}
	}
}
