package domain

import (
	"errors"
	"net/http"
)

// Error codes for synchronization errors.
const (
	CodeNotFound      = 1
	CodeAlreadyExists = 2
	CodeValidation    = 3
	CodeInternal      = 4
	CodeUnauthorized  = 5
	CodeRemote        = 6
)

// User-facing messages shared across domains.
const (
	MsgNotAuthenticated = "Usuário não autenticado"
	MsgSessionExpired   = "Sessão expirada"
	MsgInvalidData      = "Dados inválidos"
)

// AppError represents a synchronization error with a code, message, and optional wrapped error.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined errors.
//
// To check whether an error matches one of these categories, use the
// corresponding helper function (IsNotFound, IsUnauthorized, etc.)
// instead of errors.Is. The helpers use errors.As with error-code
// comparison, so they correctly match any *AppError that carries the
// same code, including freshly constructed instances from NewAppError
// and wrapped errors. errors.Is only matches by pointer identity with
// the specific sentinel below.
var (
	ErrNotFound       = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists  = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation     = &AppError{Code: CodeValidation, Message: MsgInvalidData}
	ErrInternal       = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized   = &AppError{Code: CodeUnauthorized, Message: MsgNotAuthenticated}
	ErrSessionExpired = &AppError{Code: CodeUnauthorized, Message: MsgSessionExpired}
)

// NewAppError creates a new AppError with the given code, message, and wrapped error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsNotFound reports whether err is or wraps an AppError with CodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsAlreadyExists reports whether err is or wraps an AppError with CodeAlreadyExists.
func IsAlreadyExists(err error) bool {
	return hasCode(err, CodeAlreadyExists)
}

// IsValidation reports whether err is or wraps an AppError with CodeValidation.
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsInternal reports whether err is or wraps an AppError with CodeInternal.
func IsInternal(err error) bool {
	return hasCode(err, CodeInternal)
}

// IsUnauthorized reports whether err is or wraps an AppError with CodeUnauthorized.
func IsUnauthorized(err error) bool {
	return hasCode(err, CodeUnauthorized)
}

// IsRemote reports whether err is or wraps an AppError with CodeRemote.
func IsRemote(err error) bool {
	return hasCode(err, CodeRemote)
}

// hasCode checks whether err is or wraps an *AppError with the given code.
func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// ErrorMessage returns the human-readable message carried by err. An *AppError
// yields its Message, any other error its Error() text, and fallback is used
// when neither produces anything.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Message != "" {
			return appErr.Message
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// HTTPStatusCode maps an error to an HTTP status code.
// If the error is an *AppError, the code is mapped; otherwise http.StatusInternalServerError is returned.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeAlreadyExists:
			return http.StatusConflict
		case CodeValidation:
			return http.StatusBadRequest
		case CodeInternal:
			return http.StatusInternalServerError
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeRemote:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

// CodeForStatus maps a remote HTTP status to an error code.
func CodeForStatus(status int) int {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return CodeUnauthorized
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeAlreadyExists
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	default:
		return CodeRemote
	}
}
