package auth

import "time"

// LoginRequest represents the input for login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// SessionResponse describes the current session. The tokens themselves stay
// in the encrypted session store and are never returned.
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Subject       string     `json:"subject,omitempty"`
	Email         string     `json:"email,omitempty"`
	Role          string     `json:"role,omitempty"`
	Admin         bool       `json:"admin"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}
