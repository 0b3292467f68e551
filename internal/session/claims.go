package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role claim names issued by the remote API. ASP.NET identity emits the long form.
var roleClaims = []string{
	"role",
	"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
}

// Claims is the subset of token claims the client cares about. The token
// signature is never verified locally; the server remains the authority.
type Claims struct {
	Subject   string    `json:"subject,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Expired reports whether the token carries an exp claim that lies before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// IsAdmin reports whether the role claim names the admin role.
func (c Claims) IsAdmin() bool {
	return c.Role == "admin" || c.Role == "Admin"
}

// ParseClaims decodes token without verifying its signature. ok is false for
// opaque (non-JWT) tokens.
func ParseClaims(token string) (claims Claims, ok bool) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, false
	}

	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	if email, ok := mc["email"].(string); ok {
		claims.Email = email
	}
	for _, name := range roleClaims {
		switch v := mc[name].(type) {
		case string:
			claims.Role = v
		case []any:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					claims.Role = s
				}
			}
		}
		if claims.Role != "" {
			break
		}
	}
	return claims, true
}
