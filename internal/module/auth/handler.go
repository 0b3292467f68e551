package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/coachsync/internal/pkg"
)

// AuthHandler handles the session endpoints.
type AuthHandler struct {
	svc Service
}

// NewHandler creates a new AuthHandler with the given service.
func NewHandler(svc Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, resp)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context()); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// Session handles GET /api/v1/auth/session.
func (h *AuthHandler) Session(c *gin.Context) {
	resp, err := h.svc.Session(c.Request.Context())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, resp)
}
