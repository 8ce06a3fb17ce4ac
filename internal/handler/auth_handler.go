package handler

import (
	"net/http"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/middleware"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler exposes the caller's token and lets it revoke itself.
// Tokens are issued out of band with `bauctl token issue`.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Me godoc
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	out := gin.H{
		"subject":     claims.Subject,
		"jti":         claims.ID,
		"permissions": claims.Permissions,
	}
	if claims.ExpiresAt != nil {
		out["expires_at"] = claims.ExpiresAt.Time
	}
	response.Success(c, http.StatusOK, out)
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes the presented token for the rest of its lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := h.authService.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
		failErr(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "token revoked"})
}
