package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/boardly/boardly-server/internal/models"
	"github.com/boardly/boardly-server/internal/service"
)

// shareTokenHeader carries a share token on board reads, as an
// alternative to bearer auth.
const shareTokenHeader = "X-Share-Token"

const currentUserKey = "currentUser"

// CurrentUser returns the authenticated account set by the auth
// middleware, or nil on optional-auth routes with no valid token.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(currentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// RequireAuth returns a Gin middleware that rejects requests without a
// valid bearer token. Verification loads the account, so revoked token
// versions and deleted users are rejected immediately.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:  "error",
				Code:    "UNAUTHORIZED",
				Message: "authentication required",
			})
			c.Abort()
			return
		}

		user, err := h.svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Status:  "error",
				Code:    "UNAUTHORIZED",
				Message: err.Error(),
			})
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// OptionalAuth resolves the caller identity when a valid bearer token is
// present but lets anonymous requests through, for routes where a share
// token may stand in for authentication.
func (h *Handler) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if user, err := h.svc.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(currentUserKey, user)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Status:  "error",
				Code:    "FORBIDDEN",
				Message: service.ErrForbidden.Error() + ": admin access required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
