package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boardly/boardly-server/internal/models"
)

// Register creates a new account with a default board and returns a
// bearer token.
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	resp, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a bearer token plus the
// caller's earliest board id.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetProfile returns the authenticated account.
func (h *Handler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, models.UserResponse{
		Status: "success",
		User:   CurrentUser(c),
	})
}
