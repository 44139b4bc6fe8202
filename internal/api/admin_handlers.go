package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boardly/boardly-server/internal/models"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserListResponse{Status: "success", Users: users})
}

// UpdatePlanRole mutates a user's plan and/or role. Admins may change
// anyone; regular users may change only their own plan.
func (h *Handler) UpdatePlanRole(c *gin.Context) {
	var req models.UpdatePlanRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	user, token, err := h.svc.UpdatePlanRole(c.Request.Context(), CurrentUser(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UserResponse{Status: "success", User: user, Token: token})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.svc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{Status: "success", Message: "user deleted"})
}

func (h *Handler) CreatePlanRequest(c *gin.Context) {
	var req models.PlanChangeRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	request, err := h.svc.RequestPlanChange(c.Request.Context(), CurrentUser(c).ID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.PlanRequestResponse{Status: "success", Request: request})
}

func (h *Handler) ListOwnPlanRequests(c *gin.Context) {
	requests, err := h.svc.ListOwnPlanRequests(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PlanRequestListResponse{Status: "success", Requests: requests})
}

func (h *Handler) ListPlanRequests(c *gin.Context) {
	requests, err := h.svc.ListPlanRequests(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PlanRequestListResponse{Status: "success", Requests: requests})
}

func (h *Handler) ResolvePlanRequest(c *gin.Context) {
	var req models.ResolvePlanRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	request, err := h.svc.ResolvePlanRequest(c.Request.Context(), CurrentUser(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PlanRequestResponse{Status: "success", Request: request})
}
