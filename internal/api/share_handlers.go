package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/boardly/boardly-server/internal/models"
)

// CreateShareLink issues a time-limited share token for a board the
// caller owns.
func (h *Handler) CreateShareLink(c *gin.Context) {
	var req models.CreateShareLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	link, url, err := h.svc.IssueShareLink(c.Request.Context(), CurrentUser(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.ShareLinkResponse{
		Status:     "success",
		Link:       url,
		Token:      link.Token,
		Permission: link.Permission,
		ExpiresAt:  link.ExpiresAt.Format(time.RFC3339),
	})
}

// ResolveShareLink looks up a share token. Unknown tokens return 404;
// expired tokens return 410 and are deleted.
func (h *Handler) ResolveShareLink(c *gin.Context) {
	link, err := h.svc.ResolveShareLink(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ShareResolveResponse{
		Status:     "success",
		BoardID:    link.BoardID,
		Permission: link.Permission,
		ExpiresAt:  link.ExpiresAt.Format(time.RFC3339),
	})
}

// RevokeShareLink deletes a share link ahead of its expiry.
func (h *Handler) RevokeShareLink(c *gin.Context) {
	if err := h.svc.RevokeShareLink(c.Request.Context(), c.Param("token"), CurrentUser(c).ID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{Status: "success", Message: "share link revoked"})
}
