package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/boardly/boardly-server/internal/models"
)

func (h *Handler) ListBoards(c *gin.Context) {
	boards, err := h.svc.ListOwnedBoards(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BoardListResponse{Status: "success", Boards: boards})
}

func (h *Handler) ListSharedBoards(c *gin.Context) {
	boards, err := h.svc.ListSharedBoards(c.Request.Context(), CurrentUser(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BoardListResponse{Status: "success", Boards: boards})
}

func (h *Handler) CreateBoard(c *gin.Context) {
	var req models.CreateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	board, err := h.svc.CreateBoard(c.Request.Context(), CurrentUser(c).ID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.BoardResponse{Status: "success", Board: board})
}

// GetBoard resolves access from the caller's identity and/or a share
// token in the X-Share-Token header, and returns the board together with
// the resolved permission level.
func (h *Handler) GetBoard(c *gin.Context) {
	var callerID string
	if user := CurrentUser(c); user != nil {
		callerID = user.ID
	}

	board, level, err := h.svc.ResolveBoardAccess(
		c.Request.Context(),
		c.Param("id"),
		callerID,
		c.GetHeader(shareTokenHeader),
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BoardResponse{
		Status:     "success",
		Board:      board,
		Permission: string(level),
	})
}

func (h *Handler) UpdateBoard(c *gin.Context) {
	var req models.UpdateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindingError(c, err)
		return
	}

	board, err := h.svc.UpdateBoard(c.Request.Context(), CurrentUser(c).ID, c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BoardResponse{Status: "success", Board: board})
}

func (h *Handler) DeleteBoard(c *gin.Context) {
	if err := h.svc.DeleteBoard(c.Request.Context(), CurrentUser(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{Status: "success", Message: "board deleted"})
}

// ArchiveBoard snapshots the board and resets its content.
func (h *Handler) ArchiveBoard(c *gin.Context) {
	var req models.ArchiveBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.respondBindingError(c, err)
		return
	}

	archive, err := h.svc.ArchiveBoard(c.Request.Context(), CurrentUser(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.ArchiveResponse{Status: "success", Archive: archive})
}

func (h *Handler) ListBoardArchives(c *gin.Context) {
	archives, err := h.svc.ListBoardArchives(c.Request.Context(), CurrentUser(c).ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ArchiveListResponse{Status: "success", Archives: archives})
}
