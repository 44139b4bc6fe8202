package models

import "encoding/json"

// Request models
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateBoardRequest struct {
	Name    string          `json:"name" binding:"required,max=255"`
	Content json.RawMessage `json:"content"`
}

// UpdateBoardRequest is a partial patch: nil fields are left untouched.
type UpdateBoardRequest struct {
	Name    *string         `json:"name,omitempty" binding:"omitempty,max=255"`
	Content json.RawMessage `json:"content,omitempty"`
}

type ArchiveBoardRequest struct {
	// Content the board is reset to after the snapshot; defaults to an
	// empty canvas when omitted.
	ResetContent json.RawMessage `json:"resetContent,omitempty"`
}

type CreateShareLinkRequest struct {
	Permission  string `json:"permission" binding:"required,oneof=view edit"`
	ExpiresIn   int    `json:"expiresIn" binding:"required,gt=0"`
	ExpiresUnit string `json:"expiresUnit" binding:"required,oneof=minutes hours days"`
}

type PlanChangeRequestBody struct {
	RequestedPlan string  `json:"requestedPlan" binding:"required,oneof=Basic Pro Pro+"`
	Reason        *string `json:"reason,omitempty"`
}

type ResolvePlanRequestBody struct {
	Approve bool    `json:"approve"`
	Reason  *string `json:"reason,omitempty"`
}

type UpdatePlanRoleRequest struct {
	Plan *string `json:"plan,omitempty" binding:"omitempty,oneof=Basic Pro Pro+"`
	Role *string `json:"role,omitempty" binding:"omitempty,oneof=user admin"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	UserID    string `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
	Plan      string `json:"plan,omitempty"`
	BoardID   string `json:"boardId,omitempty"` // earliest owned board
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type BoardResponse struct {
	Status     string `json:"status"`
	Board      *Board `json:"board,omitempty"`
	Permission string `json:"permission,omitempty"` // owner, edit or view
}

type BoardListResponse struct {
	Status string  `json:"status"`
	Boards []Board `json:"boards"`
}

type ShareLinkResponse struct {
	Status     string `json:"status"`
	Link       string `json:"link,omitempty"`
	Token      string `json:"token,omitempty"`
	Permission string `json:"permission,omitempty"`
	ExpiresAt  string `json:"expiresAt,omitempty"`
}

type ShareResolveResponse struct {
	Status     string `json:"status"`
	BoardID    string `json:"boardId"`
	Permission string `json:"permission"`
	ExpiresAt  string `json:"expiresAt"`
}

type ArchiveResponse struct {
	Status  string        `json:"status"`
	Archive *BoardArchive `json:"archive,omitempty"`
}

type ArchiveListResponse struct {
	Status   string         `json:"status"`
	Archives []BoardArchive `json:"archives"`
}

type PlanRequestResponse struct {
	Status  string             `json:"status"`
	Request *PlanChangeRequest `json:"request,omitempty"`
}

type PlanRequestListResponse struct {
	Status   string              `json:"status"`
	Requests []PlanChangeRequest `json:"requests"`
}

type UserResponse struct {
	Status string `json:"status"`
	User   *User  `json:"user,omitempty"`
	// Token is set only when the mutation invalidated the caller's own
	// token and a replacement was issued.
	Token string `json:"token,omitempty"`
}

type UserListResponse struct {
	Status string `json:"status"`
	Users  []User `json:"users"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
