package models

import (
	"encoding/json"
	"time"
)

// Role values for User.Role
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Plan values for User.Plan
const (
	PlanBasic   = "Basic"
	PlanPro     = "Pro"
	PlanProPlus = "Pro+"
)

// Permission values for collaborators and share links
const (
	PermissionView = "view"
	PermissionEdit = "edit"
)

// Plan change request statuses
const (
	PlanRequestPending  = "pending"
	PlanRequestApproved = "approved"
	PlanRequestRejected = "rejected"
)

// User represents a registered account
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email,omitempty"`
	Password     string    `db:"password" json:"-"` // Password hash, not returned in JSON
	Role         string    `db:"role" json:"role"`
	Plan         string    `db:"plan" json:"plan"`
	TokenVersion int       `db:"token_version" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Board represents a whiteboard owned by a user. Content is an opaque
// JSON blob (canvas geometry) that the server never interprets.
type Board struct {
	ID        string          `db:"id" json:"id"`
	OwnerID   string          `db:"owner_id" json:"ownerId"`
	Name      string          `db:"name" json:"name"`
	Content   json.RawMessage `db:"content" json:"content"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// BoardCollaborator represents durable shared access to a board.
// The owner is never listed as a collaborator.
type BoardCollaborator struct {
	BoardID    string    `db:"board_id" json:"boardId"`
	UserID     string    `db:"user_id" json:"userId"`
	Permission string    `db:"permission" json:"permission"` // "view" or "edit"
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// ShareLink is a time-limited capability grant to a board. The token is
// the primary key and carries 256 bits of cryptographically secure
// randomness.
type ShareLink struct {
	Token      string    `db:"token" json:"token"`
	BoardID    string    `db:"board_id" json:"boardId"`
	Permission string    `db:"permission" json:"permission"`
	CreatedBy  string    `db:"created_by" json:"createdBy"`
	ExpiresAt  time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Expired reports whether the link is past its expiry at the given instant.
func (l *ShareLink) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// BoardArchive is an immutable snapshot of a board taken before a reset.
type BoardArchive struct {
	ID        string          `db:"id" json:"id"`
	OwnerID   string          `db:"owner_id" json:"ownerId"`
	BoardID   string          `db:"board_id" json:"boardId"`
	Name      string          `db:"name" json:"name"`
	Content   json.RawMessage `db:"content" json:"content"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// PlanChangeRequest is a user-initiated request to move to another plan.
// At most one pending request may exist per user at a time.
type PlanChangeRequest struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"userId"`
	RequestedPlan string     `db:"requested_plan" json:"requestedPlan"`
	Status        string     `db:"status" json:"status"`
	Reason        *string    `db:"reason" json:"reason,omitempty"`
	ReviewedBy    *string    `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}

// ValidPlan reports whether p is one of the known subscription plans.
func ValidPlan(p string) bool {
	return p == PlanBasic || p == PlanPro || p == PlanProPlus
}

// ValidPermission reports whether p is a known share/collaborator permission.
func ValidPermission(p string) bool {
	return p == PermissionView || p == PermissionEdit
}

// ValidRole reports whether r is a known account role.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}
