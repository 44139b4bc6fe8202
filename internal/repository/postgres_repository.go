package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/boardly/boardly-server/internal/models"
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	CreateUserWithBoard(ctx context.Context, user *models.User, board *models.Board) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserPlanRole(ctx context.Context, userID string, plan, role *string, bumpTokenVersion bool) error
	DeleteUser(ctx context.Context, userID string) error

	// Board operations
	CreateBoard(ctx context.Context, board *models.Board) error
	GetBoard(ctx context.Context, boardID string) (*models.Board, error)
	UpdateBoard(ctx context.Context, boardID string, name *string, content json.RawMessage) error
	DeleteBoard(ctx context.Context, boardID string) error
	ListBoardsByOwner(ctx context.Context, ownerID string) ([]models.Board, error)
	ListBoardsByCollaborator(ctx context.Context, userID string) ([]models.Board, error)
	GetEarliestBoard(ctx context.Context, ownerID string) (*models.Board, error)
	CountBoardsByOwner(ctx context.Context, ownerID string) (int, error)

	// Collaborator operations
	UpsertCollaborator(ctx context.Context, collab *models.BoardCollaborator) error
	AddCollaboratorIfAbsent(ctx context.Context, collab *models.BoardCollaborator) error
	GetCollaborator(ctx context.Context, boardID, userID string) (*models.BoardCollaborator, error)
	ListCollaborators(ctx context.Context, boardID string) ([]models.BoardCollaborator, error)
	RemoveCollaborator(ctx context.Context, boardID, userID string) error

	// Share link operations
	CreateShareLink(ctx context.Context, link *models.ShareLink) error
	GetShareLink(ctx context.Context, token string) (*models.ShareLink, error)
	DeleteShareLink(ctx context.Context, token string) error
	DeleteExpiredShareLinks(ctx context.Context, now time.Time) (int64, error)

	// Archive operations
	CreateArchive(ctx context.Context, archive *models.BoardArchive) error
	ListArchives(ctx context.Context, ownerID, boardID string) ([]models.BoardArchive, error)

	// Plan change request operations
	CreatePlanChangeRequest(ctx context.Context, req *models.PlanChangeRequest) error
	GetPlanChangeRequest(ctx context.Context, id string) (*models.PlanChangeRequest, error)
	ListPlanChangeRequestsByUser(ctx context.Context, userID string) ([]models.PlanChangeRequest, error)
	ListPlanChangeRequestsByStatus(ctx context.Context, status string) ([]models.PlanChangeRequest, error)
	ResolvePlanChangeRequest(ctx context.Context, id, status, reviewerID string, reason *string, reviewedAt time.Time) error
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (duplicate username, second pending plan request, ...).
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password, role, plan, token_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	prepareUser(user)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Username, user.Email, user.Password, user.Role,
		user.Plan, user.TokenVersion, user.CreatedAt, user.UpdatedAt)

	return err
}

// CreateUserWithBoard creates a user together with their default board in
// a single transaction, so registration never leaves a boardless account.
func (r *PostgresRepository) CreateUserWithBoard(ctx context.Context, user *models.User, board *models.Board) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	prepareUser(user)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password, role, plan, token_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, user.ID, user.Username, user.Email, user.Password, user.Role,
		user.Plan, user.TokenVersion, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return err
	}

	prepareBoard(board)
	board.OwnerID = user.ID

	_, err = tx.ExecContext(ctx, `
		INSERT INTO boards (id, owner_id, name, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, board.ID, board.OwnerID, board.Name, board.Content, board.CreatedAt, board.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT * FROM users WHERE username = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT * FROM users ORDER BY created_at ASC`

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, err
	}

	return users, nil
}

// UpdateUserPlanRole patches plan and/or role; nil fields are left as-is.
// Bumping the token version invalidates every previously issued token for
// the user.
func (r *PostgresRepository) UpdateUserPlanRole(ctx context.Context, userID string, plan, role *string, bumpTokenVersion bool) error {
	bump := 0
	if bumpTokenVersion {
		bump = 1
	}

	query := `
		UPDATE users
		SET plan = COALESCE($2, plan),
		    role = COALESCE($3, role),
		    token_version = token_version + $4,
		    updated_at = $5
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, userID, plan, role, bump, time.Now().UTC())
	if err != nil {
		return err
	}

	return requireRowAffected(res)
}

func (r *PostgresRepository) DeleteUser(ctx context.Context, userID string) error {
	// Boards, collaborator rows, share links, archives and plan requests
	// all cascade from the users foreign keys.
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}

	return requireRowAffected(res)
}

// Board repository methods
func (r *PostgresRepository) CreateBoard(ctx context.Context, board *models.Board) error {
	query := `
		INSERT INTO boards (id, owner_id, name, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	prepareBoard(board)

	_, err := r.db.ExecContext(ctx, query,
		board.ID, board.OwnerID, board.Name, board.Content, board.CreatedAt, board.UpdatedAt)

	return err
}

func (r *PostgresRepository) GetBoard(ctx context.Context, boardID string) (*models.Board, error) {
	query := `SELECT * FROM boards WHERE id = $1`

	var board models.Board
	err := r.db.GetContext(ctx, &board, query, boardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Board not found
		}
		return nil, err
	}

	return &board, nil
}

// UpdateBoard applies a partial patch: a nil name or nil content leaves
// the stored value untouched. Last write wins; there is no conflict
// detection on content.
func (r *PostgresRepository) UpdateBoard(ctx context.Context, boardID string, name *string, content json.RawMessage) error {
	query := `
		UPDATE boards
		SET name = COALESCE($2, name),
		    content = COALESCE($3, content),
		    updated_at = $4
		WHERE id = $1
	`

	var contentArg interface{}
	if content != nil {
		contentArg = []byte(content)
	}

	res, err := r.db.ExecContext(ctx, query, boardID, name, contentArg, time.Now().UTC())
	if err != nil {
		return err
	}

	return requireRowAffected(res)
}

func (r *PostgresRepository) DeleteBoard(ctx context.Context, boardID string) error {
	// Collaborator rows and share links cascade from the boards FK.
	res, err := r.db.ExecContext(ctx, `DELETE FROM boards WHERE id = $1`, boardID)
	if err != nil {
		return err
	}

	return requireRowAffected(res)
}

func (r *PostgresRepository) ListBoardsByOwner(ctx context.Context, ownerID string) ([]models.Board, error) {
	query := `SELECT * FROM boards WHERE owner_id = $1 ORDER BY created_at ASC`

	var boards []models.Board
	if err := r.db.SelectContext(ctx, &boards, query, ownerID); err != nil {
		return nil, err
	}

	return boards, nil
}

func (r *PostgresRepository) ListBoardsByCollaborator(ctx context.Context, userID string) ([]models.Board, error) {
	query := `
		SELECT b.* FROM boards b
		JOIN board_collaborators bc ON b.id = bc.board_id
		WHERE bc.user_id = $1
		ORDER BY b.created_at ASC
	`

	var boards []models.Board
	if err := r.db.SelectContext(ctx, &boards, query, userID); err != nil {
		return nil, err
	}

	return boards, nil
}

func (r *PostgresRepository) GetEarliestBoard(ctx context.Context, ownerID string) (*models.Board, error) {
	query := `SELECT * FROM boards WHERE owner_id = $1 ORDER BY created_at ASC LIMIT 1`

	var board models.Board
	err := r.db.GetContext(ctx, &board, query, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &board, nil
}

func (r *PostgresRepository) CountBoardsByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM boards WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Collaborator repository methods

// UpsertCollaborator adds the user to the board or updates their stored
// permission if already present.
func (r *PostgresRepository) UpsertCollaborator(ctx context.Context, collab *models.BoardCollaborator) error {
	if collab.CreatedAt.IsZero() {
		collab.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO board_collaborators (board_id, user_id, permission, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (board_id, user_id) DO UPDATE SET permission = EXCLUDED.permission
	`

	_, err := r.db.ExecContext(ctx, query,
		collab.BoardID, collab.UserID, collab.Permission, collab.CreatedAt)

	return err
}

// AddCollaboratorIfAbsent adds the user to the board only when not already
// a collaborator, as a single atomic statement. Concurrent first-time
// joiners through share links race safely here: one insert wins, the rest
// are no-ops.
func (r *PostgresRepository) AddCollaboratorIfAbsent(ctx context.Context, collab *models.BoardCollaborator) error {
	if collab.CreatedAt.IsZero() {
		collab.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO board_collaborators (board_id, user_id, permission, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (board_id, user_id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		collab.BoardID, collab.UserID, collab.Permission, collab.CreatedAt)

	return err
}

func (r *PostgresRepository) GetCollaborator(ctx context.Context, boardID, userID string) (*models.BoardCollaborator, error) {
	query := `SELECT * FROM board_collaborators WHERE board_id = $1 AND user_id = $2`

	var collab models.BoardCollaborator
	err := r.db.GetContext(ctx, &collab, query, boardID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not a collaborator
		}
		return nil, err
	}

	return &collab, nil
}

func (r *PostgresRepository) ListCollaborators(ctx context.Context, boardID string) ([]models.BoardCollaborator, error) {
	query := `SELECT * FROM board_collaborators WHERE board_id = $1`

	var collabs []models.BoardCollaborator
	if err := r.db.SelectContext(ctx, &collabs, query, boardID); err != nil {
		return nil, err
	}

	return collabs, nil
}

func (r *PostgresRepository) RemoveCollaborator(ctx context.Context, boardID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM board_collaborators WHERE board_id = $1 AND user_id = $2`,
		boardID, userID)
	return err
}

// Share link repository methods
func (r *PostgresRepository) CreateShareLink(ctx context.Context, link *models.ShareLink) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO share_links (token, board_id, permission, created_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		link.Token, link.BoardID, link.Permission, link.CreatedBy, link.ExpiresAt, link.CreatedAt)

	return err
}

func (r *PostgresRepository) GetShareLink(ctx context.Context, token string) (*models.ShareLink, error) {
	query := `SELECT * FROM share_links WHERE token = $1`

	var link models.ShareLink
	err := r.db.GetContext(ctx, &link, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Link not found
		}
		return nil, err
	}

	return &link, nil
}

// DeleteShareLink removes the link. Deleting an already-deleted link is a
// no-op: the lazy expiry path and the background sweep may race.
func (r *PostgresRepository) DeleteShareLink(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM share_links WHERE token = $1`, token)
	return err
}

// DeleteExpiredShareLinks purges every link whose expiry has passed and
// returns how many were removed.
func (r *PostgresRepository) DeleteExpiredShareLinks(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM share_links WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// Archive repository methods
func (r *PostgresRepository) CreateArchive(ctx context.Context, archive *models.BoardArchive) error {
	if archive.ID == "" {
		archive.ID = uuid.New().String()
	}
	if archive.CreatedAt.IsZero() {
		archive.CreatedAt = time.Now().UTC()
	}
	if archive.Content == nil {
		archive.Content = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO board_archives (id, owner_id, board_id, name, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		archive.ID, archive.OwnerID, archive.BoardID, archive.Name,
		[]byte(archive.Content), archive.CreatedAt)

	return err
}

func (r *PostgresRepository) ListArchives(ctx context.Context, ownerID, boardID string) ([]models.BoardArchive, error) {
	query := `
		SELECT * FROM board_archives
		WHERE owner_id = $1 AND board_id = $2
		ORDER BY created_at DESC
	`

	var archives []models.BoardArchive
	if err := r.db.SelectContext(ctx, &archives, query, ownerID, boardID); err != nil {
		return nil, err
	}

	return archives, nil
}

// Plan change request repository methods
func (r *PostgresRepository) CreatePlanChangeRequest(ctx context.Context, req *models.PlanChangeRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = models.PlanRequestPending
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	// The partial unique index on (user_id) WHERE status='pending'
	// enforces the one-pending-per-user invariant; a violation surfaces
	// through IsUniqueViolation.
	query := `
		INSERT INTO plan_change_requests (id, user_id, requested_plan, status, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.UserID, req.RequestedPlan, req.Status, req.Reason, req.CreatedAt)

	return err
}

func (r *PostgresRepository) GetPlanChangeRequest(ctx context.Context, id string) (*models.PlanChangeRequest, error) {
	query := `SELECT * FROM plan_change_requests WHERE id = $1`

	var req models.PlanChangeRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &req, nil
}

func (r *PostgresRepository) ListPlanChangeRequestsByUser(ctx context.Context, userID string) ([]models.PlanChangeRequest, error) {
	query := `SELECT * FROM plan_change_requests WHERE user_id = $1 ORDER BY created_at DESC`

	var reqs []models.PlanChangeRequest
	if err := r.db.SelectContext(ctx, &reqs, query, userID); err != nil {
		return nil, err
	}

	return reqs, nil
}

func (r *PostgresRepository) ListPlanChangeRequestsByStatus(ctx context.Context, status string) ([]models.PlanChangeRequest, error) {
	query := `SELECT * FROM plan_change_requests WHERE status = $1 ORDER BY created_at ASC`

	var reqs []models.PlanChangeRequest
	if err := r.db.SelectContext(ctx, &reqs, query, status); err != nil {
		return nil, err
	}

	return reqs, nil
}

func (r *PostgresRepository) ResolvePlanChangeRequest(ctx context.Context, id, status, reviewerID string, reason *string, reviewedAt time.Time) error {
	query := `
		UPDATE plan_change_requests
		SET status = $2, reviewed_by = $3, reason = COALESCE($4, reason), reviewed_at = $5
		WHERE id = $1 AND status = 'pending'
	`

	res, err := r.db.ExecContext(ctx, query, id, status, reviewerID, reason, reviewedAt)
	if err != nil {
		return err
	}

	return requireRowAffected(res)
}

// Helpers

func prepareUser(user *models.User) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Plan == "" {
		user.Plan = models.PlanBasic
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
}

func prepareBoard(board *models.Board) {
	if board.ID == "" {
		board.ID = uuid.New().String()
	}
	if board.Content == nil {
		board.Content = json.RawMessage(`{}`)
	}

	now := time.Now().UTC()
	board.CreatedAt = now
	board.UpdatedAt = now
}

// requireRowAffected turns a zero-row update or delete into sql.ErrNoRows
// so callers can distinguish "absent" from "failed".
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
