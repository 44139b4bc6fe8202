// Package mocks provides an in-memory Repository implementation for unit
// tests that should not depend on a running database.
package mocks

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/boardly/boardly-server/internal/models"
)

type collabKey struct {
	boardID string
	userID  string
}

// MemoryRepository keeps everything in maps guarded by one mutex. It
// mirrors the PostgresRepository contract, including nil-on-absent reads,
// sql.ErrNoRows on zero-row mutations and unique-violation errors that
// repository.IsUniqueViolation recognizes.
type MemoryRepository struct {
	mu sync.Mutex

	users        map[string]models.User
	boards       map[string]models.Board
	collabs      map[collabKey]models.BoardCollaborator
	shareLinks   map[string]models.ShareLink
	archives     map[string]models.BoardArchive
	planRequests map[string]models.PlanChangeRequest
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:        make(map[string]models.User),
		boards:       make(map[string]models.Board),
		collabs:      make(map[collabKey]models.BoardCollaborator),
		shareLinks:   make(map[string]models.ShareLink),
		archives:     make(map[string]models.BoardArchive),
		planRequests: make(map[string]models.PlanChangeRequest),
	}
}

func uniqueViolation() error {
	return &pq.Error{Code: "23505"}
}

// User operations

func (m *MemoryRepository) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createUserLocked(user)
}

func (m *MemoryRepository) createUserLocked(user *models.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return uniqueViolation()
		}
	}
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
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryRepository) CreateUserWithBoard(_ context.Context, user *models.User, board *models.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createUserLocked(user); err != nil {
		return err
	}
	board.OwnerID = user.ID
	m.createBoardLocked(board)
	return nil
}

func (m *MemoryRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (m *MemoryRepository) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *MemoryRepository) UpdateUserPlanRole(_ context.Context, userID string, plan, role *string, bumpTokenVersion bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return sql.ErrNoRows
	}
	if plan != nil {
		u.Plan = *plan
	}
	if role != nil {
		u.Role = *role
	}
	if bumpTokenVersion {
		u.TokenVersion++
	}
	u.UpdatedAt = time.Now().UTC()
	m.users[userID] = u
	return nil
}

func (m *MemoryRepository) DeleteUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return sql.ErrNoRows
	}
	delete(m.users, userID)
	for id, b := range m.boards {
		if b.OwnerID == userID {
			m.deleteBoardLocked(id)
		}
	}
	for k := range m.collabs {
		if k.userID == userID {
			delete(m.collabs, k)
		}
	}
	for tok, l := range m.shareLinks {
		if l.CreatedBy == userID {
			delete(m.shareLinks, tok)
		}
	}
	for id, a := range m.archives {
		if a.OwnerID == userID {
			delete(m.archives, id)
		}
	}
	for id, r := range m.planRequests {
		if r.UserID == userID {
			delete(m.planRequests, id)
		}
	}
	return nil
}

// Board operations

func (m *MemoryRepository) CreateBoard(_ context.Context, board *models.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createBoardLocked(board)
	return nil
}

func (m *MemoryRepository) createBoardLocked(board *models.Board) {
	if board.ID == "" {
		board.ID = uuid.New().String()
	}
	if board.Content == nil {
		board.Content = json.RawMessage(`{}`)
	}
	now := time.Now().UTC()
	board.CreatedAt = now
	board.UpdatedAt = now
	m.boards[board.ID] = *board
}

func (m *MemoryRepository) GetBoard(_ context.Context, boardID string) (*models.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.boards[boardID]; ok {
		return &b, nil
	}
	return nil, nil
}

func (m *MemoryRepository) UpdateBoard(_ context.Context, boardID string, name *string, content json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.boards[boardID]
	if !ok {
		return sql.ErrNoRows
	}
	if name != nil {
		b.Name = *name
	}
	if content != nil {
		b.Content = content
	}
	b.UpdatedAt = time.Now().UTC()
	m.boards[boardID] = b
	return nil
}

func (m *MemoryRepository) DeleteBoard(_ context.Context, boardID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[boardID]; !ok {
		return sql.ErrNoRows
	}
	m.deleteBoardLocked(boardID)
	return nil
}

func (m *MemoryRepository) deleteBoardLocked(boardID string) {
	delete(m.boards, boardID)
	for k := range m.collabs {
		if k.boardID == boardID {
			delete(m.collabs, k)
		}
	}
	for tok, l := range m.shareLinks {
		if l.BoardID == boardID {
			delete(m.shareLinks, tok)
		}
	}
}

func (m *MemoryRepository) ListBoardsByOwner(_ context.Context, ownerID string) ([]models.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var boards []models.Board
	for _, b := range m.boards {
		if b.OwnerID == ownerID {
			boards = append(boards, b)
		}
	}
	sortBoardsByCreation(boards)
	return boards, nil
}

func (m *MemoryRepository) ListBoardsByCollaborator(_ context.Context, userID string) ([]models.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var boards []models.Board
	for k := range m.collabs {
		if k.userID == userID {
			if b, ok := m.boards[k.boardID]; ok {
				boards = append(boards, b)
			}
		}
	}
	sortBoardsByCreation(boards)
	return boards, nil
}

func (m *MemoryRepository) GetEarliestBoard(ctx context.Context, ownerID string) (*models.Board, error) {
	boards, _ := m.ListBoardsByOwner(ctx, ownerID)
	if len(boards) == 0 {
		return nil, nil
	}
	return &boards[0], nil
}

func (m *MemoryRepository) CountBoardsByOwner(_ context.Context, ownerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, b := range m.boards {
		if b.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func sortBoardsByCreation(boards []models.Board) {
	for i := 1; i < len(boards); i++ {
		for j := i; j > 0 && boards[j].CreatedAt.Before(boards[j-1].CreatedAt); j-- {
			boards[j], boards[j-1] = boards[j-1], boards[j]
		}
	}
}

// Collaborator operations

func (m *MemoryRepository) UpsertCollaborator(_ context.Context, collab *models.BoardCollaborator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if collab.CreatedAt.IsZero() {
		collab.CreatedAt = time.Now().UTC()
	}
	m.collabs[collabKey{collab.BoardID, collab.UserID}] = *collab
	return nil
}

func (m *MemoryRepository) AddCollaboratorIfAbsent(_ context.Context, collab *models.BoardCollaborator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := collabKey{collab.BoardID, collab.UserID}
	if _, ok := m.collabs[key]; ok {
		return nil
	}
	if collab.CreatedAt.IsZero() {
		collab.CreatedAt = time.Now().UTC()
	}
	m.collabs[key] = *collab
	return nil
}

func (m *MemoryRepository) GetCollaborator(_ context.Context, boardID, userID string) (*models.BoardCollaborator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.collabs[collabKey{boardID, userID}]; ok {
		return &c, nil
	}
	return nil, nil
}

func (m *MemoryRepository) ListCollaborators(_ context.Context, boardID string) ([]models.BoardCollaborator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var collabs []models.BoardCollaborator
	for k, c := range m.collabs {
		if k.boardID == boardID {
			collabs = append(collabs, c)
		}
	}
	return collabs, nil
}

func (m *MemoryRepository) RemoveCollaborator(_ context.Context, boardID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collabs, collabKey{boardID, userID})
	return nil
}

// Share link operations

func (m *MemoryRepository) CreateShareLink(_ context.Context, link *models.ShareLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	m.shareLinks[link.Token] = *link
	return nil
}

func (m *MemoryRepository) GetShareLink(_ context.Context, token string) (*models.ShareLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.shareLinks[token]; ok {
		return &l, nil
	}
	return nil, nil
}

func (m *MemoryRepository) DeleteShareLink(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.shareLinks, token)
	return nil
}

func (m *MemoryRepository) DeleteExpiredShareLinks(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for tok, l := range m.shareLinks {
		if !now.Before(l.ExpiresAt) {
			delete(m.shareLinks, tok)
			deleted++
		}
	}
	return deleted, nil
}

// Archive operations

func (m *MemoryRepository) CreateArchive(_ context.Context, archive *models.BoardArchive) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if archive.ID == "" {
		archive.ID = uuid.New().String()
	}
	if archive.CreatedAt.IsZero() {
		archive.CreatedAt = time.Now().UTC()
	}
	if archive.Content == nil {
		archive.Content = json.RawMessage(`{}`)
	}
	m.archives[archive.ID] = *archive
	return nil
}

func (m *MemoryRepository) ListArchives(_ context.Context, ownerID, boardID string) ([]models.BoardArchive, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var archives []models.BoardArchive
	for _, a := range m.archives {
		if a.OwnerID == ownerID && a.BoardID == boardID {
			archives = append(archives, a)
		}
	}
	return archives, nil
}

// Plan change request operations

func (m *MemoryRepository) CreatePlanChangeRequest(_ context.Context, req *models.PlanChangeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.planRequests {
		if r.UserID == req.UserID && r.Status == models.PlanRequestPending {
			return uniqueViolation()
		}
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = models.PlanRequestPending
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	m.planRequests[req.ID] = *req
	return nil
}

func (m *MemoryRepository) GetPlanChangeRequest(_ context.Context, id string) (*models.PlanChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.planRequests[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m *MemoryRepository) ListPlanChangeRequestsByUser(_ context.Context, userID string) ([]models.PlanChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var reqs []models.PlanChangeRequest
	for _, r := range m.planRequests {
		if r.UserID == userID {
			reqs = append(reqs, r)
		}
	}
	return reqs, nil
}

func (m *MemoryRepository) ListPlanChangeRequestsByStatus(_ context.Context, status string) ([]models.PlanChangeRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var reqs []models.PlanChangeRequest
	for _, r := range m.planRequests {
		if r.Status == status {
			reqs = append(reqs, r)
		}
	}
	return reqs, nil
}

func (m *MemoryRepository) ResolvePlanChangeRequest(_ context.Context, id, status, reviewerID string, reason *string, reviewedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.planRequests[id]
	if !ok || r.Status != models.PlanRequestPending {
		return sql.ErrNoRows
	}
	r.Status = status
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &reviewedAt
	if reason != nil {
		r.Reason = reason
	}
	m.planRequests[id] = r
	return nil
}
