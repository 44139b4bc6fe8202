package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boardly/boardly-server/internal/models"
	"github.com/boardly/boardly-server/internal/plan"
)

// CreateBoard creates a board for the user, subject to the plan's board
// quota. The count is read fresh from the store so plan upgrades take
// effect immediately.
func (s *DefaultService) CreateBoard(ctx context.Context, userID string, req models.CreateBoardRequest) (*models.Board, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown account", ErrUnauthenticated)
	}

	count, err := s.repo.CountBoardsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error counting boards: %w", err)
	}

	if err := plan.CheckLimit(user.Plan, plan.KindBoard, count); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, err.Error())
	}

	board := &models.Board{
		OwnerID: userID,
		Name:    req.Name,
		Content: req.Content,
	}

	if err := s.repo.CreateBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("error creating board: %w", err)
	}

	s.notify(ctx, func(ctx context.Context) error {
		return s.notifier.BoardCreated(ctx, user, board)
	})

	return board, nil
}

func (s *DefaultService) ListOwnedBoards(ctx context.Context, userID string) ([]models.Board, error) {
	boards, err := s.repo.ListBoardsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing boards: %w", err)
	}
	return boards, nil
}

func (s *DefaultService) ListSharedBoards(ctx context.Context, userID string) ([]models.Board, error) {
	boards, err := s.repo.ListBoardsByCollaborator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing shared boards: %w", err)
	}
	return boards, nil
}

// UpdateBoard applies a partial patch to name and/or content. Writes go
// through the same access resolution as reads: owner and edit
// collaborators may write, view collaborators may not.
func (s *DefaultService) UpdateBoard(ctx context.Context, userID, boardID string, req models.UpdateBoardRequest) (*models.Board, error) {
	_, level, err := s.ResolveBoardAccess(ctx, boardID, userID, "")
	if err != nil {
		return nil, err
	}
	if !level.CanMutate() {
		return nil, fmt.Errorf("%w: view access does not permit changes", ErrForbidden)
	}

	if req.Name == nil && req.Content == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidArgument)
	}

	if err := s.repo.UpdateBoard(ctx, boardID, req.Name, req.Content); err != nil {
		return nil, fmt.Errorf("error updating board: %w", err)
	}

	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("error getting board: %w", err)
	}
	if board == nil {
		return nil, fmt.Errorf("%w: board not found", ErrNotFound)
	}

	return board, nil
}

// DeleteBoard removes a board and, via cascade, its collaborators and
// share links. Permitted for the owner and for admins.
func (s *DefaultService) DeleteBoard(ctx context.Context, caller *models.User, boardID string) error {
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return fmt.Errorf("error getting board: %w", err)
	}
	if board == nil {
		return fmt.Errorf("%w: board not found", ErrNotFound)
	}

	if board.OwnerID != caller.ID && caller.Role != models.RoleAdmin {
		// Collaborators know the board exists; strangers get a 404.
		collab, err := s.repo.GetCollaborator(ctx, boardID, caller.ID)
		if err != nil {
			return fmt.Errorf("error getting collaborator: %w", err)
		}
		if collab != nil {
			return fmt.Errorf("%w: only the board owner can delete it", ErrForbidden)
		}
		return fmt.Errorf("%w: board not found", ErrNotFound)
	}

	if err := s.repo.DeleteBoard(ctx, boardID); err != nil {
		return fmt.Errorf("error deleting board: %w", err)
	}

	s.notify(ctx, func(ctx context.Context) error {
		return s.notifier.BoardDeleted(ctx, caller, board)
	})

	return nil
}

// ArchiveBoard snapshots the board's current state and then resets its
// content. Owner only, gated by the plan's reset feature. The snapshot is
// taken before the reset so nothing is lost.
func (s *DefaultService) ArchiveBoard(ctx context.Context, caller *models.User, boardID string, req models.ArchiveBoardRequest) (*models.BoardArchive, error) {
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("error getting board: %w", err)
	}
	if board == nil || board.OwnerID != caller.ID {
		return nil, fmt.Errorf("%w: board not found", ErrNotFound)
	}

	if !plan.CanReset(caller.Plan) {
		return nil, fmt.Errorf("%w: the %s plan does not include board reset", ErrForbidden, caller.Plan)
	}

	archive := &models.BoardArchive{
		OwnerID: caller.ID,
		BoardID: board.ID,
		Name:    board.Name,
		Content: board.Content,
	}

	if err := s.repo.CreateArchive(ctx, archive); err != nil {
		return nil, fmt.Errorf("error creating archive: %w", err)
	}

	reset := req.ResetContent
	if reset == nil {
		reset = json.RawMessage(`{}`)
	}

	if err := s.repo.UpdateBoard(ctx, boardID, nil, reset); err != nil {
		return nil, fmt.Errorf("error resetting board: %w", err)
	}

	return archive, nil
}

// ListBoardArchives lists the caller's snapshots of a board they own.
func (s *DefaultService) ListBoardArchives(ctx context.Context, userID, boardID string) ([]models.BoardArchive, error) {
	archives, err := s.repo.ListArchives(ctx, userID, boardID)
	if err != nil {
		return nil, fmt.Errorf("error listing archives: %w", err)
	}
	return archives, nil
}
