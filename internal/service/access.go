package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/boardly/boardly-server/internal/models"
)

// AccessLevel is the permission a caller resolved to on a board.
type AccessLevel string

const (
	AccessOwner AccessLevel = "owner"
	AccessEdit  AccessLevel = "edit"
	AccessView  AccessLevel = "view"
)

// CanMutate reports whether the level permits writes to board name or
// content.
func (l AccessLevel) CanMutate() bool {
	return l == AccessOwner || l == AccessEdit
}

// ResolveBoardAccess decides whether the caller may access the board and
// at what level. callerID and shareToken are both optional (empty).
// Evaluation order, first match wins: owner, stored collaborator, share
// token. Any denial surfaces as ErrNotFound so callers cannot probe for
// board existence.
//
// Resolving an edit share link as an authenticated non-collaborator
// enrolls the caller as a durable edit collaborator; see enrollFromShareLink.
func (s *DefaultService) ResolveBoardAccess(ctx context.Context, boardID, callerID, shareToken string) (*models.Board, AccessLevel, error) {
	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return nil, "", fmt.Errorf("error getting board: %w", err)
	}
	if board == nil {
		return nil, "", fmt.Errorf("%w: board not found", ErrNotFound)
	}

	if callerID != "" {
		if board.OwnerID == callerID {
			return board, AccessOwner, nil
		}

		collab, err := s.repo.GetCollaborator(ctx, boardID, callerID)
		if err != nil {
			return nil, "", fmt.Errorf("error getting collaborator: %w", err)
		}
		if collab != nil {
			return board, AccessLevel(collab.Permission), nil
		}
	}

	if shareToken != "" {
		link, err := s.ResolveShareLink(ctx, shareToken)
		if err != nil {
			// Expired and unknown tokens alike deny without leaking
			// whether the board exists.
			return nil, "", fmt.Errorf("%w: board not found", ErrNotFound)
		}

		if link.BoardID == boardID {
			if link.Permission == models.PermissionEdit && callerID != "" {
				if err := s.enrollFromShareLink(ctx, board, callerID); err != nil {
					return nil, "", err
				}
			}
			return board, AccessLevel(link.Permission), nil
		}
	}

	return nil, "", fmt.Errorf("%w: board not found", ErrNotFound)
}

// enrollFromShareLink turns a one-time edit share link into a durable
// collaboration grant for an authenticated caller. The insert is a single
// atomic add-if-absent, so concurrent first-time joiners cannot lose
// updates or clobber an existing permission.
func (s *DefaultService) enrollFromShareLink(ctx context.Context, board *models.Board, userID string) error {
	if board.OwnerID == userID {
		return nil
	}

	err := s.repo.AddCollaboratorIfAbsent(ctx, &models.BoardCollaborator{
		BoardID:    board.ID,
		UserID:     userID,
		Permission: models.PermissionEdit,
	})
	if err != nil {
		return fmt.Errorf("error enrolling collaborator: %w", err)
	}

	s.logger.Info("collaborator enrolled via share link",
		zap.String("boardId", board.ID),
		zap.String("userId", userID))

	return nil
}
