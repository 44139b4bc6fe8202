package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/boardly/boardly-server/internal/models"
	"github.com/boardly/boardly-server/internal/plan"
)

// shareTokenBytes is the raw entropy behind a share token: 32 bytes,
// 256 bits, base64url-encoded to 43 characters.
const shareTokenBytes = 32

func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// shareTTL converts the request's (expiresIn, expiresUnit) pair into a
// duration.
func shareTTL(expiresIn int, unit string) (time.Duration, error) {
	if expiresIn <= 0 {
		return 0, fmt.Errorf("%w: expiresIn must be positive", ErrInvalidArgument)
	}

	switch unit {
	case "minutes":
		return time.Duration(expiresIn) * time.Minute, nil
	case "hours":
		return time.Duration(expiresIn) * time.Hour, nil
	case "days":
		return time.Duration(expiresIn) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("%w: unknown expiry unit %q", ErrInvalidArgument, unit)
	}
}

// IssueShareLink creates a time-limited capability grant to a board.
// Only the board's owner may issue links, and only on a plan whose policy
// allows sharing. Returns the link record and the absolute shareable URL.
func (s *DefaultService) IssueShareLink(ctx context.Context, requester *models.User, boardID string, req models.CreateShareLinkRequest) (*models.ShareLink, string, error) {
	if !models.ValidPermission(req.Permission) {
		return nil, "", fmt.Errorf("%w: permission must be view or edit", ErrInvalidArgument)
	}

	ttl, err := shareTTL(req.ExpiresIn, req.ExpiresUnit)
	if err != nil {
		return nil, "", err
	}

	board, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return nil, "", fmt.Errorf("error getting board: %w", err)
	}
	if board == nil {
		return nil, "", fmt.Errorf("%w: board not found", ErrNotFound)
	}

	if board.OwnerID != requester.ID {
		// Collaborators know the board exists; strangers must not.
		collab, err := s.repo.GetCollaborator(ctx, boardID, requester.ID)
		if err != nil {
			return nil, "", fmt.Errorf("error getting collaborator: %w", err)
		}
		if collab != nil {
			return nil, "", fmt.Errorf("%w: only the board owner can create share links", ErrForbidden)
		}
		return nil, "", fmt.Errorf("%w: board not found", ErrNotFound)
	}

	if !plan.CanShare(requester.Plan) {
		return nil, "", fmt.Errorf("%w: the %s plan does not include board sharing", ErrForbidden, requester.Plan)
	}

	token, err := newShareToken()
	if err != nil {
		return nil, "", err
	}

	link := &models.ShareLink{
		Token:      token,
		BoardID:    boardID,
		Permission: req.Permission,
		CreatedBy:  requester.ID,
		ExpiresAt:  time.Now().UTC().Add(ttl),
	}

	if err := s.repo.CreateShareLink(ctx, link); err != nil {
		return nil, "", fmt.Errorf("error creating share link: %w", err)
	}

	s.logger.Info("share link issued",
		zap.String("boardId", boardID),
		zap.String("permission", req.Permission),
		zap.Time("expiresAt", link.ExpiresAt))

	return link, fmt.Sprintf("%s/share/%s", s.publicBaseURL, token), nil
}

// ResolveShareLink looks up a share token. An expired link is lazily
// deleted and reported as ErrShareLinkExpired; the next lookup of the
// same token returns ErrNotFound. The resolver never depends on the
// background sweep having run.
func (s *DefaultService) ResolveShareLink(ctx context.Context, token string) (*models.ShareLink, error) {
	link, err := s.repo.GetShareLink(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("error getting share link: %w", err)
	}
	if link == nil {
		return nil, fmt.Errorf("%w: unknown share link", ErrNotFound)
	}

	if link.Expired(time.Now().UTC()) {
		// Lazy deletion; racing the sweep is harmless since deleting an
		// already-deleted link is a no-op.
		if err := s.repo.DeleteShareLink(ctx, token); err != nil {
			s.logger.Warn("failed to delete expired share link", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: this share link has expired", ErrShareLinkExpired)
	}

	return link, nil
}

// RevokeShareLink deletes a link early. Permitted for the link's creator
// and the board's current owner.
func (s *DefaultService) RevokeShareLink(ctx context.Context, token, requesterID string) error {
	link, err := s.repo.GetShareLink(ctx, token)
	if err != nil {
		return fmt.Errorf("error getting share link: %w", err)
	}
	if link == nil {
		return fmt.Errorf("%w: unknown share link", ErrNotFound)
	}

	allowed := link.CreatedBy == requesterID
	if !allowed {
		board, err := s.repo.GetBoard(ctx, link.BoardID)
		if err != nil {
			return fmt.Errorf("error getting board: %w", err)
		}
		allowed = board != nil && board.OwnerID == requesterID
	}
	if !allowed {
		return fmt.Errorf("%w: only the link creator or board owner can revoke it", ErrForbidden)
	}

	if err := s.repo.DeleteShareLink(ctx, token); err != nil {
		return fmt.Errorf("error deleting share link: %w", err)
	}

	return nil
}
