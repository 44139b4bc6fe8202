package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardly/boardly-server/internal/models"
	"github.com/boardly/boardly-server/internal/service"
)

func TestIssueShareLinkOwnerOnly(t *testing.T) {
	svc, repo := newTestService(t)
	_, board := seedUser(t, svc, repo, "alice", models.PlanProPlus)
	editor, _ := seedUser(t, svc, repo, "bob", models.PlanProPlus)
	stranger, _ := seedUser(t, svc, repo, "carol", models.PlanProPlus)

	ctx := context.Background()
	require.NoError(t, repo.UpsertCollaborator(ctx, &models.BoardCollaborator{
		BoardID: board.ID, UserID: editor.ID, Permission: models.PermissionEdit,
	}))

	req := models.CreateShareLinkRequest{Permission: models.PermissionView, ExpiresIn: 1, ExpiresUnit: "hours"}

	// An edit collaborator knows the board exists but may not share it.
	_, _, err := svc.IssueShareLink(ctx, editor, board.ID, req)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// A stranger gets a 404, not a 403.
	_, _, err = svc.IssueShareLink(ctx, stranger, board.ID, req)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestIssueShareLinkPlanGate(t *testing.T) {
	svc, repo := newTestService(t)
	basic, basicBoard := seedUser(t, svc, repo, "basic", models.PlanBasic)
	pro, proBoard := seedUser(t, svc, repo, "pro", models.PlanPro)
	proPlus, proPlusBoard := seedUser(t, svc, repo, "proplus", models.PlanProPlus)

	ctx := context.Background()
	req := models.CreateShareLinkRequest{Permission: models.PermissionView, ExpiresIn: 1, ExpiresUnit: "days"}

	_, _, err := svc.IssueShareLink(ctx, basic, basicBoard.ID, req)
	require.ErrorIs(t, err, service.ErrForbidden)
	assert.Contains(t, err.Error(), "Basic")

	_, _, err = svc.IssueShareLink(ctx, pro, proBoard.ID, req)
	assert.ErrorIs(t, err, service.ErrForbidden)

	link, url, err := svc.IssueShareLink(ctx, proPlus, proPlusBoard.ID, req)
	require.NoError(t, err)
	assert.Contains(t, url, link.Token)
}

func TestIssueShareLinkValidation(t *testing.T) {
	svc, repo := newTestService(t)
	owner, board := seedUser(t, svc, repo, "alice", models.PlanProPlus)
	ctx := context.Background()

	_, _, err := svc.IssueShareLink(ctx, owner, board.ID, models.CreateShareLinkRequest{
		Permission: "admin", ExpiresIn: 1, ExpiresUnit: "hours",
	})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	_, _, err = svc.IssueShareLink(ctx, owner, board.ID, models.CreateShareLinkRequest{
		Permission: models.PermissionView, ExpiresIn: 0, ExpiresUnit: "hours",
	})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)

	_, _, err = svc.IssueShareLink(ctx, owner, board.ID, models.CreateShareLinkRequest{
		Permission: models.PermissionView, ExpiresIn: 1, ExpiresUnit: "fortnights",
	})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestShareTokensAreLongAndUnique(t *testing.T) {
	svc, repo := newTestService(t)
	owner, board := seedUser(t, svc, repo, "alice", models.PlanProPlus)
	ctx := context.Background()

	req := models.CreateShareLinkRequest{Permission: models.PermissionView, ExpiresIn: 1, ExpiresUnit: "hours"}

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		link, _, err := svc.IssueShareLink(ctx, owner, board.ID, req)
		require.NoError(t, err)
		// 32 random bytes base64url-encode to 43 characters.
		assert.Len(t, link.Token, 43)
		assert.False(t, seen[link.Token])
		seen[link.Token] = true
	}
}

func TestRevokeShareLink(t *testing.T) {
	svc, repo := newTestService(t)
	owner, board := seedUser(t, svc, repo, "alice", models.PlanProPlus)
	other, _ := seedUser(t, svc, repo, "bob", models.PlanBasic)

	ctx := context.Background()
	req := models.CreateShareLinkRequest{Permission: models.PermissionView, ExpiresIn: 1, ExpiresUnit: "hours"}

	link, _, err := svc.IssueShareLink(ctx, owner, board.ID, req)
	require.NoError(t, err)

	// Unrelated user may not revoke.
	err = svc.RevokeShareLink(ctx, link.Token, other.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// Owner (also the creator here) may.
	require.NoError(t, svc.RevokeShareLink(ctx, link.Token, owner.ID))

	_, err = svc.ResolveShareLink(ctx, link.Token)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Revoking an unknown token is a 404.
	err = svc.RevokeShareLink(ctx, "gone", owner.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestShareLinkExpiryWindow(t *testing.T) {
	svc, repo := newTestService(t)
	owner, board := seedUser(t, svc, repo, "alice", models.PlanProPlus)
	ctx := context.Background()

	link, _, err := svc.IssueShareLink(ctx, owner, board.ID, models.CreateShareLinkRequest{
		Permission: models.PermissionEdit, ExpiresIn: 1, ExpiresUnit: "minutes",
	})
	require.NoError(t, err)

	// A minute-long link expires about a minute out.
	remaining := time.Until(link.ExpiresAt)
	assert.Greater(t, remaining, 50*time.Second)
	assert.LessOrEqual(t, remaining, time.Minute)

	// Still resolvable before expiry.
	resolved, err := svc.ResolveShareLink(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, board.ID, resolved.BoardID)

	// Simulate the clock passing expiry by rewriting the stored record.
	require.NoError(t, repo.DeleteShareLink(ctx, link.Token))
	expired := *link
	expired.ExpiresAt = time.Now().UTC().Add(-61 * time.Second)
	require.NoError(t, repo.CreateShareLink(ctx, &expired))

	_, err = svc.ResolveShareLink(ctx, link.Token)
	assert.ErrorIs(t, err, service.ErrShareLinkExpired)
}
