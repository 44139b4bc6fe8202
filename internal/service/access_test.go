package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boardly/boardly-server/internal/mocks"
	"github.com/boardly/boardly-server/internal/models"
	"github.com/boardly/boardly-server/internal/service"
)

func newTestService(t *testing.T) (*service.DefaultService, *mocks.MemoryRepository) {
	t.Helper()
	repo := mocks.NewMemoryRepository()
	svc := service.NewDefaultService(repo, "test-secret-key", "http://localhost:8080", nil, zap.NewNop())
	return svc, repo
}

// seedUser registers an account and returns the user and their default board.
func seedUser(t *testing.T, svc *service.DefaultService, repo *mocks.MemoryRepository, username, plan string) (*models.User, *models.Board) {
	t.Helper()
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.RegisterRequest{
		Username: username,
		Password: "password123",
	})
	require.NoError(t, err)

	if plan != models.PlanBasic {
		require.NoError(t, repo.UpdateUserPlanRole(ctx, resp.UserID, &plan, nil, false))
	}

	user, err := repo.GetUserByID(ctx, resp.UserID)
	require.NoError(t, err)
	require.NotNil(t, user)

	board, err := repo.GetBoard(ctx, resp.BoardID)
	require.NoError(t, err)
	require.NotNil(t, board)

	return user, board
}

func TestResolveAccessOwner(t *testing.T) {
	svc, repo := newTestService(t)
	owner, board := seedUser(t, svc, repo, "alice", models.PlanBasic)

	got, level, err := svc.ResolveBoardAccess(context.Background(), board.ID, owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, service.AccessOwner, level)
	assert.Equal(t, board.ID, got.ID)

	// Owner stays owner regardless of collaborator state.
	other, _ := seedUser(t, svc, repo, "bob", models.PlanBasic)
	require.NoError(t, repo.UpsertCollaborator(context.Background(), &models.BoardCollaborator{
		BoardID:    board.ID,
		UserID:     other.ID,
		Permission: models.PermissionEdit,
	}))

	_, level, err = svc.ResolveBoardAccess(context.Background(), board.ID, owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, service.AccessOwner, level)
}

func TestResolveAccessCollaborator(t *testing.T) {
	svc, repo := newTestService(t)
	_, board := seedUser(t, svc, repo, "alice", models.PlanBasic)
	viewer, _ := seedUser(t, svc, repo, "bob", models.PlanBasic)
	editor, _ := seedUser(t, svc, repo, "carol", models.PlanBasic)

	ctx := context.Background()
	require.NoError(t, repo.UpsertCollaborator(ctx, &models.BoardCollaborator{
		BoardID: board.ID, UserID: viewer.ID, Permission: models.PermissionView,
	}))
	require.NoError(t, repo.UpsertCollaborator(ctx, &models.BoardCollaborator{
		BoardID: board.ID, UserID: editor.ID, Permission: models.PermissionEdit,
	}))

	_, level, err := svc.ResolveBoardAccess(ctx, board.ID, viewer.ID, "")
	require.NoError(t, err)
	assert.Equal(t, service.AccessView, level)
	assert.False(t, level.CanMutate())

	_, level, err = svc.ResolveBoardAccess(ctx, board.ID, editor.ID, "")
	require.NoError(t, err)
	assert.Equal(t, service.AccessEdit, level)
	assert.True(t, level.CanMutate())
}

func TestResolveAccessDeniedLooksLikeNotFound(t *testing.T) {
	svc, repo := newTestService(t)
	_, board := seedUser(t, svc, repo, "alice", models.PlanBasic)
	stranger, _ := seedUser(t, svc, repo, "mallory", models.PlanBasic)

	ctx := context.Background()

	// Unrelated authenticated caller
	_, _, err := svc.ResolveBoardAccess(ctx, board.ID, stranger.ID, "")
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Anonymous caller
	_, _, err = svc.ResolveBoardAccess(ctx, board.ID, "", "")
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Garbage share token
	_, _, err = svc.ResolveBoardAccess(ctx, board.ID, "", "no-such-token")
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Nonexistent board
	_, _, err = svc.ResolveBoardAccess(ctx, "missing", stranger.ID, "")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestEditShareLinkAutoEnrollment(t *testing.T) {
	svc, repo := newTestService(t)
	owner, board := seedUser(t, svc, repo, "alice", models.PlanProPlus)
	joiner, _ := seedUser(t, svc, repo, "bob", models.PlanBasic)

	ctx := context.Background()
	link, _, err := svc.IssueShareLink(ctx, owner, board.ID, models.CreateShareLinkRequest{
		Permission:  models.PermissionEdit,
		ExpiresIn:   1,
		ExpiresUnit: "hours",
	})
	require.NoError(t, err)

	// First resolve with the token grants edit and enrolls durably.
	_, level, err := svc.ResolveBoardAccess(ctx, board.ID, joiner.ID, link.Token)
	require.NoError(t, err)
	assert.Equal(t, service.AccessEdit, level)

	collab, err := repo.GetCollaborator(ctx, board.ID, joiner.ID)
	require.NoError(t, err)
	require.NotNil(t, collab)
	assert.Equal(t, models.PermissionEdit, collab.Permission)

	// Later call without the token still grants edit.
	_, level, err = svc.ResolveBoardAccess(ctx, board.ID, joiner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, service.AccessEdit, level)
}

func TestViewShareLinkNeverEnrolls(t *testing.T) {
	svc, repo := newTestService(t)
	owner, board := seedUser(t, svc, repo, "alice", models.PlanProPlus)
	visitor, _ := seedUser(t, svc, repo, "bob", models.PlanBasic)

	ctx := context.Background()
	link, _, err := svc.IssueShareLink(ctx, owner, board.ID, models.CreateShareLinkRequest{
		Permission:  models.PermissionView,
		ExpiresIn:   1,
		ExpiresUnit: "hours",
	})
	require.NoError(t, err)

	// Authenticated and anonymous resolves both grant view only.
	_, level, err := svc.ResolveBoardAccess(ctx, board.ID, visitor.ID, link.Token)
	require.NoError(t, err)
	assert.Equal(t, service.AccessView, level)

	_, level, err = svc.ResolveBoardAccess(ctx, board.ID, "", link.Token)
	require.NoError(t, err)
	assert.Equal(t, service.AccessView, level)

	collab, err := repo.GetCollaborator(ctx, board.ID, visitor.ID)
	require.NoError(t, err)
	assert.Nil(t, collab)

	// Without the token the visitor has nothing.
	_, _, err = svc.ResolveBoardAccess(ctx, board.ID, visitor.ID, "")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestShareTokenForWrongBoardDenied(t *testing.T) {
	svc, repo := newTestService(t)
	owner, board := seedUser(t, svc, repo, "alice", models.PlanProPlus)
	_, otherBoard := seedUser(t, svc, repo, "bob", models.PlanBasic)

	ctx := context.Background()
	link, _, err := svc.IssueShareLink(ctx, owner, board.ID, models.CreateShareLinkRequest{
		Permission:  models.PermissionEdit,
		ExpiresIn:   1,
		ExpiresUnit: "hours",
	})
	require.NoError(t, err)

	_, _, err = svc.ResolveBoardAccess(ctx, otherBoard.ID, "", link.Token)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestExpiredShareLinkLazyDeletion(t *testing.T) {
	svc, repo := newTestService(t)
	owner, board := seedUser(t, svc, repo, "alice", models.PlanProPlus)

	ctx := context.Background()
	require.NoError(t, repo.CreateShareLink(ctx, &models.ShareLink{
		Token:      "expired-token",
		BoardID:    board.ID,
		Permission: models.PermissionEdit,
		CreatedBy:  owner.ID,
		ExpiresAt:  time.Now().UTC().Add(-time.Minute),
	}))

	// First resolve reports expiry and deletes the record.
	_, err := svc.ResolveShareLink(ctx, "expired-token")
	assert.ErrorIs(t, err, service.ErrShareLinkExpired)

	// Second resolve finds nothing: lazy deletion is idempotent.
	_, err = svc.ResolveShareLink(ctx, "expired-token")
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Through the access resolver an expired token is a plain 404.
	_, _, err = svc.ResolveBoardAccess(ctx, board.ID, "", "expired-token")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
