package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardly/boardly-server/internal/models"
	"github.com/boardly/boardly-server/internal/service"
)

func TestCreateBoardPlanLimits(t *testing.T) {
	svc, repo := newTestService(t)
	user, _ := seedUser(t, svc, repo, "alice", models.PlanBasic)
	ctx := context.Background()

	// Registration created one board; a Basic user gets one more.
	_, err := svc.CreateBoard(ctx, user.ID, models.CreateBoardRequest{Name: "second"})
	require.NoError(t, err)

	_, err = svc.CreateBoard(ctx, user.ID, models.CreateBoardRequest{Name: "third"})
	require.ErrorIs(t, err, service.ErrForbidden)
	assert.Contains(t, err.Error(), "2")

	// Upgrading the plan lifts the limit immediately: counts and plans
	// are read fresh from the store on every call.
	pro := models.PlanPro
	require.NoError(t, repo.UpdateUserPlanRole(ctx, user.ID, &pro, nil, false))

	_, err = svc.CreateBoard(ctx, user.ID, models.CreateBoardRequest{Name: "third"})
	assert.NoError(t, err)
}

func TestUpdateBoardPartialPatch(t *testing.T) {
	svc, repo := newTestService(t)
	user, board := seedUser(t, svc, repo, "alice", models.PlanBasic)
	ctx := context.Background()

	content := json.RawMessage(`{"shapes":[{"kind":"rect"}]}`)
	_, err := svc.UpdateBoard(ctx, user.ID, board.ID, models.UpdateBoardRequest{Content: content})
	require.NoError(t, err)

	// Renaming must not clobber content.
	name := "renamed"
	updated, err := svc.UpdateBoard(ctx, user.ID, board.ID, models.UpdateBoardRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.JSONEq(t, string(content), string(updated.Content))

	// And patching content must not clobber the name.
	next := json.RawMessage(`{"shapes":[]}`)
	updated, err = svc.UpdateBoard(ctx, user.ID, board.ID, models.UpdateBoardRequest{Content: next})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.JSONEq(t, string(next), string(updated.Content))

	// An empty patch is rejected.
	_, err = svc.UpdateBoard(ctx, user.ID, board.ID, models.UpdateBoardRequest{})
	assert.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestUpdateBoardRequiresEditAccess(t *testing.T) {
	svc, repo := newTestService(t)
	_, board := seedUser(t, svc, repo, "alice", models.PlanBasic)
	viewer, _ := seedUser(t, svc, repo, "bob", models.PlanBasic)
	stranger, _ := seedUser(t, svc, repo, "carol", models.PlanBasic)

	ctx := context.Background()
	require.NoError(t, repo.UpsertCollaborator(ctx, &models.BoardCollaborator{
		BoardID: board.ID, UserID: viewer.ID, Permission: models.PermissionView,
	}))

	name := "defaced"
	_, err := svc.UpdateBoard(ctx, viewer.ID, board.ID, models.UpdateBoardRequest{Name: &name})
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = svc.UpdateBoard(ctx, stranger.ID, board.ID, models.UpdateBoardRequest{Name: &name})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestDeleteBoardAuthorization(t *testing.T) {
	svc, repo := newTestService(t)
	owner, board := seedUser(t, svc, repo, "alice", models.PlanBasic)
	editor, _ := seedUser(t, svc, repo, "bob", models.PlanBasic)
	admin, _ := seedUser(t, svc, repo, "root", models.PlanBasic)

	ctx := context.Background()
	adminRole := models.RoleAdmin
	require.NoError(t, repo.UpdateUserPlanRole(ctx, admin.ID, nil, &adminRole, true))
	admin, err := repo.GetUserByID(ctx, admin.ID)
	require.NoError(t, err)

	require.NoError(t, repo.UpsertCollaborator(ctx, &models.BoardCollaborator{
		BoardID: board.ID, UserID: editor.ID, Permission: models.PermissionEdit,
	}))

	// An edit collaborator still cannot delete.
	err = svc.DeleteBoard(ctx, editor, board.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// Admins can.
	require.NoError(t, svc.DeleteBoard(ctx, admin, board.ID))

	// Deleting a deleted board is a 404 for everyone, owner included.
	err = svc.DeleteBoard(ctx, owner, board.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestArchiveBoardSnapshotsThenResets(t *testing.T) {
	svc, repo := newTestService(t)
	owner, board := seedUser(t, svc, repo, "alice", models.PlanPro)
	basicOwner, basicBoard := seedUser(t, svc, repo, "bob", models.PlanBasic)
	ctx := context.Background()

	content := json.RawMessage(`{"shapes":["everything"]}`)
	_, err := svc.UpdateBoard(ctx, owner.ID, board.ID, models.UpdateBoardRequest{Content: content})
	require.NoError(t, err)

	archive, err := svc.ArchiveBoard(ctx, owner, board.ID, models.ArchiveBoardRequest{})
	require.NoError(t, err)
	assert.JSONEq(t, string(content), string(archive.Content))
	assert.Equal(t, board.ID, archive.BoardID)

	// The live board was reset.
	reset, err := repo.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(reset.Content))

	archives, err := svc.ListBoardArchives(ctx, owner.ID, board.ID)
	require.NoError(t, err)
	assert.Len(t, archives, 1)

	// Basic plan has no reset feature.
	_, err = svc.ArchiveBoard(ctx, basicOwner, basicBoard.ID, models.ArchiveBoardRequest{})
	assert.ErrorIs(t, err, service.ErrForbidden)
}
