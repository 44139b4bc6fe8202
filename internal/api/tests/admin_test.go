package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boardly/boardly-server/internal/api/testutils"
	"github.com/boardly/boardly-server/internal/models"
)

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// The seeded test user is a regular account.
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/users",
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		"/api/admin/user/"+testCtx.TestUserID,
		nil,
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, adminToken := testutils.CreateUser(t, testCtx, "listadmin", models.RoleAdmin, models.PlanBasic)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/users",
		nil,
		testutils.AuthHeaders(adminToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.UserListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Users, 2)
}

func TestRoleChangeInvalidatesOldToken(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	target, targetToken := testutils.CreateUser(t, testCtx, "promotee", models.RoleUser, models.PlanBasic)
	_, adminToken := testutils.CreateUser(t, testCtx, "promoadmin", models.RoleAdmin, models.PlanBasic)

	// Token works before the role change.
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/me",
		nil,
		testutils.AuthHeaders(targetToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	adminRole := models.RoleAdmin
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/admin/user/%s/plan-role", target.ID),
		models.UpdatePlanRoleRequest{Role: &adminRole},
		testutils.AuthHeaders(adminToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	// Role changes bump the token version; the old token is dead.
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/me",
		nil,
		testutils.AuthHeaders(targetToken),
	)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlanChangeKeepsTokenValid(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	target, targetToken := testutils.CreateUser(t, testCtx, "upgradee", models.RoleUser, models.PlanBasic)
	_, adminToken := testutils.CreateUser(t, testCtx, "upgradeadmin", models.RoleAdmin, models.PlanBasic)

	proPlus := models.PlanProPlus
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/admin/user/%s/plan-role", target.ID),
		models.UpdatePlanRoleRequest{Plan: &proPlus},
		testutils.AuthHeaders(adminToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	// The pre-upgrade token still authenticates, and requests made with
	// it operate under the new plan's entitlements.
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/me",
		nil,
		testutils.AuthHeaders(targetToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	var me models.UserResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, models.PlanProPlus, me.User.Plan)

	board := createBoard(t, testCtx, targetToken, "now shareable")
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/boards/"+board.ID+"/share",
		models.CreateShareLinkRequest{Permission: "view", ExpiresIn: 1, ExpiresUnit: "days"},
		testutils.AuthHeaders(targetToken),
	)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSelfServicePlanChange(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	other, _ := testutils.CreateUser(t, testCtx, "bystander", models.RoleUser, models.PlanBasic)

	// A regular user may change their own plan...
	pro := models.PlanPro
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/admin/user/%s/plan-role", testCtx.TestUserID),
		models.UpdatePlanRoleRequest{Plan: &pro},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.UserResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.PlanPro, resp.User.Plan)

	// ...but not their own role...
	adminRole := models.RoleAdmin
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/admin/user/%s/plan-role", testCtx.TestUserID),
		models.UpdatePlanRoleRequest{Role: &adminRole},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// ...and never anyone else's plan.
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/admin/user/%s/plan-role", other.ID),
		models.UpdatePlanRoleRequest{Plan: &pro},
		testutils.AuthHeaders(testCtx.TestUserJWT),
	)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteUserCascades(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	_, adminToken := testutils.CreateUser(t, testCtx, "deleteadmin", models.RoleAdmin, models.PlanBasic)

	board := createBoard(t, testCtx, testCtx.TestUserJWT, "doomed board")

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		"/api/admin/user/"+testCtx.TestUserID,
		nil,
		testutils.AuthHeaders(adminToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	// The deleted account's boards are gone with it.
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/boards/"+board.ID,
		nil,
		testutils.AuthHeaders(adminToken),
	)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Deleting twice is a 404.
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		"/api/admin/user/"+testCtx.TestUserID,
		nil,
		testutils.AuthHeaders(adminToken),
	)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanRequestLifecycle(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	requester, requesterToken := testutils.CreateUser(t, testCtx, "planrequester", models.RoleUser, models.PlanBasic)
	_, adminToken := testutils.CreateUser(t, testCtx, "planadmin", models.RoleAdmin, models.PlanBasic)

	// Test case 1: File a request
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/plan-requests",
		models.PlanChangeRequestBody{RequestedPlan: models.PlanPro},
		testutils.AuthHeaders(requesterToken),
	)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.PlanRequestResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.PlanRequestPending, created.Request.Status)

	// Test case 2: Only one pending request per user
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/plan-requests",
		models.PlanChangeRequestBody{RequestedPlan: models.PlanProPlus},
		testutils.AuthHeaders(requesterToken),
	)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 3: Admin sees the pending queue
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/admin/plan-requests",
		nil,
		testutils.AuthHeaders(adminToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	var queue models.PlanRequestListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &queue))
	assert.Len(t, queue.Requests, 1)

	// Test case 4: Approval applies the plan
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/admin/plan-requests/"+created.Request.ID,
		models.ResolvePlanRequestBody{Approve: true},
		testutils.AuthHeaders(adminToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	var resolved models.PlanRequestResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.Equal(t, models.PlanRequestApproved, resolved.Request.Status)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/me",
		nil,
		testutils.AuthHeaders(requesterToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	var me models.UserResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, models.PlanPro, me.User.Plan)

	// Test case 5: Resolving twice conflicts
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/admin/plan-requests/"+created.Request.ID,
		models.ResolvePlanRequestBody{Approve: false},
		testutils.AuthHeaders(adminToken),
	)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Test case 6: The requester sees their own history
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/plan-requests",
		nil,
		testutils.AuthHeaders(requesterToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	var history models.PlanRequestListResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history.Requests, 1)
	assert.Equal(t, requester.ID, history.Requests[0].UserID)
}
