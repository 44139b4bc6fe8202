package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/boardly/boardly-server/internal/models"
	"github.com/boardly/boardly-server/internal/repository"
)

func (s *DefaultService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// UpdatePlanRole mutates a user's plan and/or role. Admins may change
// anyone; a regular user may change only their own plan. A role change
// bumps the stored token version, invalidating every outstanding token
// for the target; a plan-only change does not, so existing sessions keep
// working and simply see the new limits on their next request. When the
// actor changed their own account, a fresh week-long token is returned so
// their client can swap out the now-stale one.
func (s *DefaultService) UpdatePlanRole(ctx context.Context, actor *models.User, targetID string, req models.UpdatePlanRoleRequest) (*models.User, string, error) {
	if req.Plan == nil && req.Role == nil {
		return nil, "", fmt.Errorf("%w: nothing to update", ErrInvalidArgument)
	}

	if actor.Role != models.RoleAdmin {
		if actor.ID != targetID {
			return nil, "", fmt.Errorf("%w: admin access required", ErrForbidden)
		}
		if req.Role != nil {
			return nil, "", fmt.Errorf("%w: only admins can change roles", ErrForbidden)
		}
	}

	target, err := s.repo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, "", fmt.Errorf("error getting user: %w", err)
	}
	if target == nil {
		return nil, "", fmt.Errorf("%w: user not found", ErrNotFound)
	}

	roleChanged := req.Role != nil && *req.Role != target.Role
	planChanged := req.Plan != nil && *req.Plan != target.Plan

	if err := s.repo.UpdateUserPlanRole(ctx, targetID, req.Plan, req.Role, roleChanged); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, "", fmt.Errorf("error updating user: %w", err)
	}

	updated, err := s.repo.GetUserByID(ctx, targetID)
	if err != nil || updated == nil {
		return nil, "", fmt.Errorf("error reloading user: %w", err)
	}

	if planChanged {
		oldPlan := target.Plan
		s.notify(ctx, func(ctx context.Context) error {
			return s.notifier.PlanChanged(ctx, updated, oldPlan, updated.Plan)
		})
	}

	// Reissue only for the actor's own session; tokens the target holds
	// elsewhere die on the next request if the role changed.
	var token string
	if actor.ID == targetID {
		token, err = s.generateToken(updated, reissueTokenDuration)
		if err != nil {
			return nil, "", fmt.Errorf("error generating token: %w", err)
		}
	}

	s.logger.Info("user plan/role updated",
		zap.String("targetId", targetID),
		zap.String("actorId", actor.ID),
		zap.Bool("roleChanged", roleChanged),
		zap.Bool("planChanged", planChanged))

	return updated, token, nil
}

// DeleteUser removes an account and cascades to its boards, collaborator
// rows, share links, archives and plan requests.
func (s *DefaultService) DeleteUser(ctx context.Context, targetID string) error {
	if err := s.repo.DeleteUser(ctx, targetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return fmt.Errorf("error deleting user: %w", err)
	}
	return nil
}

// RequestPlanChange files a plan change request. The storage layer
// enforces at most one pending request per user.
func (s *DefaultService) RequestPlanChange(ctx context.Context, userID string, req models.PlanChangeRequestBody) (*models.PlanChangeRequest, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown account", ErrUnauthenticated)
	}

	if user.Plan == req.RequestedPlan {
		return nil, fmt.Errorf("%w: already on the %s plan", ErrInvalidArgument, req.RequestedPlan)
	}

	request := &models.PlanChangeRequest{
		UserID:        userID,
		RequestedPlan: req.RequestedPlan,
		Reason:        req.Reason,
	}

	if err := s.repo.CreatePlanChangeRequest(ctx, request); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: a plan change request is already pending", ErrConflict)
		}
		return nil, fmt.Errorf("error creating plan request: %w", err)
	}

	return request, nil
}

func (s *DefaultService) ListOwnPlanRequests(ctx context.Context, userID string) ([]models.PlanChangeRequest, error) {
	reqs, err := s.repo.ListPlanChangeRequestsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing plan requests: %w", err)
	}
	return reqs, nil
}

func (s *DefaultService) ListPlanRequests(ctx context.Context, status string) ([]models.PlanChangeRequest, error) {
	if status == "" {
		status = models.PlanRequestPending
	}

	reqs, err := s.repo.ListPlanChangeRequestsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("error listing plan requests: %w", err)
	}
	return reqs, nil
}

// ResolvePlanRequest approves or rejects a pending request. Approval
// applies the requested plan without touching the token version: the
// user's open sessions pick up the new limits on their next request.
func (s *DefaultService) ResolvePlanRequest(ctx context.Context, reviewer *models.User, requestID string, req models.ResolvePlanRequestBody) (*models.PlanChangeRequest, error) {
	request, err := s.repo.GetPlanChangeRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("error getting plan request: %w", err)
	}
	if request == nil {
		return nil, fmt.Errorf("%w: plan request not found", ErrNotFound)
	}
	if request.Status != models.PlanRequestPending {
		return nil, fmt.Errorf("%w: plan request already %s", ErrConflict, request.Status)
	}

	status := models.PlanRequestRejected
	if req.Approve {
		status = models.PlanRequestApproved
	}

	now := time.Now().UTC()
	if err := s.repo.ResolvePlanChangeRequest(ctx, requestID, status, reviewer.ID, req.Reason, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost a race with another reviewer.
			return nil, fmt.Errorf("%w: plan request already resolved", ErrConflict)
		}
		return nil, fmt.Errorf("error resolving plan request: %w", err)
	}

	if req.Approve {
		user, err := s.repo.GetUserByID(ctx, request.UserID)
		if err != nil {
			return nil, fmt.Errorf("error getting user: %w", err)
		}
		if user != nil {
			oldPlan := user.Plan
			if err := s.repo.UpdateUserPlanRole(ctx, user.ID, &request.RequestedPlan, nil, false); err != nil {
				return nil, fmt.Errorf("error applying plan: %w", err)
			}
			s.notify(ctx, func(ctx context.Context) error {
				return s.notifier.PlanChanged(ctx, user, oldPlan, request.RequestedPlan)
			})
		}
	}

	resolved, err := s.repo.GetPlanChangeRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("error reloading plan request: %w", err)
	}

	return resolved, nil
}
