package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/boardly/boardly-server/internal/models"
)

// Notifier receives best-effort notifications about account activity.
// Failures never affect the primary operation; the service logs and moves
// on. Email delivery sits behind this interface in deployments that have
// it.
type Notifier interface {
	BoardCreated(ctx context.Context, user *models.User, board *models.Board) error
	BoardDeleted(ctx context.Context, user *models.User, board *models.Board) error
	PlanChanged(ctx context.Context, user *models.User, oldPlan, newPlan string) error
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) BoardCreated(context.Context, *models.User, *models.Board) error { return nil }
func (NopNotifier) BoardDeleted(context.Context, *models.User, *models.Board) error { return nil }
func (NopNotifier) PlanChanged(context.Context, *models.User, string, string) error { return nil }

// LogNotifier records notifications in the application log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) BoardCreated(_ context.Context, user *models.User, board *models.Board) error {
	n.logger.Info("board created",
		zap.String("userId", user.ID),
		zap.String("boardId", board.ID),
		zap.String("name", board.Name))
	return nil
}

func (n *LogNotifier) BoardDeleted(_ context.Context, user *models.User, board *models.Board) error {
	n.logger.Info("board deleted",
		zap.String("userId", user.ID),
		zap.String("boardId", board.ID))
	return nil
}

func (n *LogNotifier) PlanChanged(_ context.Context, user *models.User, oldPlan, newPlan string) error {
	n.logger.Info("plan changed",
		zap.String("userId", user.ID),
		zap.String("oldPlan", oldPlan),
		zap.String("newPlan", newPlan))
	return nil
}

// notify runs a notification hook best-effort: an error is logged and
// never surfaced to the caller.
func (s *DefaultService) notify(ctx context.Context, fn func(ctx context.Context) error) {
	if err := fn(ctx); err != nil {
		s.logger.Warn("notification failed", zap.Error(err))
	}
}
