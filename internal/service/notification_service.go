package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/nextai/nextai/internal/model"
	"github.com/nextai/nextai/internal/pkg/timeutil"
	"github.com/nextai/nextai/internal/repo"
)

type NotificationService struct {
	notifications *repo.NotificationRepo
}

func NewNotificationService(notifications *repo.NotificationRepo) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// Notify records a notification for a user. Failures are logged and dropped;
// a lost notification never fails the action that produced it.
func (s *NotificationService) Notify(ctx context.Context, userID, kind, body string) {
	item := &model.Notification{
		ID:     newID(),
		UserID: userID,
		Kind:   kind,
		Body:   body,
		Ctime:  timeutil.NowUnix(),
	}
	if err := s.notifications.Create(ctx, item); err != nil {
		logutil.GetLogger(ctx).Warn("create notification failed",
			zap.String("user_id", userID),
			zap.String("type", kind),
			zap.Error(err),
		)
	}
}

// Broadcast delivers an announcement to every active user.
func (s *NotificationService) Broadcast(ctx context.Context, body string) error {
	return s.notifications.Broadcast(ctx, model.NotificationAnnouncement, body, timeutil.NowUnix())
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*model.Notification, error) {
	return s.notifications.ListByUser(ctx, userID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.notifications.MarkRead(ctx, userID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notifications.MarkAllRead(ctx, userID)
}
