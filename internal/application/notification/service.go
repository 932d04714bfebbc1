// Package notification provides the application layer for in-app notifications
package notification

import (
	"context"
	"errors"

	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Service stores notifications and fans them out to live connections
type Service struct {
	repo   outbound.NotificationRepository
	pusher outbound.NotificationPusher
	logger *zap.Logger
}

var _ inbound.NotificationService = (*Service)(nil)

// NewService creates a new notification service. pusher may be nil when
// live delivery is disabled.
func NewService(repo outbound.NotificationRepository, pusher outbound.NotificationPusher, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		pusher: pusher,
		logger: logger.Named("notification-service"),
	}
}

// Notify persists a notification for userID and pushes it to any open stream
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, kind notification.Kind, title, body, link string) error {
	n := notification.New(userID, kind, title, body, link)
	if err := s.repo.Create(ctx, n); err != nil {
		return apperrors.NewDatabaseError("create notification", err)
	}

	if s.pusher != nil {
		s.pusher.Push(userID, n)
	}

	s.logger.Debug("Notification stored",
		zap.String("user_id", userID.String()),
		zap.String("kind", string(kind)),
	)
	return nil
}

// List returns the actor's most recent notifications, newest first
func (s *Service) List(ctx context.Context, actor inbound.Actor, limit int) ([]*notification.Notification, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	items, err := s.repo.FindByUser(ctx, actor.UserID, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list notifications", err)
	}
	if items == nil {
		items = []*notification.Notification{}
	}
	return items, nil
}

// MarkRead flags one of the actor's notifications as read
func (s *Service) MarkRead(ctx context.Context, actor inbound.Actor, id uuid.UUID) (*notification.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			return nil, apperrors.NewNotFoundError("notification")
		}
		return nil, apperrors.NewDatabaseError("find notification", err)
	}

	// someone else's notification is reported as missing
	if n.UserID != actor.UserID {
		return nil, apperrors.NewNotFoundError("notification")
	}

	if n.Read {
		return n, nil
	}

	n.MarkRead()
	if err := s.repo.MarkRead(ctx, n); err != nil {
		return nil, apperrors.NewDatabaseError("mark notification read", err)
	}
	return n, nil
}
