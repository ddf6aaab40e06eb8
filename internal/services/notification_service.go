package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edu-network/internal/events"
	"edu-network/internal/models"
	"edu-network/internal/permissions"
	"edu-network/internal/storage"
)

var notificationTypes = map[events.Type]models.NotificationType{
	events.ConnectionRequestSent: models.NotificationConnectionRequest,
	events.ConnectionEstablished: models.NotificationConnectionAccepted,
	events.FollowCreated:         models.NotificationNewFollower,
}

// NotificationService turns relationship events into in-app notifications.
type NotificationService interface {
	// HandleRelationshipEvent stores a notification for the event's target. Events of an
	// unknown type are ignored; storage failures are returned so the event can be retried.
	HandleRelationshipEvent(ctx context.Context, e events.RelationshipEvent) error
	List(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, actorID, notificationID uint) (*models.Notification, error)
}

type notificationService struct {
	repo storage.NotificationRepository
}

func NewNotificationService(repo storage.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) HandleRelationshipEvent(ctx context.Context, e events.RelationshipEvent) error {
	nt, ok := notificationTypes[e.Type]
	if !ok {
		zap.L().Warn("ignoring relationship event of unknown type", zap.String("type", string(e.Type)))
		return nil
	}
	n := &models.Notification{
		RecipientID: e.TargetID,
		ActorID:     e.ActorID,
		Type:        nt,
		ReferenceID: e.ReferenceID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("store %s notification for user %d: %w", nt, e.TargetID, err)
	}
	zap.L().Debug("notification stored", zap.Uint("recipient", e.TargetID), zap.String("type", string(nt)))
	return nil
}

func (s *notificationService) List(ctx context.Context, userID uint, unreadOnly bool) ([]models.Notification, error) {
	list, err := s.repo.ListForRecipient(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications for user %d: %w", userID, err)
	}
	return list, nil
}

func (s *notificationService) MarkRead(ctx context.Context, actorID, notificationID uint) (*models.Notification, error) {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("load notification %d: %w", notificationID, err)
	}
	if err := permissions.RequireOwner(actorID, n); err != nil {
		return nil, ErrNotOwner
	}
	if n.ReadAt != nil {
		return n, nil
	}

	now := time.Now()
	if err := s.repo.MarkRead(ctx, n.ID, now); err != nil {
		return nil, fmt.Errorf("mark notification %d read: %w", n.ID, err)
	}
	n.ReadAt = &now
	return n, nil
}
