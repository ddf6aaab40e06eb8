package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"edu-network/internal/models"
)

// NotificationRepository defines the interface for notification data operations.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListForRecipient(ctx context.Context, recipientID uint, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uint, at time.Time) error
}

type gormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *gormNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *gormNotificationRepository) ListForRecipient(ctx context.Context, recipientID uint, unreadOnly bool) ([]models.Notification, error) {
	notifications := []models.Notification{}
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read_at IS NULL")
	}
	err := q.Order("created_at DESC, id DESC").Find(&notifications).Error
	return notifications, err
}

// MarkRead only stamps unread rows, so the first read time is kept.
func (r *gormNotificationRepository) MarkRead(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", at).Error
}
