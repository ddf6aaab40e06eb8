package models

import "time"

// NotificationType mirrors the relationship event that produced the notification.
type NotificationType string

const (
	NotificationConnectionRequest  NotificationType = "connection_request"
	NotificationConnectionAccepted NotificationType = "connection_accepted"
	NotificationNewFollower        NotificationType = "new_follower"
)

// Notification is an in-app notice for RecipientID about something ActorID did.
type Notification struct {
	BaseModel
	RecipientID uint             `gorm:"not null;index" json:"recipientId"`
	ActorID     uint             `gorm:"not null" json:"actorId"`
	Type        NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	ReferenceID uint             `json:"referenceId,omitempty"` // e.g. the connection request id
	ReadAt      *time.Time       `json:"readAt,omitempty"`
}

// OwnerID implements permissions.Owned.
func (n *Notification) OwnerID() uint {
	return n.RecipientID
}

// TableName 指定 Notification 模型的表名。
func (Notification) TableName() string {
	return "notifications"
}
