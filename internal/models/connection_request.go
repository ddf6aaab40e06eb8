package models

import "gorm.io/gorm"

// ConnectionRequestStatus 定义连接请求的状态
type ConnectionRequestStatus string

const (
	ConnectionRequestStatusPending   ConnectionRequestStatus = "PENDING"
	ConnectionRequestStatusAccepted  ConnectionRequestStatus = "ACCEPTED"
	ConnectionRequestStatusRejected  ConnectionRequestStatus = "REJECTED"
	ConnectionRequestStatusWithdrawn ConnectionRequestStatus = "WITHDRAWN"
)

// InertRequestStatuses are ignored when looking for an existing request between two users.
var InertRequestStatuses = []ConnectionRequestStatus{
	ConnectionRequestStatusRejected,
	ConnectionRequestStatusWithdrawn,
}

// RequestAction is what a participant can do to a connection request.
type RequestAction string

const (
	RequestActionAccept   RequestAction = "ACCEPT"
	RequestActionReject   RequestAction = "REJECT"
	RequestActionWithdraw RequestAction = "WITHDRAW"
)

// ConnectionRequest is a directed proposal sender -> recipient. Rows are never hard-deleted;
// only Status changes after creation.
type ConnectionRequest struct {
	BaseModel
	SenderID    uint                    `gorm:"not null;index:idx_connection_request_users" json:"senderId"`
	RecipientID uint                    `gorm:"not null;index:idx_connection_request_users;index" json:"recipientId"`
	Status      ConnectionRequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Message     string                  `gorm:"type:text" json:"message,omitempty"`

	// PairLow/PairHigh are the participants in canonical order. The partial unique index keeps
	// at most one PENDING request per pair, whichever direction it was sent in.
	PairLow  uint `gorm:"uniqueIndex:idx_connection_request_pending_pair,where:status = 'PENDING'" json:"-"`
	PairHigh uint `gorm:"uniqueIndex:idx_connection_request_pending_pair,where:status = 'PENDING'" json:"-"`
}

// BeforeCreate fills the canonical pair columns.
func (r *ConnectionRequest) BeforeCreate(_ *gorm.DB) error {
	r.PairLow, r.PairHigh = CanonicalPair(r.SenderID, r.RecipientID)
	return nil
}

// OwnerID implements permissions.Owned; a request belongs to the user who sent it.
func (r *ConnectionRequest) OwnerID() uint {
	return r.SenderID
}

// TableName 指定 ConnectionRequest 模型的表名。
func (ConnectionRequest) TableName() string {
	return "connection_requests"
}

// ConnectionRequestWithUsers includes basic info about both participants.
// Useful for API responses for listing pending requests.
type ConnectionRequestWithUsers struct {
	ConnectionRequest
	Sender    *UserBasicInfo `json:"sender,omitempty"`
	Recipient *UserBasicInfo `json:"recipient,omitempty"`
}
