package storage

import (
	"context"

	"gorm.io/gorm"

	"edu-network/internal/models"
)

// ConnectionRequestRepository defines the interface for connection request data operations.
type ConnectionRequestRepository interface {
	// Create inserts the request in a savepoint, so a unique violation (gorm.ErrDuplicatedKey)
	// leaves an enclosing transaction usable.
	Create(ctx context.Context, request *models.ConnectionRequest) error
	GetByID(ctx context.Context, requestID uint) (*models.ConnectionRequest, error)
	// FindLiveBetween returns the newest request between the two users, in either direction,
	// whose status is not REJECTED or WITHDRAWN. It returns nil, nil when there is none.
	FindLiveBetween(ctx context.Context, userID1, userID2 uint) (*models.ConnectionRequest, error)
	// FindPendingBetween is FindLiveBetween restricted to PENDING rows.
	FindPendingBetween(ctx context.Context, userID1, userID2 uint) (*models.ConnectionRequest, error)
	// TransitionStatus sets the status to `to` if the current status is one of `from`
	// (any status when from is empty). It reports whether a row was changed.
	TransitionStatus(ctx context.Context, requestID uint, to models.ConnectionRequestStatus, from ...models.ConnectionRequestStatus) (bool, error)
	ListPendingForRecipient(ctx context.Context, recipientID uint) ([]models.ConnectionRequest, error)
	ListPendingFromSender(ctx context.Context, senderID uint) ([]models.ConnectionRequest, error)
}

type gormConnectionRequestRepository struct {
	db *gorm.DB
}

func NewGormConnectionRequestRepository(db *gorm.DB) ConnectionRequestRepository {
	return &gormConnectionRequestRepository{db: db}
}

func (r *gormConnectionRequestRepository) Create(ctx context.Context, request *models.ConnectionRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(request).Error
	})
}

func (r *gormConnectionRequestRepository) GetByID(ctx context.Context, requestID uint) (*models.ConnectionRequest, error) {
	var request models.ConnectionRequest
	if err := r.db.WithContext(ctx).First(&request, requestID).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *gormConnectionRequestRepository) betweenPair(ctx context.Context, userID1, userID2 uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)", userID1, userID2, userID2, userID1)
}

func (r *gormConnectionRequestRepository) FindLiveBetween(ctx context.Context, userID1, userID2 uint) (*models.ConnectionRequest, error) {
	var request models.ConnectionRequest
	err := r.betweenPair(ctx, userID1, userID2).
		Where("status NOT IN ?", models.InertRequestStatuses).
		Order("created_at DESC, id DESC").
		First(&request).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil // No live request found is not an error in this context
		}
		return nil, err
	}
	return &request, nil
}

func (r *gormConnectionRequestRepository) FindPendingBetween(ctx context.Context, userID1, userID2 uint) (*models.ConnectionRequest, error) {
	var request models.ConnectionRequest
	err := r.betweenPair(ctx, userID1, userID2).
		Where("status = ?", models.ConnectionRequestStatusPending).
		Order("created_at DESC, id DESC").
		First(&request).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *gormConnectionRequestRepository) TransitionStatus(ctx context.Context, requestID uint, to models.ConnectionRequestStatus, from ...models.ConnectionRequestStatus) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.ConnectionRequest{}).Where("id = ?", requestID)
	if len(from) > 0 {
		q = q.Where("status IN ?", from)
	}
	res := q.Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormConnectionRequestRepository) ListPendingForRecipient(ctx context.Context, recipientID uint) ([]models.ConnectionRequest, error) {
	var requests []models.ConnectionRequest
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND status = ?", recipientID, models.ConnectionRequestStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *gormConnectionRequestRepository) ListPendingFromSender(ctx context.Context, senderID uint) ([]models.ConnectionRequest, error) {
	var requests []models.ConnectionRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ? AND status = ?", senderID, models.ConnectionRequestStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}
