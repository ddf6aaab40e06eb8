package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"edu-network/internal/models"
)

// ConnectionRepository defines the interface for connection data operations.
// Every method canonicalises the pair itself, so callers may pass the users in any order.
type ConnectionRepository interface {
	// GetOrCreate inserts the canonical row unless it already exists. created is false when
	// the row was already there (including when a concurrent insert won).
	GetOrCreate(ctx context.Context, userID1, userID2 uint) (conn *models.Connection, created bool, err error)
	Get(ctx context.Context, userID1, userID2 uint) (*models.Connection, error)
	Exists(ctx context.Context, userID1, userID2 uint) (bool, error)
	// Delete removes the pair's row and reports whether one existed.
	Delete(ctx context.Context, userID1, userID2 uint) (bool, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Connection, error)
	GetConnectedUserIDs(ctx context.Context, userID uint) ([]uint, error)
}

type gormConnectionRepository struct {
	db *gorm.DB
}

// NewGormConnectionRepository creates a new GormConnectionRepository.
func NewGormConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &gormConnectionRepository{db: db}
}

func (r *gormConnectionRepository) GetOrCreate(ctx context.Context, userID1, userID2 uint) (*models.Connection, bool, error) {
	conn := models.NewConnection(userID1, userID2)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}}, DoNothing: true}).
		Create(conn)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return conn, true, nil
	}
	existing, err := r.Get(ctx, userID1, userID2)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *gormConnectionRepository) Get(ctx context.Context, userID1, userID2 uint) (*models.Connection, error) {
	a, b := models.CanonicalPair(userID1, userID2)
	var conn models.Connection
	if err := r.db.WithContext(ctx).Where("user_a_id = ? AND user_b_id = ?", a, b).First(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *gormConnectionRepository) Exists(ctx context.Context, userID1, userID2 uint) (bool, error) {
	a, b := models.CanonicalPair(userID1, userID2)
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Connection{}).Where("user_a_id = ? AND user_b_id = ?", a, b).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormConnectionRepository) Delete(ctx context.Context, userID1, userID2 uint) (bool, error) {
	a, b := models.CanonicalPair(userID1, userID2)
	res := r.db.WithContext(ctx).Where("user_a_id = ? AND user_b_id = ?", a, b).Delete(&models.Connection{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormConnectionRepository) ListForUser(ctx context.Context, userID uint) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&conns).Error
	return conns, err
}

// GetConnectedUserIDs retrieves the ids of everyone userID is connected with.
func (r *gormConnectionRepository) GetConnectedUserIDs(ctx context.Context, userID uint) ([]uint, error) {
	// userID can sit on either side of the canonical pair.
	var idsPart1 []uint
	err := r.db.WithContext(ctx).Model(&models.Connection{}).
		Where("user_a_id = ?", userID).
		Pluck("user_b_id", &idsPart1).Error
	if err != nil {
		return nil, err
	}

	var idsPart2 []uint
	err = r.db.WithContext(ctx).Model(&models.Connection{}).
		Where("user_b_id = ?", userID).
		Pluck("user_a_id", &idsPart2).Error
	if err != nil {
		return nil, err
	}

	return append(idsPart1, idsPart2...), nil
}
