package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"edu-network/internal/models"
)

// PrivacyRepository stores per-user privacy settings.
type PrivacyRepository interface {
	// GetOrCreate returns the user's settings, inserting the defaults on first access.
	GetOrCreate(ctx context.Context, userID uint) (*models.PrivacySettings, error)
	Update(ctx context.Context, settings *models.PrivacySettings) error
}

type gormPrivacyRepository struct {
	db *gorm.DB
}

func NewGormPrivacyRepository(db *gorm.DB) PrivacyRepository {
	return &gormPrivacyRepository{db: db}
}

func (r *gormPrivacyRepository) GetOrCreate(ctx context.Context, userID uint) (*models.PrivacySettings, error) {
	var settings models.PrivacySettings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	defaults := models.DefaultPrivacySettings(userID)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(defaults)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return defaults, nil
	}

	// Lost the race to a concurrent first read.
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *gormPrivacyRepository) Update(ctx context.Context, settings *models.PrivacySettings) error {
	if settings.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Save(settings).Error
}
