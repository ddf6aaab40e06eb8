package storage

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"edu-network/internal/models"
)

// EducatorProfileRepository stores the attributes the job matcher reads.
type EducatorProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.EducatorProfile, error)
	// Upsert inserts the profile or overwrites the matching attributes of the existing one.
	Upsert(ctx context.Context, profile *models.EducatorProfile) error
}

type gormEducatorProfileRepository struct {
	db *gorm.DB
}

func NewGormEducatorProfileRepository(db *gorm.DB) EducatorProfileRepository {
	return &gormEducatorProfileRepository{db: db}
}

func (r *gormEducatorProfileRepository) GetByUserID(ctx context.Context, userID uint) (*models.EducatorProfile, error) {
	var profile models.EducatorProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *gormEducatorProfileRepository) Upsert(ctx context.Context, profile *models.EducatorProfile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"expert_subjects", "subjects", "boards", "experience_years", "qualifications", "updated_at",
			}),
		}).
		Create(profile).Error
	if err != nil {
		return err
	}
	// On the update path the returned id is not reliable across dialects.
	stored, err := r.GetByUserID(ctx, profile.UserID)
	if err != nil {
		return err
	}
	*profile = *stored
	return nil
}
