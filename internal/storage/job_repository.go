package storage

import (
	"context"

	"gorm.io/gorm"

	"edu-network/internal/models"
)

// JobRepository defines the interface for job listing data operations.
type JobRepository interface {
	Create(ctx context.Context, job *models.JobListing) error
	GetByID(ctx context.Context, id uint) (*models.JobListing, error)
	Update(ctx context.Context, job *models.JobListing) error
	Delete(ctx context.Context, id uint) error
	// ListActive returns active listings, newest first. limit <= 0 means no limit.
	ListActive(ctx context.Context, limit int) ([]*models.JobListing, error)
}

type gormJobRepository struct {
	db *gorm.DB
}

func NewGormJobRepository(db *gorm.DB) JobRepository {
	return &gormJobRepository{db: db}
}

func (r *gormJobRepository) Create(ctx context.Context, job *models.JobListing) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *gormJobRepository) GetByID(ctx context.Context, id uint) (*models.JobListing, error) {
	var job models.JobListing
	if err := r.db.WithContext(ctx).First(&job, id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *gormJobRepository) Update(ctx context.Context, job *models.JobListing) error {
	if job.ID == 0 {
		return gorm.ErrMissingWhereClause
	}
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *gormJobRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.JobListing{}, id).Error
}

func (r *gormJobRepository) ListActive(ctx context.Context, limit int) ([]*models.JobListing, error) {
	jobs := []*models.JobListing{}
	q := r.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
