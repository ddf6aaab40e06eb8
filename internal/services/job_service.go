package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"edu-network/internal/matching"
	"edu-network/internal/metrics"
	"edu-network/internal/models"
	"edu-network/internal/permissions"
	"edu-network/internal/storage"
)

// JobInput is the writable part of a job listing.
type JobInput struct {
	Title                   string   `json:"title" validate:"required,max=200"`
	Description             string   `json:"description"`
	Location                string   `json:"location" validate:"max=200"`
	SubjectSpecialization   []string `json:"subjectSpecialization"`
	RequiredSubjects        []string `json:"requiredSubjects"`
	RequiredBoardExperience []string `json:"requiredBoardExperience"`
	RequiredExperienceYears int      `json:"requiredExperienceYears" validate:"gte=0"`
	// MinQualification must be one of the known codes; empty means ANY.
	MinQualification string `json:"minQualification"`
	IsActive         *bool  `json:"isActive"`
}

// EducatorProfileInput is what a teacher submits about themselves.
type EducatorProfileInput struct {
	ExpertSubjects  []string `json:"expertSubjects"`
	Subjects        []string `json:"subjects"`
	Boards          []string `json:"boards"`
	ExperienceYears int      `json:"experienceYears" validate:"gte=0"`
	Qualifications  []string `json:"qualifications"`
}

// JobMatch is a job annotated with its score for one educator.
type JobMatch = matching.RankedJob[*models.JobListing]

// JobService manages job listings, educator profiles and recommendations.
type JobService interface {
	CreateJob(ctx context.Context, ownerID uint, input JobInput) (*models.JobListing, error)
	UpdateJob(ctx context.Context, actorID, jobID uint, input JobInput) (*models.JobListing, error)
	DeleteJob(ctx context.Context, actorID, jobID uint) error
	GetJob(ctx context.Context, jobID uint) (*models.JobListing, error)
	ListActiveJobs(ctx context.Context, limit int) ([]*models.JobListing, error)

	GetEducatorProfile(ctx context.Context, userID uint) (*models.EducatorProfile, error)
	UpsertEducatorProfile(ctx context.Context, userID uint, input EducatorProfileInput) (*models.EducatorProfile, error)

	GetJobMatch(ctx context.Context, userID, jobID uint) (*JobMatch, error)
	RecommendJobs(ctx context.Context, userID uint, limit int) ([]JobMatch, error)
}

type jobService struct {
	jobRepo      storage.JobRepository
	profileRepo  storage.EducatorProfileRepository
	defaultLimit int
}

// NewJobService creates a new JobService. defaultLimit caps RecommendJobs when the caller passes no limit.
func NewJobService(jobRepo storage.JobRepository, profileRepo storage.EducatorProfileRepository, defaultLimit int) JobService {
	return &jobService{jobRepo: jobRepo, profileRepo: profileRepo, defaultLimit: defaultLimit}
}

func parseMinQualification(raw string) (matching.Qualification, error) {
	if strings.TrimSpace(raw) == "" {
		return matching.QualificationAny, nil
	}
	q, ok := matching.ParseQualification(raw)
	if !ok {
		return "", ErrInvalidQualification
	}
	return q, nil
}

func applyJobInput(job *models.JobListing, input JobInput) error {
	q, err := parseMinQualification(input.MinQualification)
	if err != nil {
		return err
	}
	job.Title = strings.TrimSpace(input.Title)
	job.Description = input.Description
	job.Location = input.Location
	job.SubjectSpecialization = input.SubjectSpecialization
	job.RequiredSubjects = input.RequiredSubjects
	job.RequiredBoardExperience = input.RequiredBoardExperience
	job.RequiredExperienceYears = input.RequiredExperienceYears
	job.MinQualification = q
	if input.IsActive != nil {
		job.IsActive = *input.IsActive
	}
	return nil
}

func (s *jobService) CreateJob(ctx context.Context, ownerID uint, input JobInput) (*models.JobListing, error) {
	job := &models.JobListing{OwnerUserID: ownerID, IsActive: true}
	if err := applyJobInput(job, input); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job listing: %w", err)
	}
	zap.L().Info("job listing created", zap.Uint("job", job.ID), zap.Uint("owner", ownerID))
	return job, nil
}

func (s *jobService) GetJob(ctx context.Context, jobID uint) (*models.JobListing, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("load job listing %d: %w", jobID, err)
	}
	return job, nil
}

func (s *jobService) ownedJob(ctx context.Context, actorID, jobID uint) (*models.JobListing, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := permissions.RequireOwner(actorID, job); err != nil {
		return nil, ErrNotOwner
	}
	return job, nil
}

func (s *jobService) UpdateJob(ctx context.Context, actorID, jobID uint, input JobInput) (*models.JobListing, error) {
	job, err := s.ownedJob(ctx, actorID, jobID)
	if err != nil {
		return nil, err
	}
	if err := applyJobInput(job, input); err != nil {
		return nil, err
	}
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("update job listing %d: %w", jobID, err)
	}
	return job, nil
}

func (s *jobService) DeleteJob(ctx context.Context, actorID, jobID uint) error {
	if _, err := s.ownedJob(ctx, actorID, jobID); err != nil {
		return err
	}
	if err := s.jobRepo.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("delete job listing %d: %w", jobID, err)
	}
	zap.L().Info("job listing deleted", zap.Uint("job", jobID), zap.Uint("actor", actorID))
	return nil
}

func (s *jobService) ListActiveJobs(ctx context.Context, limit int) ([]*models.JobListing, error) {
	jobs, err := s.jobRepo.ListActive(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}
	return jobs, nil
}

// GetEducatorProfile returns nil without error when the user has not filled in a profile.
func (s *jobService) GetEducatorProfile(ctx context.Context, userID uint) (*models.EducatorProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load educator profile for user %d: %w", userID, err)
	}
	return profile, nil
}

// canonicalQualifications stores known qualifications by code and keeps anything else as typed.
func canonicalQualifications(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if q, ok := matching.ParseQualification(r); ok {
			out = append(out, string(q))
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *jobService) UpsertEducatorProfile(ctx context.Context, userID uint, input EducatorProfileInput) (*models.EducatorProfile, error) {
	profile := &models.EducatorProfile{
		UserID:          userID,
		ExpertSubjects:  input.ExpertSubjects,
		Subjects:        input.Subjects,
		Boards:          input.Boards,
		ExperienceYears: input.ExperienceYears,
		Qualifications:  canonicalQualifications(input.Qualifications),
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("save educator profile for user %d: %w", userID, err)
	}
	return profile, nil
}

func (s *jobService) GetJobMatch(ctx context.Context, userID, jobID uint) (*JobMatch, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	profile, err := s.GetEducatorProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	ranked := matching.RankJobsForCandidate([]*models.JobListing{job}, profile.MatchProfile())
	metrics.MatchScores.Observe(float64(ranked[0].Score))
	return &ranked[0], nil
}

// RecommendJobs ranks every active listing for the user and keeps the best limit of them.
func (s *jobService) RecommendJobs(ctx context.Context, userID uint, limit int) ([]JobMatch, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	profile, err := s.GetEducatorProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	jobs, err := s.ListActiveJobs(ctx, 0)
	if err != nil {
		return nil, err
	}

	ranked := matching.RankJobsForCandidate(jobs, profile.MatchProfile())
	for _, r := range ranked {
		metrics.MatchScores.Observe(float64(r.Score))
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}
