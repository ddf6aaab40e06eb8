package models

import "edu-network/internal/matching"

// JobListing is a faculty position posted by an institution user.
type JobListing struct {
	BaseModel
	OwnerUserID             uint                   `gorm:"not null;index" json:"ownerId"`
	Title                   string                 `gorm:"type:varchar(200);not null" json:"title"`
	Description             string                 `gorm:"type:text" json:"description,omitempty"`
	Location                string                 `gorm:"type:varchar(200)" json:"location,omitempty"`
	SubjectSpecialization   []string               `gorm:"type:text;serializer:json" json:"subjectSpecialization"`
	RequiredSubjects        []string               `gorm:"type:text;serializer:json" json:"requiredSubjects,omitempty"`
	RequiredBoardExperience []string               `gorm:"type:text;serializer:json" json:"requiredBoardExperience"`
	RequiredExperienceYears int                    `gorm:"not null;default:0" json:"requiredExperienceYears"`
	MinQualification        matching.Qualification `gorm:"type:varchar(20);not null;default:'ANY'" json:"minQualification"`
	IsActive                bool                   `gorm:"not null;index" json:"isActive"`
}

// OwnerID implements permissions.Owned.
func (j *JobListing) OwnerID() uint {
	return j.OwnerUserID
}

// MatchRequirements implements matching.Scorable.
func (j *JobListing) MatchRequirements() matching.JobRequirements {
	return matching.JobRequirements{
		SubjectSpecialization:   j.SubjectSpecialization,
		RequiredSubjects:        j.RequiredSubjects,
		RequiredBoards:          j.RequiredBoardExperience,
		RequiredExperienceYears: j.RequiredExperienceYears,
		MinQualification:        j.MinQualification,
	}
}

// TableName 指定 JobListing 模型的表名。
func (JobListing) TableName() string {
	return "job_listings"
}
