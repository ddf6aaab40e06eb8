package models

import "edu-network/internal/matching"

// EducatorProfile carries the attributes the job matcher reads for a teacher.
type EducatorProfile struct {
	BaseModel
	UserID          uint     `gorm:"not null;uniqueIndex" json:"userId"`
	ExpertSubjects  []string `gorm:"type:text;serializer:json" json:"expertSubjects"`
	Subjects        []string `gorm:"type:text;serializer:json" json:"subjects,omitempty"`
	Boards          []string `gorm:"type:text;serializer:json" json:"boards"`
	ExperienceYears int      `gorm:"not null;default:0" json:"experienceYears"`
	// Qualifications holds canonical codes where the input was recognised, raw text otherwise.
	Qualifications []string `gorm:"type:text;serializer:json" json:"qualifications"`
}

// OwnerID implements permissions.Owned.
func (p *EducatorProfile) OwnerID() uint {
	return p.UserID
}

// MatchProfile returns the candidate view used by the scorer. A nil profile is an empty candidate.
func (p *EducatorProfile) MatchProfile() matching.CandidateProfile {
	if p == nil {
		return matching.CandidateProfile{}
	}
	return matching.CandidateProfile{
		ExpertSubjects:  p.ExpertSubjects,
		Subjects:        p.Subjects,
		Boards:          p.Boards,
		ExperienceYears: p.ExperienceYears,
		Qualifications:  p.Qualifications,
	}
}

// TableName 指定 EducatorProfile 模型的表名。
func (EducatorProfile) TableName() string {
	return "educator_profiles"
}
