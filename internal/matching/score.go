// Package matching scores how well an educator fits a job posting.
//
// Everything here is pure: no I/O, no shared state, and missing attributes degrade to empty
// sets or zero instead of errors.
package matching

import "strings"

// Sub-score weights. They add up to MaxScore.
const (
	SubjectWeight       = 40
	BoardWeight         = 20
	ExperienceWeight    = 20
	QualificationWeight = 20

	MaxScore = 100
)

// JobRequirements is the read-only view of a job posting the scorer needs.
type JobRequirements struct {
	SubjectSpecialization   []string
	RequiredSubjects        []string // legacy field, used when SubjectSpecialization is empty
	RequiredBoards          []string
	RequiredExperienceYears int
	MinQualification        Qualification
}

// CandidateProfile is the read-only view of an educator the scorer needs.
type CandidateProfile struct {
	ExpertSubjects  []string
	Subjects        []string // used when ExpertSubjects is empty
	Boards          []string
	ExperienceYears int
	Qualifications  []string
}

// Breakdown holds the individual sub-scores of one match.
type Breakdown struct {
	Subjects      int `json:"subjects"`
	Boards        int `json:"boards"`
	Experience    int `json:"experience"`
	Qualification int `json:"qualification"`
}

// Total sums the sub-scores and caps the result at MaxScore.
func (b Breakdown) Total() int {
	total := b.Subjects + b.Boards + b.Experience + b.Qualification
	if total > MaxScore {
		return MaxScore
	}
	if total < 0 {
		return 0
	}
	return total
}

// CalculateMatchScore returns the 0-100 compatibility between job and candidate.
func CalculateMatchScore(job JobRequirements, candidate CandidateProfile) int {
	return ScoreBreakdown(job, candidate).Total()
}

// ScoreBreakdown computes each weighted sub-score independently.
func ScoreBreakdown(job JobRequirements, candidate CandidateProfile) Breakdown {
	return Breakdown{
		Subjects:      subjectScore(job, candidate),
		Boards:        boardScore(job.RequiredBoards, candidate.Boards),
		Experience:    experienceScore(job.RequiredExperienceYears, candidate.ExperienceYears),
		Qualification: qualificationScore(job.MinQualification, candidate.Qualifications),
	}
}

func subjectScore(job JobRequirements, candidate CandidateProfile) int {
	required := toSet(firstNonEmpty(job.SubjectSpecialization, job.RequiredSubjects))
	if len(required) == 0 {
		return SubjectWeight
	}
	held := toSet(firstNonEmpty(candidate.ExpertSubjects, candidate.Subjects))
	if len(held) == 0 {
		// nothing to compare against, same as an unstated requirement
		return SubjectWeight
	}
	return SubjectWeight * intersectionSize(required, held) / len(required)
}

func boardScore(requiredBoards, candidateBoards []string) int {
	required := toSet(requiredBoards)
	if len(required) == 0 {
		return BoardWeight
	}
	held := toSet(candidateBoards)
	if intersectionSize(required, held) > 0 {
		return BoardWeight
	}
	if len(held) == 0 {
		// no board info at all, so the candidate cannot be ruled out
		return BoardWeight / 2
	}
	return 0
}

func experienceScore(requiredYears, candidateYears int) int {
	requiredYears = max(requiredYears, 0)
	candidateYears = max(candidateYears, 0)
	if candidateYears >= requiredYears {
		return ExperienceWeight
	}
	// requiredYears > candidateYears >= 0 here, so the ratio is below 1
	return ExperienceWeight * candidateYears / requiredYears
}

func qualificationScore(required Qualification, held []string) int {
	if required == "" || required == QualificationAny {
		return QualificationWeight
	}
	requiredLevel := QualificationLevel(string(required))
	candidateLevel := HighestQualificationLevel(held)
	if candidateLevel >= requiredLevel {
		return QualificationWeight
	}
	return QualificationWeight * candidateLevel / max(requiredLevel, 1)
}

func firstNonEmpty(primary, fallback []string) []string {
	if len(toSet(primary)) > 0 {
		return primary
	}
	return fallback
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return set
}

func intersectionSize(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
