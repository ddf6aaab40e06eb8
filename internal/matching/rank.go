package matching

import "sort"

// Badge is the human-readable label shown next to a score.
type Badge struct {
	Label string `json:"label"`
	Tier  string `json:"tier"`
	Color string `json:"color"`
}

var badgeTiers = []struct {
	minScore int
	badge    Badge
}{
	{90, Badge{Label: "Excellent Match", Tier: "excellent", Color: "green"}},
	{75, Badge{Label: "Great Match", Tier: "great", Color: "blue"}},
	{60, Badge{Label: "Good Match", Tier: "good", Color: "yellow"}},
	{40, Badge{Label: "Partial Match", Tier: "partial", Color: "orange"}},
}

var lowMatchBadge = Badge{Label: "Low Match", Tier: "low", Color: "gray"}

// GetMatchBadge returns the badge for score.
func GetMatchBadge(score int) Badge {
	for _, t := range badgeTiers {
		if score >= t.minScore {
			return t.badge
		}
	}
	return lowMatchBadge
}

// Scorable is anything that can describe its requirements to the scorer.
type Scorable interface {
	MatchRequirements() JobRequirements
}

// RankedJob is one job annotated with its score against a candidate.
type RankedJob[J Scorable] struct {
	Job       J         `json:"job"`
	Score     int       `json:"matchScore"`
	Badge     Badge     `json:"matchBadge"`
	Breakdown Breakdown `json:"breakdown"`
}

// RankJobsForCandidate scores every job and sorts by score, highest first.
// Jobs with equal scores keep their input order.
func RankJobsForCandidate[J Scorable](jobs []J, candidate CandidateProfile) []RankedJob[J] {
	ranked := make([]RankedJob[J], 0, len(jobs))
	for _, job := range jobs {
		breakdown := ScoreBreakdown(job.MatchRequirements(), candidate)
		score := breakdown.Total()
		ranked = append(ranked, RankedJob[J]{
			Job:       job,
			Score:     score,
			Badge:     GetMatchBadge(score),
			Breakdown: breakdown,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
