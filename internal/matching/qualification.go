package matching

import "strings"

// Qualification is a recognised teaching qualification code.
type Qualification string

const (
	QualificationAny          Qualification = "ANY"
	QualificationGraduate     Qualification = "GRADUATE"
	QualificationBEd          Qualification = "B_ED"
	QualificationNTT          Qualification = "NTT"
	QualificationDEd          Qualification = "D_ED"
	QualificationPostGraduate Qualification = "POST_GRADUATE"
	QualificationMEd          Qualification = "M_ED"
	QualificationMPhil        Qualification = "M_PHIL"
	QualificationPhD          Qualification = "PHD"
)

var qualificationLevels = map[Qualification]int{
	QualificationAny:          0,
	QualificationGraduate:     1,
	QualificationBEd:          2,
	QualificationNTT:          2,
	QualificationDEd:          2,
	QualificationPostGraduate: 3,
	QualificationMEd:          4,
	QualificationMPhil:        5,
	QualificationPhD:          6,
}

var qualificationReplacer = strings.NewReplacer(".", "_", " ", "_")

// normalizeQualification turns free text like "B.Ed" or "post graduate" into a hierarchy key.
func normalizeQualification(raw string) string {
	return qualificationReplacer.Replace(strings.ToUpper(strings.TrimSpace(raw)))
}

// ParseQualification maps raw input onto the closed set of codes.
// The second result is false when the text is not a known qualification.
func ParseQualification(raw string) (Qualification, bool) {
	q := Qualification(normalizeQualification(raw))
	if _, ok := qualificationLevels[q]; !ok {
		return "", false
	}
	return q, true
}

// Level returns the qualification's rank in the hierarchy. Unknown codes rank 0.
func (q Qualification) Level() int {
	return qualificationLevels[q]
}

// QualificationLevel is the best-effort lookup used for legacy free-text entries.
func QualificationLevel(raw string) int {
	if q, ok := ParseQualification(raw); ok {
		return q.Level()
	}
	return 0
}

// HighestQualificationLevel returns the best level among quals, or 0 when none map.
func HighestQualificationLevel(quals []string) int {
	highest := 0
	for _, raw := range quals {
		if lvl := QualificationLevel(raw); lvl > highest {
			highest = lvl
		}
	}
	return highest
}
