package matching

import "testing"

func TestParseQualification(t *testing.T) {
	testCases := []struct {
		raw    string
		want   Qualification
		wantOK bool
	}{
		{"B.Ed", QualificationBEd, true},
		{"b ed", QualificationBEd, true},
		{" M.Phil ", QualificationMPhil, true},
		{"phd", QualificationPhD, true},
		{"Post Graduate", QualificationPostGraduate, true},
		{"any", QualificationAny, true},
		{"Diploma", "", false},
		{"", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := ParseQualification(tc.raw)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("ParseQualification(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestHighestQualificationLevel(t *testing.T) {
	if got := HighestQualificationLevel(nil); got != 0 {
		t.Errorf("empty list level = %d, want 0", got)
	}
	if got := HighestQualificationLevel([]string{"Graduate", "unknown", "M.Ed"}); got != 4 {
		t.Errorf("level = %d, want 4", got)
	}
	if got := Qualification("BOGUS").Level(); got != 0 {
		t.Errorf("unknown code level = %d, want 0", got)
	}
}
