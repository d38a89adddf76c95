package discover

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	strict := Verifier{Strict: true, MinTokenLen: 5}

	tests := []struct {
		name   string
		v      Verifier
		hit    Hit
		subj   Subject
		ok     bool
		reason string
	}{
		{"short token equals domain base", strict,
			Hit{Token: "abc"}, Subject{Name: "ABC Consulting", Domain: "abc.nl"}, true, "domain_match"},
		{"short token unrelated", strict,
			Hit{Token: "mvp"}, Subject{Name: "Stichting MVP", Domain: "mvp-foundation.org"}, false, "short_token_3ch"},
		{"short token is a common first word", strict,
			Hit{Token: "data"}, Subject{Name: "Data Dynamics", Domain: "dd.nl"}, false, "short_token_4ch"},
		{"common first word confirmed by board", strict,
			Hit{Token: "data", BoardName: "Data Dynamics B.V."}, Subject{Name: "Data Dynamics", Domain: "dd.nl"}, true, "board_name_match"},
		{"distinctive first word", strict,
			Hit{Token: "ohra"}, Subject{Name: "Ohra Verzekeringen", Domain: "ohra-verzekeren.nl"}, true, "domain_match"},
		{"board mismatch", strict,
			Hit{Token: "bluefin", BoardName: "Ocean Foods"}, Subject{Name: "Bluefin Logistics", Domain: "bluefin.nl"}, false, "board_mismatch:Ocean Foods"},
		{"lever slug board name", strict,
			Hit{Token: "acmerobotics", BoardName: "acmerobotics"}, Subject{Name: "Acme Robotics", Domain: "acme-robotics.nl"}, true, "board_name_match"},
		{"dashed token against dashed domain", strict,
			Hit{Token: "acme-robotics"}, Subject{Name: "Acme Robotics", Domain: "acme-robotics.nl"}, true, "domain_match"},
		{"name slug", strict,
			Hit{Token: "acmesoftware"}, Subject{Name: "Acme Software", Domain: "asw.nl"}, true, "name_match"},
		{"strict no evidence", strict,
			Hit{Token: "zzzzzz"}, Subject{Name: "Acme", Domain: "acme.nl"}, false, "no_match"},
		{"non strict accepts", Verifier{MinTokenLen: 5},
			Hit{Token: "zzzz"}, Subject{Name: "Acme", Domain: "acme.nl"}, true, "non_strict"},
		{"non strict ignores board mismatch", Verifier{MinTokenLen: 5},
			Hit{Token: "acme", BoardName: "Other"}, Subject{Name: "Acme", Domain: "acme.nl"}, true, "domain_match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := tt.v.Verify(tt.hit, tt.subj)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestVerifyTruncatesBoardName(t *testing.T) {
	v := Verifier{Strict: true, MinTokenLen: 5}
	_, reason := v.Verify(Hit{Token: "globex", BoardName: strings.Repeat("x", 60)}, Subject{Name: "Globex", Domain: "globex.nl"})
	assert.Equal(t, "board_mismatch:"+strings.Repeat("x", 40), reason)
}

func TestGradeConfidence(t *testing.T) {
	tests := []struct {
		local, total int
		want         string
	}{
		{0, 10, ConfidenceLow},
		{5, 1000, ConfidenceLow},
		{5, 100, ConfidenceHigh},
		{2, 8, ConfidenceHigh},
		{2, 100, ConfidenceMed},
		{1, 5, ConfidenceMed},
		{1, 20, ConfidenceLow},
		{0, 0, ConfidenceLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gradeConfidence(tt.local, tt.total), "%d/%d", tt.local, tt.total)
	}
}
