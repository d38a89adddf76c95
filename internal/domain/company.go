package domain

import "time"

// Board sources a Company can be tracked under.
const (
	SourceGreenhouse      = "greenhouse"
	SourceLever           = "lever"
	SourceSmartRecruiters = "smartrecruiters"
	SourceRecruitee       = "recruitee"
	SourceCareersPage     = "careers_page"
)

// ATSSources are the vendors with a public read API.
var ATSSources = []string{SourceGreenhouse, SourceLever, SourceSmartRecruiters, SourceRecruitee}

func IsATSSource(s string) bool {
	for _, v := range ATSSources {
		if v == s {
			return true
		}
	}
	return false
}

type Company struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Source         string     `json:"source"` // one of the Source* constants
	Token          string     `json:"token"`  // board token, or the career page URL for careers_page
	Active         bool       `json:"active"`
	Confidence     string     `json:"confidence,omitempty"` // high/med/low
	DiscoveredAt   time.Time  `json:"discoveredAt"`
	LastVerifiedAt *time.Time `json:"lastVerifiedAt,omitempty"`
}
