package domain

import "time"

const (
	CandidateNew       = "new"
	CandidateProcessed = "processed"
	CandidateRejected  = "rejected"
	CandidateError     = "error"
)

// Candidate is a harvested record that may name a real employer.
type Candidate struct {
	ID            int64
	Name          string
	Website       string
	City          string
	Region        string
	HarvestSource string // osm, kvk, google, ...
	ExternalID    string
	Attributes    map[string]string
	Score         int
	Status        string
	RejectReason  string
	ATSVerified   bool
	WebsiteDomain string
	CreatedAt     time.Time
}
