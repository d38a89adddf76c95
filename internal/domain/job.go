package domain

import "time"

// Job is the canonical record every source is normalized into.
type Job struct {
	ID          int64      `json:"id"`
	Source      string     `json:"source"`
	CompanyName string     `json:"company"`
	JobKey      string     `json:"jobKey"`
	Title       string     `json:"title"`
	LocationRaw string     `json:"locationRaw"`
	Country     string     `json:"country,omitempty"`
	City        string     `json:"city,omitempty"`
	URL         string     `json:"url"`
	Department  string     `json:"department,omitempty"`
	JobType     string     `json:"jobType,omitempty"`
	TechTags    []string   `json:"techTags,omitempty"`
	PostedAt    *time.Time `json:"postedAt,omitempty"`
	FirstSeenAt time.Time  `json:"firstSeenAt"`
	LastSeenAt  time.Time  `json:"lastSeenAt"`
	IsActive    bool       `json:"isActive"`
}

// ScrapedJob is one row of a career-page snapshot.
type ScrapedJob struct {
	Title       string `json:"title"`
	LocationRaw string `json:"location"`
	ApplyURL    string `json:"url"`
}
