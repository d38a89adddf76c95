// Package ingest holds the per-source job payload shapes. Each variant is
// turned into a domain.Job by the normalize package and goes no further.
package ingest

import "hireassist-engine/internal/domain"

// Payload is one job as delivered by a source. The set of variants is closed.
type Payload interface {
	Source() string
	payload()
}

type GreenhousePosting struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	AbsoluteURL string `json:"absolute_url"`
	UpdatedAt   string `json:"updated_at"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Departments []struct {
		Name string `json:"name"`
	} `json:"departments"`
}

type LeverPosting struct {
	ID          string `json:"id"`
	Text        string `json:"text"` // title
	HostedURL   string `json:"hostedUrl"`
	CreatedAt   int64  `json:"createdAt"` // ms epoch
	Description string `json:"description"`
	Categories  struct {
		Location   string `json:"location"`
		Team       string `json:"team"`
		Department string `json:"department"`
		Commitment string `json:"commitment"`
	} `json:"categories"`
}

type SmartRecruitersPosting struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ReleasedDate string `json:"releasedDate"`
	Location     struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
	Department struct {
		Label string `json:"label"`
	} `json:"department"`
	TypeOfEmployment struct {
		Label string `json:"label"`
	} `json:"typeOfEmployment"`

	// Token is the company identifier the posting was listed under.
	Token string `json:"-"`
}

type RecruiteePosting struct {
	ID                 int64  `json:"id"`
	Slug               string `json:"slug"`
	Title              string `json:"title"`
	Location           string `json:"location"`
	CareersURL         string `json:"careers_url"`
	URL                string `json:"url"`
	CreatedAt          string `json:"created_at"`
	Department         string `json:"department"`
	Category           string `json:"category"`
	EmploymentTypeCode string `json:"employment_type_code"`
}

// ScrapedPosting is a career-page snapshot row.
type ScrapedPosting struct {
	domain.ScrapedJob
}

func (GreenhousePosting) Source() string      { return domain.SourceGreenhouse }
func (LeverPosting) Source() string           { return domain.SourceLever }
func (SmartRecruitersPosting) Source() string { return domain.SourceSmartRecruiters }
func (RecruiteePosting) Source() string       { return domain.SourceRecruitee }
func (ScrapedPosting) Source() string         { return domain.SourceCareersPage }

func (GreenhousePosting) payload()      {}
func (LeverPosting) payload()           {}
func (SmartRecruitersPosting) payload() {}
func (RecruiteePosting) payload()       {}
func (ScrapedPosting) payload()         {}

// Location returns the raw location string of any payload.
func Location(p Payload) string {
	switch v := p.(type) {
	case GreenhousePosting:
		return v.Location.Name
	case LeverPosting:
		return v.Categories.Location
	case SmartRecruitersPosting:
		var parts []string
		for _, s := range []string{v.Location.City, v.Location.Country} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 2 {
			return parts[0] + ", " + parts[1]
		}
		if len(parts) == 1 {
			return parts[0]
		}
		return ""
	case RecruiteePosting:
		return v.Location
	case ScrapedPosting:
		return v.LocationRaw
	}
	return ""
}
