// Package normalize maps source payloads into the canonical domain.Job and
// derives the dedup key.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/ingest"
	"hireassist-engine/internal/scrape/util"
)

type Normalizer struct {
	loc *Locations
}

func New(targetCountry string) *Normalizer {
	return &Normalizer{loc: NewLocations(targetCountry)}
}

func (n *Normalizer) Locations() *Locations { return n.loc }

// Normalize converts one payload. ok is false for records without a title.
func (n *Normalizer) Normalize(company string, p ingest.Payload) (job domain.Job, ok bool) {
	job = domain.Job{
		Source:      p.Source(),
		CompanyName: company,
		LocationRaw: util.CleanText(ingest.Location(p)),
	}

	var id string
	switch v := p.(type) {
	case ingest.GreenhousePosting:
		if v.ID != 0 {
			id = strconv.FormatInt(v.ID, 10)
		}
		job.Title = v.Title
		job.URL = v.AbsoluteURL
		if len(v.Departments) > 0 {
			job.Department = v.Departments[0].Name
		}
		job.PostedAt = ParseTime(v.UpdatedAt)

	case ingest.LeverPosting:
		id = v.ID
		job.Title = v.Text
		job.URL = v.HostedURL
		job.Department = util.FirstNonEmpty(v.Categories.Department, v.Categories.Team)
		job.JobType = v.Categories.Commitment
		if v.CreatedAt > 0 {
			t := time.UnixMilli(v.CreatedAt).UTC()
			job.PostedAt = &t
		}

	case ingest.SmartRecruitersPosting:
		id = v.ID
		job.Title = v.Name
		if v.ID != "" && v.Token != "" {
			job.URL = fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", v.Token, v.ID)
		}
		job.Department = v.Department.Label
		job.JobType = v.TypeOfEmployment.Label
		job.PostedAt = ParseTime(v.ReleasedDate)

	case ingest.RecruiteePosting:
		if v.ID != 0 {
			id = strconv.FormatInt(v.ID, 10)
		} else {
			id = v.Slug
		}
		job.Title = v.Title
		job.URL = util.FirstNonEmpty(v.CareersURL, v.URL)
		job.Department = util.FirstNonEmpty(v.Department, v.Category)
		job.JobType = employmentType(v.EmploymentTypeCode)
		job.PostedAt = ParseTime(v.CreatedAt)

	case ingest.ScrapedPosting:
		job.Title = v.Title
		job.URL = util.CanonicalURL(v.ApplyURL)
	}

	job.Title = util.CleanText(job.Title)
	if job.Title == "" {
		return job, false
	}

	locForSplit := job.LocationRaw
	if job.Source == domain.SourceCareersPage && strings.Contains(locForSplit, "|") {
		locForSplit = strings.TrimSpace(strings.Split(locForSplit, "|")[0])
	}
	job.City, job.Country = n.loc.Split(locForSplit)
	if job.Source == domain.SourceCareersPage && job.Country == "" {
		job.Country = n.loc.Country
	}

	if job.Department == "" {
		job.Department = Department(job.Title)
	}
	job.TechTags = TechTags(job.Title)
	job.JobKey = JobKey(job.Source, id, company, job.Title, job.URL)
	return job, true
}

// NormalizeAll converts a batch, dropping records without a title and
// collapsing duplicate keys (last one wins).
func (n *Normalizer) NormalizeAll(company string, ps []ingest.Payload) []domain.Job {
	out := make([]domain.Job, 0, len(ps))
	idx := map[string]int{}
	for _, p := range ps {
		j, ok := n.Normalize(company, p)
		if !ok {
			continue
		}
		if i, dup := idx[j.JobKey]; dup {
			out[i] = j
			continue
		}
		idx[j.JobKey] = len(out)
		out = append(out, j)
	}
	return out
}

func employmentType(code string) string {
	code = strings.TrimSpace(strings.ReplaceAll(code, "_", " "))
	if code == "" {
		return ""
	}
	words := strings.Fields(strings.ToLower(code))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts the timestamp shapes the vendors emit.
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
