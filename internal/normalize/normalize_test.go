package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/ingest"
)

func TestSplitLocation(t *testing.T) {
	l := NewLocations("Netherlands")

	tests := []struct {
		raw, city, country string
	}{
		{"Amsterdam, Netherlands", "Amsterdam", "Netherlands"},
		{"the hague, NL", "Den Haag", "Netherlands"},
		{"Den Bosch", "'s-Hertogenbosch", "Netherlands"},
		{"Utrecht (Hybrid)", "Utrecht", "Netherlands"},
		{"Remote - Netherlands", "", "Netherlands"},
		{"Rotterdam HQ", "Rotterdam", "Netherlands"},
		{"Eindhoven; Amsterdam", "Eindhoven", "Netherlands"},
		{"Capelle a/d IJssel", "Capelle aan den IJssel", ""},
		{"Berlin, Germany", "Berlin", "Germany"},
		{"Hybrid", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			city, country := l.Split(tt.raw)
			assert.Equal(t, tt.city, city)
			assert.Equal(t, tt.country, country)
		})
	}
}

func TestDepartment(t *testing.T) {
	assert.Equal(t, "Engineering", Department("Senior Backend Developer"))
	assert.Equal(t, "Data", Department("Data Scientist - NLP"))
	assert.Equal(t, "HR", Department("Recruiter (32-40h)"))
	assert.Equal(t, "", Department("Chef de partie"))
}

func TestTechTags(t *testing.T) {
	assert.Equal(t, []string{"Go", "Kubernetes"}, TechTags("Platform Engineer (Go/Kubernetes)"))
	assert.Equal(t, []string{"Python", "Django"}, TechTags("Python Django developer"))
	assert.Equal(t, []string{"CI/CD"}, TechTags("CI/CD specialist"))
	assert.Nil(t, TechTags("Office manager"))
	// "going" must not be read as Go
	assert.Nil(t, TechTags("Ongoing support lead"))
}

func TestJobKeyATSUsesProviderID(t *testing.T) {
	assert.Equal(t, "4012345", JobKey(domain.SourceGreenhouse, "4012345", "Acme", "Engineer", "https://x"))
}

func TestJobKeyScrapedIsStable(t *testing.T) {
	a := JobKey(domain.SourceCareersPage, "", "Acme B.V.", "Backend Engineer", "https://acme.nl/jobs/backend-engineer/?utm_source=li")
	b := JobKey(domain.SourceCareersPage, "", " acme b.v.", "backend engineer ", "https://ACME.nl/jobs/backend-engineer")
	c := JobKey(domain.SourceCareersPage, "", "Acme B.V.", "Frontend Engineer", "https://acme.nl/jobs/backend-engineer")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 40)
}

func TestNormalizeGreenhouse(t *testing.T) {
	var p ingest.GreenhousePosting
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 4012345,
		"title": "Senior Go Engineer",
		"absolute_url": "https://boards.greenhouse.io/acme/jobs/4012345",
		"updated_at": "2025-03-01T10:00:00-05:00",
		"location": {"name": "Amsterdam, Netherlands"},
		"departments": [{"name": "Platform"}]
	}`), &p))

	n := New("Netherlands")
	j, ok := n.Normalize("Acme", p)
	require.True(t, ok)

	assert.Equal(t, "4012345", j.JobKey)
	assert.Equal(t, domain.SourceGreenhouse, j.Source)
	assert.Equal(t, "Amsterdam", j.City)
	assert.Equal(t, "Netherlands", j.Country)
	assert.Equal(t, "Platform", j.Department)
	assert.Equal(t, []string{"Go"}, j.TechTags)
	require.NotNil(t, j.PostedAt)
	assert.Equal(t, 15, j.PostedAt.Hour())
}

func TestNormalizeIsRepeatable(t *testing.T) {
	p := ingest.LeverPosting{ID: "a1b2", Text: "Data Engineer", HostedURL: "https://jobs.lever.co/acme/a1b2", CreatedAt: 1700000000000}
	p.Categories.Location = "Utrecht"
	p.Categories.Commitment = "Full-time"

	n := New("Netherlands")
	first, ok := n.Normalize("Acme", p)
	require.True(t, ok)
	second, _ := n.Normalize("Acme", p)

	assert.Equal(t, first, second)
	assert.Equal(t, "a1b2", first.JobKey)
	assert.Equal(t, "Data", first.Department)
	assert.Equal(t, "Full-time", first.JobType)
}

func TestNormalizeSmartRecruitersAndRecruitee(t *testing.T) {
	n := New("Netherlands")

	sr := ingest.SmartRecruitersPosting{ID: "744000", Name: "Account Manager", Token: "Acme1"}
	sr.Location.City = "Rotterdam"
	sr.Location.Country = "nl"
	j, ok := n.Normalize("Acme", sr)
	require.True(t, ok)
	assert.Equal(t, "https://jobs.smartrecruiters.com/Acme1/744000", j.URL)
	assert.Equal(t, "Rotterdam", j.City)
	assert.Equal(t, "Sales", j.Department)

	rc := ingest.RecruiteePosting{ID: 99, Title: "Werkvoorbereider", Location: "Zwolle", CareersURL: "https://acme.recruitee.com/o/werkvoorbereider", EmploymentTypeCode: "fulltime_permanent", CreatedAt: "2025-01-10 09:00:00 UTC"}
	j, ok = n.Normalize("Acme", rc)
	require.True(t, ok)
	assert.Equal(t, "99", j.JobKey)
	assert.Equal(t, "Fulltime Permanent", j.JobType)
	require.NotNil(t, j.PostedAt)
}

func TestNormalizeScrapedDefaultsCountry(t *testing.T) {
	n := New("Netherlands")
	p := ingest.ScrapedPosting{ScrapedJob: domain.ScrapedJob{
		Title:       "Monteur",
		LocationRaw: "Zwolle | Overijssel | NL",
		ApplyURL:    "https://acme.nl/vacatures/monteur-123?utm_medium=x",
	}}
	j, ok := n.Normalize("Acme", p)
	require.True(t, ok)
	assert.Equal(t, "Netherlands", j.Country)
	assert.Equal(t, "https://acme.nl/vacatures/monteur-123", j.URL)
	assert.Len(t, j.JobKey, 40)
}

func TestNormalizeAllDropsUntitledAndDuplicates(t *testing.T) {
	n := New("Netherlands")
	ps := []ingest.Payload{
		ingest.LeverPosting{ID: "1", Text: "Designer"},
		ingest.LeverPosting{ID: "2", Text: "   "},
		ingest.LeverPosting{ID: "1", Text: "Product Designer"},
	}
	jobs := n.NormalizeAll("Acme", ps)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Product Designer", jobs[0].Title)
}

func TestSplitLocationDefault(t *testing.T) {
	city, country := SplitLocation("Delft, Zuid-Holland")
	assert.Equal(t, "Delft", city)
	assert.Equal(t, "Netherlands", country)
}
