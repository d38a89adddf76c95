package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hireassist-engine/internal/config"
	"hireassist-engine/internal/domain"
)

func TestScore(t *testing.T) {
	s := New(config.Default())

	tests := []struct {
		name     string
		c        domain.Candidate
		score    int
		eligible bool
		reason   string
	}{
		{
			name:   "restaurant tag",
			c:      domain.Candidate{Name: "De Gouden Lepel", Website: "https://lepel.nl", Attributes: map[string]string{"amenity": "restaurant"}},
			score:  -40,
			reason: ReasonNonCompanyTags,
		},
		{
			name:   "consumer name",
			c:      domain.Candidate{Name: "Cafe Central", Website: "https://central.nl", Attributes: map[string]string{"office": "company"}},
			score:  -10,
			reason: ReasonExcludedName,
		},
		{
			name:     "corporate name overrides low score",
			c:        domain.Candidate{Name: "Acme Software B.V."},
			score:    20,
			eligible: true,
		},
		{
			name:     "website with non-negative score",
			c:        domain.Candidate{Name: "Jansen", Website: "https://jansen.nl"},
			score:    20,
			eligible: true,
		},
		{
			name:   "nothing to go on",
			c:      domain.Candidate{Name: "Jansen"},
			score:  0,
			reason: ReasonLowScore,
		},
		{
			name:   "website but negative score",
			c:      domain.Candidate{Name: "Jansen", Website: "https://jansen.nl", Attributes: map[string]string{"leisure": "park"}},
			score:  -20,
			reason: ReasonLowScore,
		},
		{
			name:   "high score without website or indicator",
			c:      domain.Candidate{Name: "Jansen en Zn", HarvestSource: "kvk", Attributes: map[string]string{"office": "it", "company": "yes"}},
			score:  45,
			reason: ReasonNoWebsiteOrIndicator,
		},
		{
			name:   "short name without website",
			c:      domain.Candidate{Name: "ABC"},
			score:  -20,
			reason: ReasonLowScore,
		},
		{
			name:     "word boundaries",
			c:        domain.Candidate{Name: "Barista Academy", Website: "https://barista.nl"},
			score:    20,
			eligible: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := s.Score(tt.c)
			assert.Equal(t, tt.score, r.Score)
			assert.Equal(t, tt.eligible, r.Eligible)
			assert.Equal(t, tt.reason, r.Reason)
		})
	}
}

func TestScoreRequireWebsite(t *testing.T) {
	cfg := config.Default()
	cfg.Candidate.RequireWebsite = true
	r := New(cfg).Score(domain.Candidate{Name: "Acme Software B.V."})
	assert.False(t, r.Eligible)
	assert.Equal(t, ReasonNoWebsite, r.Reason)
}

func TestScoreCorporateVariants(t *testing.T) {
	s := New(config.Default())
	for _, name := range []string{"Jansen BV", "Jansen B.V.", "Philips N.V.", "Delta Labs"} {
		assert.True(t, s.corporate.matches(name), name)
	}
	assert.False(t, s.corporate.matches("Bavaria"))
}

func TestScoreConfiguredVocabulary(t *testing.T) {
	cfg := config.Default()
	cfg.Candidate.ExcludedWords = []string{"widget"}
	cfg.Candidate.PreferTags = []config.TagRule{{Key: "office", Any: []string{"it"}, Weight: 50}}
	s := New(cfg)

	r := s.Score(domain.Candidate{Name: "Widget Works", Website: "https://w.nl", Attributes: map[string]string{"office": "it"}})
	assert.Equal(t, ReasonExcludedName, r.Reason)

	r = s.Score(domain.Candidate{Name: "Cafe Digitaal", Website: "https://cd.nl", Attributes: map[string]string{"office": "it"}})
	assert.True(t, r.Eligible)
	assert.Equal(t, 70, r.Score)
}

func TestScoreIsDeterministic(t *testing.T) {
	s := New(config.Default())
	c := domain.Candidate{Name: "Acme Robotics", Website: "https://acme.nl", Attributes: map[string]string{"industrial": "factory", "brand": "Acme"}}
	assert.Equal(t, s.Score(c), s.Score(c))
	assert.Equal(t, 60, s.Score(c).Score)
}
