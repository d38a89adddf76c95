// Package candidate scores harvested organisations before any network probe
// is spent on them.
package candidate

import (
	"strings"
	"unicode"

	"hireassist-engine/internal/config"
	"hireassist-engine/internal/domain"
)

// Rejection reasons, in the order they are checked.
const (
	ReasonNonCompanyTags       = "non_company_tags"
	ReasonExcludedName         = "excluded_name"
	ReasonLowScore             = "low_score"
	ReasonNoWebsite            = "no_website"
	ReasonNoWebsiteOrIndicator = "no_website_or_indicator"
)

const hardFloor = -20

type Result struct {
	Score    int
	Eligible bool
	Reason   string
}

// Scorer is deterministic and safe for concurrent use.
type Scorer struct {
	excludeTags    []config.TagRule
	preferTags     []config.TagRule
	excluded       vocabulary
	corporate      vocabulary
	minScore       int
	requireWebsite bool
}

// New builds a Scorer from the candidate section, falling back to the
// built-in tables for any list left empty.
func New(cfg config.Config) *Scorer {
	c := cfg.Candidate
	s := &Scorer{
		excludeTags:    c.ExcludeTags,
		preferTags:     c.PreferTags,
		minScore:       c.MinScore,
		requireWebsite: c.RequireWebsite,
	}
	if len(s.excludeTags) == 0 {
		s.excludeTags = DefaultExcludeTags
	}
	if len(s.preferTags) == 0 {
		s.preferTags = DefaultPreferTags
	}
	words := c.ExcludedWords
	if len(words) == 0 {
		words = DefaultExcludedWords
	}
	s.excluded = newVocabulary(words)
	words = c.CorporateWords
	if len(words) == 0 {
		words = DefaultCorporateWords
	}
	s.corporate = newVocabulary(words)
	return s
}

func (s *Scorer) Score(c domain.Candidate) Result {
	score := s.rawScore(c)
	r := Result{Score: score}
	r.Eligible, r.Reason = s.eligible(c, score)
	return r
}

func (s *Scorer) rawScore(c domain.Candidate) int {
	score := 0
	if c.HarvestSource == "kvk" {
		score += 10
	}
	score += applyTags(s.excludeTags, c.Attributes)
	score += applyTags(s.preferTags, c.Attributes)

	hasWebsite := strings.TrimSpace(c.Website) != ""
	if hasWebsite {
		score += 20
	}
	if s.excluded.matches(c.Name) {
		score -= 50
	}
	if s.corporate.matches(c.Name) {
		score += 20
	}
	if len([]rune(c.Name)) < 4 && !hasWebsite {
		score -= 20
	}
	return score
}

func (s *Scorer) eligible(c domain.Candidate, score int) (bool, string) {
	if score < hardFloor {
		return false, ReasonNonCompanyTags
	}
	if s.excluded.matches(c.Name) {
		return false, ReasonExcludedName
	}

	hasWebsite := strings.TrimSpace(c.Website) != ""
	corporate := s.corporate.matches(c.Name)

	if score < s.minScore && !corporate {
		if !hasWebsite || score < 0 {
			return false, ReasonLowScore
		}
	}
	if s.requireWebsite && !hasWebsite {
		return false, ReasonNoWebsite
	}
	if !hasWebsite && !corporate {
		return false, ReasonNoWebsiteOrIndicator
	}
	return true, ""
}

func applyTags(rules []config.TagRule, attrs map[string]string) int {
	total := 0
	for _, r := range rules {
		v, ok := attrs[r.Key]
		if !ok {
			continue
		}
		if len(r.Any) == 0 {
			total += r.Weight
			continue
		}
		lv := strings.ToLower(v)
		for _, needle := range r.Any {
			if strings.Contains(lv, strings.ToLower(needle)) {
				total += r.Weight
				break
			}
		}
	}
	return total
}

// vocabulary matches whole words or phrases against a name. Dots and
// apostrophes are dropped so "B.V." and "BV" compare equal.
type vocabulary []string

func newVocabulary(words []string) vocabulary {
	v := make(vocabulary, 0, len(words))
	for _, w := range words {
		if p := strings.Join(wordsOf(w), " "); p != "" {
			v = append(v, " "+p+" ")
		}
	}
	return v
}

func (v vocabulary) matches(name string) bool {
	padded := " " + strings.Join(wordsOf(name), " ") + " "
	for _, p := range v {
		if strings.Contains(padded, p) {
			return true
		}
	}
	return false
}

func wordsOf(s string) []string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(".", "", "'", "", "’", "").Replace(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
