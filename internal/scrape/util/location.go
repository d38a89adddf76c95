package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var locationSelectors = []string{
	".location",
	".opening .location",
	".posting-categories .location",
	".posting-categories .sort-by-location",
	".job__location",
	".job-location",
	"[itemprop='jobLocation']",
	"[data-testid='job-location']",
	"[data-testid='location']",
	"[data-qa='location']",
}

// FindLocation looks for a location element inside sel, then for a labeled
// "Location:" fragment in its text.
func FindLocation(sel *goquery.Selection) string {
	for _, q := range locationSelectors {
		if t := CleanText(sel.Find(q).First().Text()); t != "" {
			return NormalizeLocation(t)
		}
	}
	if loc := ExtractLocationFromLabeledText(sel.Text()); loc != "" {
		return NormalizeLocation(loc)
	}
	return ""
}

// ExtractLocationFromLabeledText returns what follows a "Location:" label in s.
func ExtractLocationFromLabeledText(s string) string {
	low := strings.ToLower(s)

	labels := []string{
		"job location:",
		"locations:",
		"location:",
		"locatie:",
		"standplaats:",
	}

	for _, lab := range labels {
		if i := strings.Index(low, lab); i >= 0 {
			rest := strings.TrimSpace(s[i+len(lab):])

			for _, cut := range []string{"\n", "\r", " | ", " · "} {
				if j := strings.Index(rest, cut); j >= 0 {
					rest = rest[:j]
				}
			}

			rest = CleanText(rest)
			if rest != "" && len(rest) <= 80 {
				return rest
			}
		}
	}
	return ""
}
