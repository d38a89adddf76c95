// Package workday extracts postings from Workday job boards, either by
// intercepting the board's own CXS JSON traffic in a browser or by calling
// the CXS endpoint directly.
package workday

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/scrape/util"
)

const maxNestDepth = 5

// ExtractPostings reads one CXS response body. Postings may sit at the top
// level, under body, or in a nested listItems array. Titles shorter than
// five characters or already in seen are dropped.
func ExtractPostings(data any, boardURL string, seen map[string]bool) []domain.ScrapedJob {
	m, ok := data.(map[string]any)
	if !ok {
		return nil
	}

	postings, _ := m["jobPostings"].([]any)
	if len(postings) == 0 {
		if body, ok := m["body"].(map[string]any); ok {
			postings, _ = body["jobPostings"].([]any)
		}
	}
	if len(postings) == 0 {
		postings = findNested(m, "listItems", 0)
	}
	if len(postings) == 0 {
		postings = findNested(m, "jobPostings", 0)
	}

	origin := ""
	if u, err := url.Parse(boardURL); err == nil {
		origin = u.Scheme + "://" + u.Host
	}

	var out []domain.ScrapedJob
	for _, p := range postings {
		posting, ok := p.(map[string]any)
		if !ok {
			continue
		}
		bullets, _ := posting["bulletFields"].([]any)

		title := strings.TrimSpace(str(posting["title"]))
		if title == "" && len(bullets) > 0 {
			title = strings.TrimSpace(str(bullets[0]))
		}
		if utf8.RuneCountInString(title) < 5 || seen[title] {
			continue
		}
		seen[title] = true

		loc := locationText(posting["locationsText"])
		if loc == "" && len(bullets) > 1 {
			loc = strings.TrimSpace(str(bullets[1]))
		}

		apply := boardURL
		if path := strings.TrimSpace(str(posting["externalPath"])); path != "" {
			apply = path
			if strings.HasPrefix(path, "/") {
				apply = origin + path
			}
		}

		out = append(out, domain.ScrapedJob{
			Title:       title,
			LocationRaw: util.NormalizeLocation(loc),
			ApplyURL:    apply,
		})
	}
	return out
}

func locationText(v any) string {
	switch lv := v.(type) {
	case string:
		return strings.TrimSpace(lv)
	case []any:
		var parts []string
		for _, x := range lv {
			if s := strings.TrimSpace(str(x)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// findNested returns the first non-empty list stored under key, searching
// at most maxNestDepth levels and the first ten items of each list.
func findNested(data any, key string, depth int) []any {
	if depth > maxNestDepth {
		return nil
	}
	switch v := data.(type) {
	case map[string]any:
		if l, ok := v[key].([]any); ok && len(l) > 0 {
			return l
		}
		for _, child := range v {
			if r := findNested(child, key, depth+1); len(r) > 0 {
				return r
			}
		}
	case []any:
		for i, child := range v {
			if i >= 10 {
				break
			}
			if r := findNested(child, key, depth+1); len(r) > 0 {
				return r
			}
		}
	}
	return nil
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
