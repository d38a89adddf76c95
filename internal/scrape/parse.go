package scrape

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/scrape/util"
)

var (
	jobURLRe = regexp.MustCompile(`(?i)/(jobs?|careers?|career-opportunities|positions?|openings?|opportunities|vacatures?|vacancies|rollen?|roles?|apply|solliciteer)/[\w%.\-]{3,}`)
	localeRe = regexp.MustCompile(`^[a-z]{2}(-[a-z]{2})?$`)
	digitRe  = regexp.MustCompile(`\d`)
	ctaRe    = regexp.MustCompile(`(?i)\s+(apply(\s+now)?|apply here|bekijk)$`)
	minRead  = regexp.MustCompile(`(?i)\d+\s+min\s+read`)
)

// Anchor texts and slugs that name a section rather than a job.
var skipTitles = toSet(
	"jobs", "careers", "vacatures", "apply", "see all jobs", "view all jobs",
	"all jobs", "current openings", "open positions", "view openings",
	"job listings", "join us", "work with us", "browse jobs",
	"vacancies", "openings", "our story", "personal stories", "blog",
	"insights", "news", "team", "people", "culture", "about us",
	"life at", "benefits", "diversity", "students", "for students",
	"learn more", "read more", "show more", "see more", "view more",
	"find out more", "apply now", "get started", "explore", "discover",
	"blog post", "read the blog",
	"tech", "design", "marketing", "engineering", "finance",
	"see all open roles", "see all roles", "view all roles", "see open positions",
	"explore opportunities", "explore roles", "explore jobs",
)

var contentSegments = toSet(
	"insights", "blog", "news", "stories", "story", "people",
	"tech", "learn", "teams", "team", "hiring-101",
)

func toSet(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// ParseHTML extracts job listings from a rendered page. JobPosting
// metadata wins outright when present; anchors are scanned otherwise.
func ParseHTML(raw, pageURL string) []domain.ScrapedJob {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil
	}
	if jobs := ParseJSONLD(doc, pageURL); len(jobs) > 0 {
		return jobs
	}
	return ParseAnchors(doc, pageURL)
}

// ParseJSONLD reads every application/ld+json block, flattening lists and
// @graph containers.
func ParseJSONLD(doc *goquery.Document, pageURL string) []domain.ScrapedJob {
	var jobs []domain.ScrapedJob
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return
		}

		var items []any
		switch v := data.(type) {
		case []any:
			items = v
		case map[string]any:
			if g, ok := v["@graph"].([]any); ok {
				items = g
			} else {
				items = []any{v}
			}
		}

		for _, it := range items {
			item, ok := it.(map[string]any)
			if !ok || !isJobPosting(item["@type"]) {
				continue
			}
			title := strings.TrimSpace(util.FirstNonEmpty(str(item["title"]), str(item["name"])))
			if title == "" {
				continue
			}
			jobs = append(jobs, domain.ScrapedJob{
				Title:       util.CleanText(title),
				LocationRaw: jsonLDLocation(item["jobLocation"]),
				ApplyURL:    util.FirstNonEmpty(str(item["url"]), str(item["sameAs"]), pageURL),
			})
		}
	})
	return jobs
}

func isJobPosting(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, x := range v {
			if s, _ := x.(string); s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// jsonLDLocation renders jobLocation as "locality, region, country", with
// multiple locations joined by " | ".
func jsonLDLocation(v any) string {
	if v == nil {
		return ""
	}
	locs, ok := v.([]any)
	if !ok {
		locs = []any{v}
	}

	var parts []string
	for _, l := range locs {
		switch lv := l.(type) {
		case string:
			parts = append(parts, lv)
		case map[string]any:
			addr, ok := lv["address"]
			if !ok {
				addr = lv
			}
			switch av := addr.(type) {
			case string:
				parts = append(parts, av)
			case map[string]any:
				country := av["addressCountry"]
				if m, ok := country.(map[string]any); ok {
					country = m["name"]
				}
				var fields []string
				for _, f := range []string{str(av["addressLocality"]), str(av["addressRegion"]), str(country)} {
					if f != "" {
						fields = append(fields, f)
					}
				}
				if len(fields) > 0 {
					parts = append(parts, strings.Join(fields, ", "))
				}
			}
		}
	}
	return strings.Join(parts, " | ")
}

// ParseAnchors scans same-host links whose path looks like a job detail page.
func ParseAnchors(doc *goquery.Document, pageURL string) []domain.ScrapedJob {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	var (
		jobs       []domain.ScrapedJob
		seenURLs   = map[string]bool{}
		seenTitles = map[string]bool{}
	)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		full := util.Resolve(pageURL, href)
		if full == "" || seenURLs[full] {
			return
		}
		u, err := url.Parse(full)
		if err != nil || u.Host != base.Host {
			return
		}
		if !looksLikeJobPath(u.Path) {
			return
		}
		if a.ParentsFiltered("nav, header, footer").Length() > 0 {
			return
		}
		seenURLs[full] = true

		title, location := anchorTitle(a)
		if title == "" || skipTitles[strings.ToLower(title)] {
			return
		}
		if minRead.MatchString(title) || seenTitles[title] {
			return
		}
		seenTitles[title] = true
		if location == "" {
			location = util.FindLocation(a.Parent())
		}
		jobs = append(jobs, domain.ScrapedJob{Title: title, LocationRaw: location, ApplyURL: full})
	})
	return jobs
}

// looksLikeJobPath rejects category and content pages: the path must match
// a job pattern and be deep, numeric or long enough to name one posting.
func looksLikeJobPath(path string) bool {
	if !jobURLRe.MatchString(path) {
		return false
	}
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 {
		return false
	}
	last := parts[len(parts)-1]
	effective := parts
	if localeRe.MatchString(parts[0]) {
		effective = parts[1:]
	}
	if len(effective) < 3 && !digitRe.MatchString(last) && utf8.RuneCountInString(last) < 25 {
		return false
	}
	lowLast := strings.ToLower(last)
	if skipTitles[lowLast] || skipTitles[strings.ReplaceAll(lowLast, "-", " ")] {
		return false
	}
	for _, seg := range parts {
		ls := strings.ToLower(seg)
		if contentSegments[ls] || strings.HasPrefix(ls, "life-at") {
			return false
		}
	}
	return true
}

func titleLen(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 8 && n <= 120
}

// anchorTitle picks a heading inside the anchor, then the anchor text
// without a trailing call to action, then for icon-only anchors a heading
// in the nearest enclosing container, whose leftover text becomes the
// location.
func anchorTitle(a *goquery.Selection) (title, location string) {
	for _, tag := range []string{"h1", "h2", "h3", "h4", "h5", "strong", "b"} {
		if el := a.Find(tag).First(); el.Length() > 0 {
			if t := util.CleanText(el.Text()); titleLen(t) {
				return t, ""
			}
		}
	}

	text := joinedText(a, " ")
	if t := strings.TrimSpace(ctaRe.ReplaceAllString(text, "")); titleLen(t) && !skipTitles[strings.ToLower(t)] {
		return t, ""
	}
	if utf8.RuneCountInString(text) >= 4 {
		return "", ""
	}

	var found bool
	a.Parents().EachWithBreak(func(_ int, anc *goquery.Selection) bool {
		name := goquery.NodeName(anc)
		if name == "body" || name == "html" {
			return false
		}
		var heading *goquery.Selection
		for _, tag := range []string{"h1", "h2", "h3", "h4", "h5"} {
			if h := anc.Find(tag).First(); h.Length() > 0 {
				heading = h
				break
			}
		}
		if heading == nil {
			return true
		}
		t := util.CleanText(heading.Text())
		if titleLen(t) && !skipTitles[strings.ToLower(t)] {
			title, found = t, true
			left := strings.TrimSpace(strings.Trim(strings.ReplaceAll(joinedText(anc, " | "), t, ""), " |"))
			if left != "" && utf8.RuneCountInString(left) < 120 {
				location = left
			}
		}
		return false
	})
	if !found {
		return "", ""
	}
	return title, location
}

// joinedText concatenates the trimmed text nodes under s with sep.
func joinedText(s *goquery.Selection, sep string) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := util.CleanText(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}
