package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/scrape/util"
)

// Portal families recognised from a page URL.
const (
	PortalGreenhouse      = domain.SourceGreenhouse
	PortalLever           = domain.SourceLever
	PortalSmartRecruiters = domain.SourceSmartRecruiters
	PortalRecruitee       = domain.SourceRecruitee
	PortalWorkday         = "workday"
	PortalICIMS           = "icims"
	PortalTaleo           = "taleo"
	PortalAshby           = "ashby"
)

var portalDomains = []struct{ domain, portal string }{
	{"greenhouse.io", PortalGreenhouse},
	{"lever.co", PortalLever},
	{"smartrecruiters.com", PortalSmartRecruiters},
	{"myworkdayjobs.com", PortalWorkday},
	{"workday.com", PortalWorkday},
	{"icims.com", PortalICIMS},
	{"taleo.net", PortalTaleo},
	{"recruitee.com", PortalRecruitee},
	{"ashbyhq.com", PortalAshby},
}

// Hosts that serve embeddable job boards inside iframes.
var iframeDomains = []string{
	"boards.greenhouse.io", "jobs.lever.co", "jobs.smartrecruiters.com",
	"recruitee.com", "myworkdayjobs.com", "jobs.ashbyhq.com",
}

var (
	workdayURLRe   = regexp.MustCompile(`(?i)myworkdayjobs\.com|workday\.com/.*?/jobs`)
	workdayMarkers = []string{"myworkdayjobs.com", "jobpostinginfo", "wd-application"}
	recruiteeRe    = regexp.MustCompile(`(?i)href=["'][^"']*?/o/[a-z0-9][a-z0-9\-]+["']`)
	ashbyRe        = regexp.MustCompile(`ashbyhq\.com/(?:posting-api/job-board/)?([a-zA-Z0-9_\-]+)`)
	loginSuffixRe  = regexp.MustCompile(`/login\s*$`)
)

// DetectPortal returns the portal family hosting raw, or "".
func DetectPortal(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	for _, p := range portalDomains {
		if strings.Contains(host, p.domain) {
			return p.portal
		}
	}
	return ""
}

// Upgradable reports whether a portal has a public read API the engine syncs
// directly.
func Upgradable(portal string) bool {
	return domain.IsATSSource(portal)
}

// UpgradeToken extracts the board token from a portal URL.
func UpgradeToken(portal, raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	var parts []string
	for _, p := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	first := ""
	if len(parts) > 0 {
		first = parts[0]
	}

	switch portal {
	case PortalGreenhouse:
		if strings.Contains(host, "greenhouse.io") {
			return first
		}
	case PortalLever:
		if strings.Contains(host, "lever.co") {
			return first
		}
	case PortalSmartRecruiters:
		if strings.Contains(host, "smartrecruiters.com") {
			return first
		}
	case PortalRecruitee:
		if i := strings.Index(host, ".recruitee.com"); i > 0 {
			if sub := host[:i]; sub != "www" {
				return sub
			}
		}
	}
	return ""
}

// IsWorkdayPage reports Workday by URL or by markers in the HTML.
func IsWorkdayPage(pageURL, html string) bool {
	if workdayURLRe.MatchString(pageURL) {
		return true
	}
	low := strings.ToLower(html)
	for _, m := range workdayMarkers {
		if strings.Contains(low, m) {
			return true
		}
	}
	return false
}

// FindPortalLink returns the first link on the page that leaves the site
// for a known portal. Workday links win since they cannot be parsed from
// the DOM.
func FindPortalLink(html, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	pageHost := util.Host(pageURL)

	var first, workday string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		target := util.Resolve(pageURL, href)
		if target == "" || util.Host(target) == pageHost {
			return true
		}
		switch DetectPortal(target) {
		case "":
			return true
		case PortalWorkday:
			workday = loginSuffixRe.ReplaceAllString(target, "")
			return false
		default:
			if first == "" {
				first = target
			}
		}
		return true
	})
	if workday != "" {
		return workday
	}
	return first
}

// HasRecruiteeLinks reports the /o/{slug} links every Recruitee-hosted
// site uses, custom domains included.
func HasRecruiteeLinks(html string) bool {
	return recruiteeRe.MatchString(html)
}

// AshbyToken returns the Ashby job board token referenced by the page.
func AshbyToken(html string) string {
	if m := ashbyRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

func isJobFrame(frameURL string) bool {
	if frameURL == "" || frameURL == "about:blank" {
		return false
	}
	u, err := url.Parse(frameURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	for _, d := range iframeDomains {
		if strings.Contains(host, d) {
			return true
		}
	}
	for _, kw := range []string{"/jobs", "/careers", "/positions"} {
		if strings.Contains(frameURL, kw) {
			return true
		}
	}
	return false
}
