package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/logging"
	"hireassist-engine/internal/scrape/util"
	"hireassist-engine/internal/scrape/workday"
)

// Strategy is one way of getting listings out of a career page. Strategies
// run in order on the same Session; the first non-empty result wins.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, s *Session) ([]domain.ScrapedJob, error)
}

var (
	jobNavSelectors = []string{
		"a:text-matches('view.*(jobs|positions|openings|roles)', 'i')",
		"a:text-matches('see.*(jobs|positions|openings|roles)', 'i')",
		"a:text-matches('find.*job', 'i')",
		"a:text-matches('go to job', 'i')",
		"a:text-matches('open positions', 'i')",
		"a:text-matches('current openings', 'i')",
		"a:text-matches('browse.*jobs', 'i')",
		"a:text-matches('all (open )?jobs', 'i')",
		"a:text-matches('job search', 'i')",
		"a:text-matches('explore.*roles', 'i')",
		"a:text-matches('search.*jobs', 'i')",
	}

	jobHrefKeywords = []string{
		"/jobs", "/openings", "/positions", "/vacatures", "/vacancies",
		"/open-positions", "/find-your-job", "/career-opportunities",
		"/opportunities",
	}

	loadMoreSelectors = []string{
		"button:text-matches('load more', 'i')",
		"button:text-matches('show more', 'i')",
		"button:text-matches('show all', 'i')",
		"button:text-matches('view more', 'i')",
		"button:text-matches('more jobs', 'i')",
		"button:text-matches('more positions', 'i')",
		"a:text-matches('load more', 'i')",
		"a:text-matches('show more', 'i')",
		"a:text-matches('show all', 'i')",
		"a:text-matches('view more', 'i')",
	}
)

const (
	maxAnchorScan  = 200
	maxSubpages    = 3
	maxLoadClicks  = 5
	maxScrollPass  = 5
	subpageTimeout = 20 * time.Second
)

// workdayScraper intercepts a board's CXS traffic and falls back to calling
// the endpoint directly.
type workdayScraper struct {
	client *workday.Client
}

func (w workdayScraper) scrape(ctx context.Context, s *Session, boardURL string) []domain.ScrapedJob {
	jobs := workday.Intercept(ctx, s.Page, boardURL, s.navTimeout)
	if len(jobs) > 0 || w.client == nil {
		return jobs
	}
	jobs, err := w.client.Jobs(ctx, boardURL)
	if err != nil {
		logging.Component("scrape").Debug("workday api fallback failed",
			zap.String("company", s.Company), zap.String("board", boardURL), zap.Error(err))
	}
	return jobs
}

// scrapePortal handles a page already sitting on a portal.
func scrapePortal(ctx context.Context, s *Session, wd workdayScraper, portal, portalURL string) ([]domain.ScrapedJob, error) {
	if portal == PortalWorkday {
		return wd.scrape(ctx, s, portalURL), nil
	}
	html, err := s.HTML()
	if err != nil {
		return nil, err
	}
	return ParseHTML(html, portalURL), nil
}

type portalRedirect struct{ wd workdayScraper }

func (portalRedirect) Name() string { return "portal_redirect" }

func (p portalRedirect) Extract(ctx context.Context, s *Session) ([]domain.ScrapedJob, error) {
	final := s.URL()
	portal := DetectPortal(final)
	if portal == "" {
		return nil, nil
	}
	jobs, err := scrapePortal(ctx, s, p.wd, portal, final)
	if len(jobs) > 0 {
		s.markPortal(portal, final)
	}
	return jobs, err
}

type workdayMarker struct{ wd workdayScraper }

func (workdayMarker) Name() string { return "workday_marker" }

func (w workdayMarker) Extract(ctx context.Context, s *Session) ([]domain.ScrapedJob, error) {
	html, err := s.HTML()
	if err != nil {
		return nil, err
	}
	if !IsWorkdayPage(s.StartURL, html) {
		return nil, nil
	}
	jobs := w.wd.scrape(ctx, s, s.StartURL)
	if len(jobs) > 0 {
		s.markPortal(PortalWorkday, s.StartURL)
	}
	return jobs, nil
}

// embeddedPortal follows a link from the company's own page to an external
// portal and scrapes it there.
type embeddedPortal struct{ wd workdayScraper }

func (embeddedPortal) Name() string { return "embedded_portal" }

func (e embeddedPortal) Extract(ctx context.Context, s *Session) ([]domain.ScrapedJob, error) {
	html, err := s.HTML()
	if err != nil {
		return nil, err
	}
	link := FindPortalLink(html, s.URL())
	if link == "" {
		return nil, nil
	}
	portal := DetectPortal(link)
	if portal == PortalWorkday {
		jobs := e.wd.scrape(ctx, s, link)
		if len(jobs) > 0 {
			s.markPortal(portal, link)
		}
		return jobs, nil
	}

	if err := s.Goto(ctx, link); err != nil {
		return nil, err
	}
	final := s.URL()
	jobs, err := scrapePortal(ctx, s, e.wd, DetectPortal(final), final)
	if len(jobs) > 0 {
		s.markPortal(DetectPortal(final), final)
	}
	return jobs, err
}

type parseStrategy struct{}

func (parseStrategy) Name() string { return "parse" }

func (parseStrategy) Extract(_ context.Context, s *Session) ([]domain.ScrapedJob, error) {
	return s.Parse()
}

type iframes struct{}

func (iframes) Name() string { return "iframes" }

func (iframes) Extract(ctx context.Context, s *Session) ([]domain.ScrapedJob, error) {
	for _, frame := range s.Page.Frames() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		frameURL := frame.URL()
		if !isJobFrame(frameURL) {
			continue
		}
		_ = frame.WaitForLoadState(playwright.FrameWaitForLoadStateOptions{
			State:   playwright.LoadStateDomcontentloaded,
			Timeout: playwright.Float(10000),
		})
		html, err := frame.Content()
		if err != nil {
			continue
		}
		if jobs := ParseHTML(html, frameURL); len(jobs) > 0 {
			if portal := DetectPortal(frameURL); portal != "" {
				s.markPortal(portal, frameURL)
			}
			return jobs, nil
		}
	}
	return nil, nil
}

// followLinks opens "view all jobs" style subpages on the same host. The
// page is returned to the start URL when nothing is found.
type followLinks struct{}

func (followLinks) Name() string { return "follow_links" }

func (f followLinks) Extract(ctx context.Context, s *Session) ([]domain.ScrapedJob, error) {
	jobs := f.follow(ctx, s)
	if len(jobs) > 0 {
		if portal := DetectPortal(s.URL()); portal != "" {
			s.markPortal(portal, s.URL())
		}
		return jobs, nil
	}
	if s.URL() != s.StartURL {
		if err := s.Goto(ctx, s.StartURL); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (followLinks) follow(ctx context.Context, s *Session) []domain.ScrapedJob {
	start := s.StartURL
	startHost := util.Host(start)
	tryPage := func(target string) []domain.ScrapedJob {
		sub, cancel := context.WithTimeout(ctx, subpageTimeout)
		defer cancel()
		if err := s.Goto(sub, target); err != nil {
			return nil
		}
		jobs, _ := s.Parse()
		return jobs
	}

	for _, sel := range jobNavSelectors {
		if ctx.Err() != nil {
			return nil
		}
		link := s.Page.Locator(sel).First()
		if n, err := link.Count(); err != nil || n == 0 {
			continue
		}
		href, err := link.GetAttribute("href", playwright.LocatorGetAttributeOptions{Timeout: playwright.Float(2000)})
		if err != nil || href == "" {
			continue
		}
		target := util.Resolve(start, href)
		if target == "" || target == start || util.Host(target) != startHost {
			continue
		}
		if jobs := tryPage(target); len(jobs) > 0 {
			return jobs
		}
	}

	// Collect candidates before navigating; locators go stale after a goto.
	if s.URL() != start {
		if err := s.Goto(ctx, start); err != nil {
			return nil
		}
	}
	anchors := s.Page.Locator("a[href]")
	count, err := anchors.Count()
	if err != nil {
		return nil
	}
	var targets []string
	visited := map[string]bool{}
	for i := 0; i < count && i < maxAnchorScan && len(targets) < maxSubpages; i++ {
		href, err := anchors.Nth(i).GetAttribute("href", playwright.LocatorGetAttributeOptions{Timeout: playwright.Float(1000)})
		if err != nil || href == "" {
			continue
		}
		target := util.Resolve(start, href)
		if target == "" || target == start || visited[target] || util.Host(target) != startHost {
			continue
		}
		if hasJobHrefKeyword(target) {
			visited[target] = true
			targets = append(targets, target)
		}
	}
	for _, target := range targets {
		if ctx.Err() != nil {
			return nil
		}
		if jobs := tryPage(target); len(jobs) > 0 {
			return jobs
		}
	}
	return nil
}

func hasJobHrefKeyword(target string) bool {
	path := strings.ToLower(target)
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
	}
	if i := strings.Index(path, "/"); i >= 0 {
		path = path[i:]
	} else {
		return false
	}
	for _, kw := range jobHrefKeywords {
		if strings.Contains(path, kw) {
			return true
		}
	}
	return false
}

type loadMore struct{}

func (loadMore) Name() string { return "load_more" }

func (loadMore) Extract(ctx context.Context, s *Session) ([]domain.ScrapedJob, error) {
	var btn playwright.Locator
	for _, sel := range loadMoreSelectors {
		if loc := s.Page.Locator(sel).First(); visible(loc) {
			btn = loc
			break
		}
	}
	if btn == nil {
		return nil, nil
	}

	clicked := false
	for i := 0; i < maxLoadClicks && ctx.Err() == nil; i++ {
		if err := btn.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(2000)}); err != nil {
			break
		}
		clicked = true
		pauseCtx(ctx, 2*time.Second)
		if !visible(btn) {
			break
		}
	}
	if !clicked {
		return nil, nil
	}
	return s.Parse()
}

func visible(loc playwright.Locator) bool {
	if n, err := loc.Count(); err != nil || n == 0 {
		return false
	}
	ok, err := loc.IsVisible()
	return err == nil && ok
}

type scroll struct{}

func (scroll) Name() string { return "scroll" }

func (scroll) Extract(ctx context.Context, s *Session) ([]domain.ScrapedJob, error) {
	height := func() string {
		v, err := s.Page.Evaluate("document.body.scrollHeight")
		if err != nil {
			return ""
		}
		return fmt.Sprint(v)
	}

	prev := height()
	for i := 0; i < maxScrollPass && ctx.Err() == nil; i++ {
		if _, err := s.Page.Evaluate("window.scrollTo(0, document.body.scrollHeight)"); err != nil {
			break
		}
		pauseCtx(ctx, 1500*time.Millisecond)
		next := height()
		if next == prev {
			break
		}
		prev = next
	}
	return s.Parse()
}

// publicAPI reads Recruitee custom domains and Ashby boards through their
// JSON feeds.
type publicAPI struct{ api *PublicAPI }

func (publicAPI) Name() string { return "public_api" }

func (p publicAPI) Extract(ctx context.Context, s *Session) ([]domain.ScrapedJob, error) {
	if p.api == nil {
		return nil, nil
	}
	html, err := s.HTML()
	if err != nil {
		return nil, err
	}
	log := logging.Component("scrape").With(zap.String("company", s.Company))

	var lastErr error
	if HasRecruiteeLinks(html) {
		jobs, err := p.api.RecruiteeOffers(ctx, s.StartURL)
		if len(jobs) > 0 {
			return jobs, nil
		}
		if err != nil {
			log.Debug("recruitee feed failed", zap.Error(err))
			lastErr = err
		}
	}
	if token := AshbyToken(html); token != "" {
		jobs, err := p.api.AshbyJobs(ctx, token)
		if len(jobs) > 0 {
			return jobs, nil
		}
		if err != nil {
			lastErr = err
		}
	}
	return nil, lastErr
}

type aiText struct{ ai *AIExtractor }

func (aiText) Name() string { return "ai_text" }

func (a aiText) Extract(ctx context.Context, s *Session) ([]domain.ScrapedJob, error) {
	if a.ai == nil || a.ai.llm == nil {
		return nil, nil
	}
	html, err := s.HTML()
	if err != nil {
		return nil, err
	}
	return a.ai.Extract(ctx, html, s.StartURL)
}
