package scrape

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"

	"hireassist-engine/internal/domain"
)

// Session is the per-company state strategies share: the page, where it
// started, and which portal (if any) the winning strategy landed on.
type Session struct {
	Page     playwright.Page
	Company  string
	StartURL string

	navTimeout time.Duration
	portal     string
	portalURL  string
}

func NewSession(page playwright.Page, company, startURL string, navTimeout time.Duration) *Session {
	if navTimeout <= 0 {
		navTimeout = 30 * time.Second
	}
	return &Session{Page: page, Company: company, StartURL: startURL, navTimeout: navTimeout}
}

// Goto navigates and lets the page settle. Client-side boards render late,
// so a network-idle wait is attempted but not required.
func (s *Session) Goto(ctx context.Context, target string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.Page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.navTimeout.Milliseconds())),
	})
	if err != nil {
		return eris.Wrapf(err, "goto %s", target)
	}
	s.settle(ctx, 8*time.Second, 2*time.Second)
	return nil
}

func (s *Session) settle(ctx context.Context, idle, pause time.Duration) {
	_ = s.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(idle.Milliseconds())),
	})
	pauseCtx(ctx, pause)
}

func (s *Session) URL() string {
	if s.Page == nil {
		return s.StartURL
	}
	return s.Page.URL()
}

func (s *Session) HTML() (string, error) {
	html, err := s.Page.Content()
	return html, eris.Wrap(err, "page content")
}

// Parse runs the HTML parsers over the current page.
func (s *Session) Parse() ([]domain.ScrapedJob, error) {
	html, err := s.HTML()
	if err != nil {
		return nil, err
	}
	return ParseHTML(html, s.URL()), nil
}

// markPortal records the portal a strategy scraped so the engine can offer
// an upgrade to the vendor API.
func (s *Session) markPortal(portal, portalURL string) {
	s.portal = portal
	s.portalURL = portalURL
}

func pauseCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
