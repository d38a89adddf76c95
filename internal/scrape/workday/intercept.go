package workday

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/logging"
)

var (
	searchSelectors = []string{
		"button[data-automation-id='jobSearchButton']",
		"button:text-matches('search', 'i')",
		"button:text-matches('view all', 'i')",
	}
	loadMoreSelector = "button[data-automation-id='loadMoreButton'], button:text-matches('show more', 'i')"
)

const loadMoreRounds = 3

// responses collects CXS JSON responses seen by a page. Bodies are read
// after navigation settles, never inside the event handler.
type responses struct {
	mu   sync.Mutex
	list []playwright.Response
}

func (r *responses) add(resp playwright.Response) {
	if !strings.Contains(resp.URL(), "/wday/cxs/") {
		return
	}
	if !strings.Contains(strings.ToLower(resp.Headers()["content-type"]), "json") {
		return
	}
	r.mu.Lock()
	r.list = append(r.list, resp)
	r.mu.Unlock()
}

func (r *responses) drain() []playwright.Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.list
	r.list = nil
	return out
}

// Intercept loads boardURL in page and reads postings out of the board's
// own CXS responses. When the first load shows nothing it presses the
// search button; afterwards it pages with "load more".
func Intercept(ctx context.Context, page playwright.Page, boardURL string, navTimeout time.Duration) []domain.ScrapedJob {
	log := logging.Component("workday").With(zap.String("board", boardURL))

	rec := &responses{}
	handler := rec.add
	page.OnResponse(handler)
	defer page.RemoveListener("response", handler)

	seen := map[string]bool{}
	var jobs []domain.ScrapedJob
	collect := func() int {
		before := len(jobs)
		for _, resp := range rec.drain() {
			body, err := resp.Body()
			if err != nil {
				continue
			}
			var data any
			if json.Unmarshal(body, &data) != nil {
				continue
			}
			jobs = append(jobs, ExtractPostings(data, boardURL, seen)...)
		}
		return len(jobs) - before
	}

	if _, err := page.Goto(boardURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(navTimeout.Milliseconds())),
	}); err != nil {
		log.Warn("goto failed", zap.Error(err))
		return nil
	}
	settle(ctx, page)
	collect()

	if len(jobs) == 0 {
		for _, sel := range searchSelectors {
			if ctx.Err() != nil {
				break
			}
			if !clickIfVisible(page, sel) {
				continue
			}
			settle(ctx, page)
			if collect() > 0 {
				break
			}
		}
	}

	for i := 0; i < loadMoreRounds && ctx.Err() == nil; i++ {
		if !clickIfVisible(page, loadMoreSelector) {
			break
		}
		settle(ctx, page)
		if collect() == 0 {
			break
		}
	}

	log.Debug("intercepted", zap.Int("jobs", len(jobs)))
	return jobs
}

func settle(ctx context.Context, page playwright.Page) {
	_ = page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(12000),
	})
	sleep(ctx, 3*time.Second)
}

func clickIfVisible(page playwright.Page, sel string) bool {
	btn := page.Locator(sel).First()
	if n, err := btn.Count(); err != nil || n == 0 {
		return false
	}
	if ok, err := btn.IsVisible(); err != nil || !ok {
		return false
	}
	return btn.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(5000)}) == nil
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
