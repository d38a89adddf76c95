package scrape

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"hireassist-engine/internal/config"
	"hireassist-engine/internal/logging"
)

// Browser is one headless Chromium shared by every company in a run.
type Browser struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	userAgent  string
	navTimeout time.Duration
}

func Launch(cfg config.Config) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, eris.Wrap(err, "start playwright")
	}
	br, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Scrape.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, eris.Wrap(err, "launch chromium")
	}
	logging.Component("scrape").Info("browser launched", zap.Bool("headless", cfg.Scrape.Headless))
	return &Browser{
		pw:         pw,
		browser:    br,
		userAgent:  cfg.Scrape.UserAgent,
		navTimeout: time.Duration(cfg.Scrape.NavTimeoutSeconds) * time.Second,
	}, nil
}

// NewPage opens a fresh browser context for one company. The context is
// closed when ctx ends or release is called, whichever comes first.
func (b *Browser) NewPage(ctx context.Context) (page playwright.Page, release func(), err error) {
	bctx, err := b.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(b.userAgent),
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "new browser context")
	}
	bctx.SetDefaultTimeout(float64(b.navTimeout.Milliseconds()))

	page, err = bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, nil, eris.Wrap(err, "new page")
	}

	stop := context.AfterFunc(ctx, func() { _ = bctx.Close() })
	release = func() {
		if stop() {
			_ = bctx.Close()
		}
	}
	return page, release, nil
}

func (b *Browser) Close() error {
	if b == nil {
		return nil
	}
	err := b.browser.Close()
	if stopErr := b.pw.Stop(); err == nil {
		err = stopErr
	}
	return eris.Wrap(err, "close browser")
}
