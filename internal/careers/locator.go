// Package careers finds a company's own career page when no hosted ATS board
// could be verified.
package careers

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"hireassist-engine/internal/config"
	"hireassist-engine/internal/logging"
	"hireassist-engine/internal/scrape/util"
)

var (
	// ErrNotFound means no candidate URL answered with an HTML page.
	ErrNotFound = eris.New("career page not found")
	// ErrRedirectMismatch means a candidate URL ended on an unrelated domain.
	// The search stops there.
	ErrRedirectMismatch = eris.New("career page redirected to unrelated domain")
)

const (
	ReasonNotFound         = "not_found"
	ReasonRedirectMismatch = "redirect_mismatch"
)

var DefaultPaths = []string{
	"/careers", "/jobs", "/en/careers", "/en/jobs",
	"/vacatures", "/work-with-us", "/join-us",
	"/careers/open-positions", "/company/careers",
}

var DefaultSubdomains = []string{"careers", "jobs"}

// ATSDomains may host a company's career page under their own domain.
var ATSDomains = []string{
	"greenhouse.io", "lever.co", "smartrecruiters.com", "recruitee.com",
	"workday.com", "myworkdayjobs.com", "careers-page.com", "breezy.hr",
	"personio.de", "join.com", "ashbyhq.com", "applytojob.com", "teamtailor.com",
}

const maxRedirects = 10

type Result struct {
	URL      string // candidate that answered
	FinalURL string // after redirects
	Title    string
	Reason   string
}

type Locator struct {
	hc         *http.Client
	limiter    *util.HostLimiter
	ua         string
	paths      []string
	subdomains []string
}

func NewLocator(cfg config.Config, limiter *util.HostLimiter) *Locator {
	l := &Locator{
		limiter:    limiter,
		ua:         cfg.HTTP.UserAgent,
		paths:      cfg.Careers.Paths,
		subdomains: cfg.Careers.Subdomains,
	}
	if len(l.paths) == 0 {
		l.paths = DefaultPaths
	}
	if len(l.subdomains) == 0 {
		l.subdomains = DefaultSubdomains
	}
	return l.WithTransport(http.DefaultTransport, time.Duration(cfg.Careers.TimeoutSeconds)*time.Second)
}

func (l *Locator) WithTransport(rt http.RoundTripper, timeout time.Duration) *Locator {
	cp := *l
	cp.hc = &http.Client{
		Transport: rt,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return eris.New("too many redirects")
			}
			return nil
		},
	}
	return &cp
}

// Candidates lists the URLs tried for a bare domain, in order.
func (l *Locator) Candidates(domain string) []string {
	var out []string
	for _, p := range l.paths {
		out = append(out, "https://"+domain+p)
	}
	for _, sub := range l.subdomains {
		out = append(out, "https://"+sub+"."+domain)
	}
	return out
}

// Locate tries each candidate URL for domain. The first HTML page on the
// company's registrable domain or a known ATS domain wins. A page on any
// other domain aborts with ErrRedirectMismatch.
func (l *Locator) Locate(ctx context.Context, domain string) (Result, error) {
	log := logging.Component("careers").With(zap.String("domain", domain))

	domain = util.Host(domain)
	expected := util.Registrable(domain)
	if expected == "" {
		return Result{Reason: ReasonNotFound}, ErrNotFound
	}

	for _, u := range l.Candidates(domain) {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		res, ok := l.check(ctx, u)
		if !ok {
			continue
		}
		finalHost := util.Host(res.FinalURL)
		if util.Registrable(finalHost) == expected || onATSDomain(finalHost) {
			log.Debug("career page found", zap.String("url", res.FinalURL))
			return res, nil
		}
		got := util.Registrable(finalHost)
		if got == "" {
			got = finalHost
		}
		log.Debug("career page redirect mismatch",
			zap.String("url", u),
			zap.String("final", res.FinalURL),
			zap.String("expected", expected))
		return Result{URL: u, FinalURL: res.FinalURL, Reason: ReasonRedirectMismatch + ":" + got}, ErrRedirectMismatch
	}
	return Result{Reason: ReasonNotFound}, ErrNotFound
}

// check reports whether u answered 200 with an HTML document. Transport
// errors count as a miss.
func (l *Locator) check(ctx context.Context, u string) (Result, bool) {
	if err := l.limiter.WaitURL(ctx, u); err != nil {
		return Result{}, false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, false
	}
	req.Header.Set("User-Agent", l.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	res, err := l.hc.Do(req)
	if err != nil {
		return Result{}, false
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK || !isHTML(res.Header.Get("Content-Type")) {
		_, _ = io.Copy(io.Discard, res.Body)
		return Result{}, false
	}

	out := Result{URL: u, FinalURL: res.Request.URL.String()}
	if doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, 2<<20)); err == nil {
		out.Title = util.CleanText(doc.Find("title").First().Text())
	}
	return out, true
}

func isHTML(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.Contains(strings.ToLower(ct), "text/html")
	}
	return mt == "text/html"
}

func onATSDomain(host string) bool {
	for _, d := range ATSDomains {
		if util.HostMatches(host, d) {
			return true
		}
	}
	return false
}
