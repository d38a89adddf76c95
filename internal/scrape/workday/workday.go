package workday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/logging"
	"hireassist-engine/internal/scrape/util"
)

var ErrWorkdayBlocked = eris.New("workday blocked by cloudflare")

const (
	pageSize  = 50
	maxOffset = 5000
)

// Client calls a board's CXS jobs endpoint directly. It is the fallback
// when intercepting the board in a browser yields nothing.
type Client struct {
	limiter   *util.HostLimiter
	userAgent string
	timeout   time.Duration
	transport http.RoundTripper

	mu          sync.Mutex
	blockedHost map[string]bool
}

func NewClient(limiter *util.HostLimiter, userAgent string) *Client {
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}
	return &Client{
		limiter:     limiter,
		userAgent:   userAgent,
		timeout:     30 * time.Second,
		blockedHost: map[string]bool{},
	}
}

// WithTransport routes requests through rt.
func (c *Client) WithTransport(rt http.RoundTripper) *Client {
	c.transport = rt
	return c
}

type board struct {
	Scheme string
	Host   string
	Tenant string
	Site   string
	Locale string
}

type cxsRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type cxsResponse struct {
	Total int `json:"total"`
}

// newHTTPClient gives each board its own cookie jar so the CSRF cookie and
// session persist across pages.
func (c *Client) newHTTPClient() *http.Client {
	jar, _ := cookiejar.New(nil)
	hc := &http.Client{Jar: jar, Timeout: c.timeout}
	if c.transport != nil {
		hc.Transport = c.transport
	}
	return hc
}

func (c *Client) isBlocked(host string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blockedHost[host]
}

func (c *Client) block(host string) {
	c.mu.Lock()
	c.blockedHost[host] = true
	c.mu.Unlock()
}

// Jobs pages through every posting on the board at boardURL.
func (c *Client) Jobs(ctx context.Context, boardURL string) ([]domain.ScrapedJob, error) {
	b, err := parseBoardURL(boardURL)
	if err != nil {
		return nil, err
	}
	if c.isBlocked(b.Host) {
		return nil, ErrWorkdayBlocked
	}

	log := logging.Component("workday").With(zap.String("board", boardURL))
	hc := c.newHTTPClient()
	endpoint := b.jobsEndpoint()
	log.Debug("cxs fetch", zap.String("endpoint", endpoint))

	// Some tenants require CALYPSO_CSRF_TOKEN + CXS_SESSION from the board page.
	csrf, bootErr := c.bootstrapSession(ctx, hc, boardURL)
	if eris.Is(bootErr, ErrWorkdayBlocked) {
		c.block(b.Host)
		return nil, ErrWorkdayBlocked
	}

	var (
		out  []domain.ScrapedJob
		seen = map[string]bool{}
	)
	for offset := 0; offset <= maxOffset; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		payload, _ := json.Marshal(cxsRequest{AppliedFacets: map[string]any{}, Limit: pageSize, Offset: offset})

		status, data, err := c.post(ctx, hc, b, endpoint, boardURL, payload, csrf)
		if err != nil {
			return out, err
		}

		if status >= 400 {
			// already bootstrapped: nothing left to try
			if bootErr == nil {
				return out, eris.Errorf("workday status %d body=%s", status, util.Truncate(string(data), 240))
			}

			csrf2, err2 := c.bootstrapSession(ctx, hc, boardURL)
			if eris.Is(err2, ErrWorkdayBlocked) {
				c.block(b.Host)
				return out, ErrWorkdayBlocked
			}
			bootErr = nil
			csrf = csrf2

			status, data, err = c.post(ctx, hc, b, endpoint, boardURL, payload, csrf)
			if err != nil {
				return out, err
			}
			if status >= 400 {
				return out, eris.Errorf("workday retry status %d body=%s", status, util.Truncate(string(data), 240))
			}
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return out, eris.Wrapf(err, "workday decode body=%s", util.Truncate(string(data), 240))
		}
		page := ExtractPostings(raw, boardURL, seen)
		if len(page) == 0 {
			break
		}
		out = append(out, page...)

		var meta cxsResponse
		_ = json.Unmarshal(data, &meta)
		if meta.Total > 0 && offset+pageSize >= meta.Total {
			break
		}
	}

	log.Info("cxs fetch done", zap.Int("jobs", len(out)))
	return out, nil
}

func (c *Client) post(ctx context.Context, hc *http.Client, b board, endpoint, boardURL string, payload []byte, csrf string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, eris.Wrap(err, "build workday request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", fmt.Sprintf("%s://%s", b.Scheme, b.Host))
	req.Header.Set("Referer", strings.TrimRight(boardURL, "/"))
	req.Header.Set("Accept-Language", util.FirstNonEmpty(b.Locale, "en-US"))
	if csrf != "" {
		req.Header.Set("x-calypso-csrf-token", csrf)
	}

	if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
		return 0, nil, err
	}

	res, err := hc.Do(req)
	if err != nil {
		return 0, nil, eris.Wrap(err, "workday post jobs")
	}
	defer res.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	return res.StatusCode, data, nil
}

func parseBoardURL(raw string) (board, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return board{}, eris.New("empty board url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return board{}, eris.Wrapf(err, "parse board url %q", raw)
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	if u.Host == "" {
		return board{}, eris.Errorf("missing host in %q", raw)
	}

	parts := strings.Split(u.Hostname(), ".")
	if len(parts) < 3 {
		return board{}, eris.Errorf("unexpected host %q", u.Host)
	}
	tenant := parts[0]

	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) == 0 || segs[0] == "" {
		return board{}, eris.Errorf("unexpected path %q", u.Path)
	}

	// locale like "en-US" comes before the site name
	locale := ""
	if len(segs) >= 2 && looksLikeLocale(segs[0]) {
		locale = normalizeLocale(segs[0])
		segs = segs[1:]
	}

	return board{
		Scheme: u.Scheme,
		Host:   u.Host,
		Tenant: tenant,
		Site:   segs[0],
		Locale: locale,
	}, nil
}

func looksLikeLocale(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != '-' {
		return false
	}
	return isAlpha(s[0:2]) && isAlpha(s[3:5])
}

func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 5 && s[2] == '-' {
		return strings.ToLower(s[0:2]) + "-" + strings.ToUpper(s[3:5])
	}
	return s
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
			return false
		}
	}
	return true
}

func (b board) jobsEndpoint() string {
	base := fmt.Sprintf("%s://%s/wday/cxs/%s/%s/jobs", b.Scheme, b.Host, b.Tenant, b.Site)
	if b.Locale == "" {
		return base
	}
	return base + "?locale=" + url.QueryEscape(b.Locale)
}

func (c *Client) bootstrapSession(ctx context.Context, hc *http.Client, boardURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, boardURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "build bootstrap request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US")

	if err := c.limiter.WaitURL(ctx, boardURL); err != nil {
		return "", err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "workday bootstrap")
	}
	defer resp.Body.Close()

	// small preview is enough for the Cloudflare check
	preview, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_, _ = io.Copy(io.Discard, resp.Body)

	if looksLikeCloudflareBlock(resp, string(preview)) {
		return "", ErrWorkdayBlocked
	}

	u, _ := url.Parse(boardURL)
	for _, ck := range hc.Jar.Cookies(u) {
		if ck.Name == "CALYPSO_CSRF_TOKEN" && ck.Value != "" {
			return ck.Value, nil
		}
	}
	return "", eris.Errorf("workday bootstrap: missing CALYPSO_CSRF_TOKEN cookie (status=%d)", resp.StatusCode)
}

func looksLikeCloudflareBlock(resp *http.Response, bodyPreview string) bool {
	server := strings.ToLower(resp.Header.Get("Server"))
	if strings.Contains(server, "cloudflare") && resp.Header.Get("CF-RAY") != "" {
		return true
	}

	low := strings.ToLower(bodyPreview)
	if strings.Contains(low, "/cdn-cgi/") ||
		(strings.Contains(low, "cloudflare") && strings.Contains(low, "checking your browser")) ||
		(strings.Contains(low, "attention required") && strings.Contains(low, "cloudflare")) {
		return true
	}

	return resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests
}
