package ats

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"hireassist-engine/internal/config"
	"hireassist-engine/internal/logging"
	"hireassist-engine/internal/scrape/util"
)

// Client is the HTTP transport shared by all vendors.
type Client struct {
	hc      *http.Client
	limiter *util.HostLimiter
	ua      string
	retries int
	backoff time.Duration
}

func NewClient(cfg config.Config, limiter *util.HostLimiter) *Client {
	return &Client{
		hc:      &http.Client{Timeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second},
		limiter: limiter,
		ua:      cfg.HTTP.UserAgent,
		retries: cfg.HTTP.Retries,
		backoff: 500 * time.Millisecond,
	}
}

// WithHTTPClient swaps the underlying client; tests use it to point at
// httptest servers.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.hc = hc
	return &cp
}

// GetJSON decodes the body of a GET into v. 404 maps to ErrNotFound; 429,
// 5xx and transport errors are retried with linear backoff.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
		var code int
		code, err = c.getOnce(ctx, url, v)
		if err == nil || ctx.Err() != nil || !retryable(code) {
			return err
		}
		logging.Component("ats").Debug("request retry",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return err
}

// retryable reports whether a failed request is worth repeating. Code 0 is
// a transport error.
func retryable(code int) bool {
	return code == 0 || code == http.StatusTooManyRequests || code >= 500
}

func (c *Client) getOnce(ctx context.Context, url string, v any) (int, error) {
	if err := c.limiter.WaitURL(ctx, url); err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return http.StatusBadRequest, eris.Wrapf(err, "build request %s", url)
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, eris.Wrapf(err, "get %s", url)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, res.Body)
		return res.StatusCode, ErrNotFound
	case res.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, res.Body)
		return res.StatusCode, eris.Errorf("get %s: status %d", url, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return res.StatusCode, eris.Wrapf(err, "decode %s", url)
	}
	return res.StatusCode, nil
}
