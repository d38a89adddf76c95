package lever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/ingest"
	"hireassist-engine/internal/ingest/ats"
)

const DefaultBaseURL = "https://api.lever.co"

type Vendor struct {
	c    *ats.Client
	base string
}

func New(c *ats.Client) *Vendor { return &Vendor{c: c, base: DefaultBaseURL} }

func (v *Vendor) WithBaseURL(base string) *Vendor {
	return &Vendor{c: v.c, base: strings.TrimRight(base, "/")}
}

func (v *Vendor) Source() string { return domain.SourceLever }

// postings accepts both response shapes Lever serves: a bare array or
// {"data": [...]}.
type postings []ingest.LeverPosting

func (p *postings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var raw []json.RawMessage
	if len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return eris.Wrap(err, "lever postings list")
		}
	} else {
		var wrapped struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(b, &wrapped); err != nil {
			return eris.Wrap(err, "lever postings object")
		}
		raw = wrapped.Data
	}
	*p = ats.DecodeEach[ingest.LeverPosting](domain.SourceLever, raw)
	return nil
}

func (v *Vendor) fetch(ctx context.Context, token, extra string) (postings, error) {
	var res postings
	u := fmt.Sprintf("%s/v0/postings/%s?mode=json%s", v.base, url.PathEscape(token), extra)
	if err := v.c.GetJSON(ctx, u, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (v *Vendor) ListJobs(ctx context.Context, token string) ([]ingest.Payload, error) {
	res, err := v.fetch(ctx, token, "")
	if err != nil {
		return nil, err
	}
	out := make([]ingest.Payload, 0, len(res))
	for _, p := range res {
		out = append(out, p)
	}
	return out, nil
}

// BoardName has no dedicated endpoint; the first posting's hosted URL
// carries the company slug as its first path segment.
func (v *Vendor) BoardName(ctx context.Context, token string) (string, error) {
	res, err := v.fetch(ctx, token, "&limit=1")
	if err != nil {
		return "", err
	}
	if len(res) == 0 {
		return "", nil
	}
	return SlugFromHostedURL(res[0].HostedURL), nil
}

func SlugFromHostedURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	seg := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
	return seg[0]
}
