package smartrecruiters

import (
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

const (
	DefaultBaseURL = "https://api.smartrecruiters.com"
	pageSize       = 100
	// maxPages bounds a runaway board.
	maxPages = 50
)

type Vendor struct {
	c    *ats.Client
	base string
}

func New(c *ats.Client) *Vendor { return &Vendor{c: c, base: DefaultBaseURL} }

func (v *Vendor) WithBaseURL(base string) *Vendor {
	return &Vendor{c: v.c, base: strings.TrimRight(base, "/")}
}

func (v *Vendor) Source() string { return domain.SourceSmartRecruiters }

// { "content": [...], "totalFound": N, "offset": O, "limit": L }
type postingsResponse struct {
	Content    []json.RawMessage `json:"content"`
	TotalFound int               `json:"totalFound"`
}

func (v *Vendor) ListJobs(ctx context.Context, token string) ([]ingest.Payload, error) {
	base := fmt.Sprintf("%s/v1/companies/%s/postings", v.base, url.PathEscape(token))

	var out []ingest.Payload
	for page, offset := 0, 0; page < maxPages; page++ {
		var res postingsResponse
		u := fmt.Sprintf("%s?limit=%d&offset=%d", base, pageSize, offset)
		// A partial board would read as closures downstream, so any failed
		// page fails the whole listing.
		if err := v.c.GetJSON(ctx, u, &res); err != nil {
			return nil, eris.Wrapf(err, "smartrecruiters %s page %d", token, page+1)
		}
		for _, p := range ats.DecodeEach[ingest.SmartRecruitersPosting](v.Source(), res.Content) {
			p.Token = token
			out = append(out, p)
		}
		offset += len(res.Content)
		if len(res.Content) < pageSize || offset >= res.TotalFound {
			break
		}
	}
	return out, nil
}

func (v *Vendor) BoardName(ctx context.Context, token string) (string, error) {
	var res struct {
		Name string `json:"name"`
	}
	if err := v.c.GetJSON(ctx, fmt.Sprintf("%s/v1/companies/%s", v.base, url.PathEscape(token)), &res); err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Name), nil
}
