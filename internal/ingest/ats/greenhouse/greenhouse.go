package greenhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/ingest"
	"hireassist-engine/internal/ingest/ats"
)

const DefaultBaseURL = "https://boards-api.greenhouse.io"

type Vendor struct {
	c    *ats.Client
	base string
}

func New(c *ats.Client) *Vendor { return &Vendor{c: c, base: DefaultBaseURL} }

// WithBaseURL points the vendor at another API root.
func (v *Vendor) WithBaseURL(base string) *Vendor {
	return &Vendor{c: v.c, base: strings.TrimRight(base, "/")}
}

func (v *Vendor) Source() string { return domain.SourceGreenhouse }

type jobsResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

func (v *Vendor) ListJobs(ctx context.Context, token string) ([]ingest.Payload, error) {
	var res jobsResponse
	if err := v.c.GetJSON(ctx, fmt.Sprintf("%s/v1/boards/%s/jobs", v.base, url.PathEscape(token)), &res); err != nil {
		return nil, err
	}
	jobs := ats.DecodeEach[ingest.GreenhousePosting](v.Source(), res.Jobs)
	out := make([]ingest.Payload, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j)
	}
	return out, nil
}

func (v *Vendor) BoardName(ctx context.Context, token string) (string, error) {
	var res struct {
		Name string `json:"name"`
	}
	if err := v.c.GetJSON(ctx, fmt.Sprintf("%s/v1/boards/%s", v.base, url.PathEscape(token)), &res); err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Name), nil
}
