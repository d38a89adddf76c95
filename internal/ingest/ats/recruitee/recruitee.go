package recruitee

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/ingest"
	"hireassist-engine/internal/ingest/ats"
)

// DefaultURLPattern is formatted with the board token (the subdomain).
const DefaultURLPattern = "https://%s.recruitee.com"

type Vendor struct {
	c       *ats.Client
	pattern string
}

func New(c *ats.Client) *Vendor { return &Vendor{c: c, pattern: DefaultURLPattern} }

// WithURLPattern replaces the per-token API root; pattern must contain one %s.
func (v *Vendor) WithURLPattern(pattern string) *Vendor {
	return &Vendor{c: v.c, pattern: strings.TrimRight(pattern, "/")}
}

func (v *Vendor) Source() string { return domain.SourceRecruitee }

type offersResponse struct {
	Offers []json.RawMessage `json:"offers"`
}

func (v *Vendor) ListJobs(ctx context.Context, token string) ([]ingest.Payload, error) {
	if !validSubdomain(token) {
		return nil, ats.ErrNotFound
	}
	var res offersResponse
	if err := v.c.GetJSON(ctx, fmt.Sprintf(v.pattern, token)+"/api/offers/", &res); err != nil {
		return nil, err
	}
	offers := ats.DecodeEach[ingest.RecruiteePosting](v.Source(), res.Offers)
	out := make([]ingest.Payload, 0, len(offers))
	for _, o := range offers {
		out = append(out, o)
	}
	return out, nil
}

// BoardName is the token itself: the subdomain is chosen by the company.
func (v *Vendor) BoardName(_ context.Context, token string) (string, error) {
	return token, nil
}

func validSubdomain(s string) bool {
	if s == "" || len(s) > 63 || s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-') {
			return false
		}
	}
	return true
}
