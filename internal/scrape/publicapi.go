package scrape

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/ingest/ats"
	"hireassist-engine/internal/scrape/util"
)

const defaultAshbyBase = "https://api.ashbyhq.com"

// PublicAPI reads boards that expose an unauthenticated JSON feed but are
// not tracked as ATS companies: Recruitee on a custom domain and Ashby.
type PublicAPI struct {
	client    *ats.Client
	ashbyBase string
}

func NewPublicAPI(client *ats.Client) *PublicAPI {
	return &PublicAPI{client: client, ashbyBase: defaultAshbyBase}
}

// WithAshbyBase points Ashby lookups at another host.
func (p *PublicAPI) WithAshbyBase(base string) *PublicAPI {
	cp := *p
	cp.ashbyBase = strings.TrimRight(base, "/")
	return &cp
}

type recruiteeOffer struct {
	Title      string `json:"title"`
	Location   string `json:"location"`
	CareersURL string `json:"careers_url"`
	URL        string `json:"url"`
}

type recruiteeOffers struct {
	Offers []json.RawMessage `json:"offers"`
}

// RecruiteeOffers calls /api/offers/ on the origin of pageURL.
func (p *PublicAPI) RecruiteeOffers(ctx context.Context, pageURL string) ([]domain.ScrapedJob, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return nil, eris.Errorf("recruitee: bad page url %q", pageURL)
	}
	endpoint := u.Scheme + "://" + u.Host + "/api/offers/"

	var resp recruiteeOffers
	if err := p.client.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, eris.Wrap(err, "recruitee offers")
	}
	var out []domain.ScrapedJob
	for _, o := range ats.DecodeEach[recruiteeOffer]("recruitee_public", resp.Offers) {
		title := util.CleanText(o.Title)
		if title == "" {
			continue
		}
		out = append(out, domain.ScrapedJob{
			Title:       title,
			LocationRaw: util.NormalizeLocation(o.Location),
			ApplyURL:    util.FirstNonEmpty(o.CareersURL, o.URL),
		})
	}
	return out, nil
}

type ashbyJob struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	JobURL   string `json:"jobUrl"`
}

type ashbyBoard struct {
	Jobs []json.RawMessage `json:"jobs"`
}

func (p *PublicAPI) AshbyJobs(ctx context.Context, token string) ([]domain.ScrapedJob, error) {
	endpoint := p.ashbyBase + "/posting-api/job-board/" + url.PathEscape(token)

	var resp ashbyBoard
	if err := p.client.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, eris.Wrapf(err, "ashby board %s", token)
	}
	var out []domain.ScrapedJob
	for _, j := range ats.DecodeEach[ashbyJob]("ashby", resp.Jobs) {
		title := util.CleanText(j.Title)
		if title == "" {
			continue
		}
		out = append(out, domain.ScrapedJob{
			Title:       title,
			LocationRaw: util.NormalizeLocation(j.Location),
			ApplyURL:    j.JobURL,
		})
	}
	return out, nil
}
