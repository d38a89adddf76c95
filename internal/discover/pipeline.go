// Package discover turns scored candidates into tracked companies: it
// probes hosted ATS boards for plausible tokens, verifies that a board
// belongs to the candidate, and falls back to the company's own career page.
package discover

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"hireassist-engine/internal/careers"
	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/logging"
)

// Per-candidate outcomes, used for run counters.
const (
	OutcomeDuplicate       = "dupe"
	OutcomeDuplicateDomain = "dupe_domain"
	OutcomeNoWebsite       = "no_website"
	OutcomeATSAdded        = "ats_added"
	OutcomeCareerAdded     = "career_added"
	OutcomeATSMismatch     = "ats_mismatch"
	OutcomeCareerMismatch  = "career_mismatch"
	OutcomeNoMatch         = "no_match"
	OutcomeError           = "error"
)

type Store interface {
	CompanyExists(ctx context.Context, names ...string) (bool, error)
	DomainTracked(ctx context.Context, domain string) (bool, error)
	UpsertCompany(ctx context.Context, c domain.Company) (int64, error)
	SetCandidateOutcome(ctx context.Context, id int64, status, reason string, atsVerified bool) error
	GetCache(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error)
	PutCache(ctx context.Context, key string, value []byte) error
}

type ATSProber interface {
	Probe(ctx context.Context, s Subject) (Outcome, error)
}

type CareerLocator interface {
	Locate(ctx context.Context, domain string) (careers.Result, error)
}

type Pipeline struct {
	store    Store
	prober   ATSProber
	locator  CareerLocator
	cacheTTL time.Duration
	// SkipATS goes straight to the career page fallback.
	SkipATS bool
	now     func() time.Time
}

func NewPipeline(st Store, prober ATSProber, locator CareerLocator, cacheTTL time.Duration) *Pipeline {
	return &Pipeline{
		store:    st,
		prober:   prober,
		locator:  locator,
		cacheTTL: cacheTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type decision struct {
	outcome     string
	status      string
	reason      string
	atsVerified bool
}

// Process runs one candidate to a terminal status. The candidate row is
// always updated; a returned error means the candidate was marked error.
func (p *Pipeline) Process(ctx context.Context, c domain.Candidate) (string, error) {
	log := logging.Component("discover").With(zap.String("company", c.Name), zap.Int64("candidate", c.ID))

	d, err := p.decide(ctx, c)
	if err != nil {
		log.Warn("candidate failed", zap.Error(err))
		reason := truncate(err.Error(), 100)
		if serr := p.store.SetCandidateOutcome(context.WithoutCancel(ctx), c.ID, domain.CandidateError, reason, false); serr != nil {
			log.Error("record candidate error", zap.Error(serr))
		}
		return OutcomeError, err
	}
	if err := p.store.SetCandidateOutcome(ctx, c.ID, d.status, d.reason, d.atsVerified); err != nil {
		return OutcomeError, eris.Wrapf(err, "record outcome for %q", c.Name)
	}
	log.Info("candidate processed", zap.String("outcome", d.outcome), zap.String("reason", d.reason))
	return d.outcome, nil
}

func (p *Pipeline) decide(ctx context.Context, c domain.Candidate) (decision, error) {
	exists, err := p.store.CompanyExists(ctx, c.Name, NormalizeName(c.Name))
	if err != nil {
		return decision{}, err
	}
	if exists {
		return decision{outcome: OutcomeDuplicate, status: domain.CandidateProcessed}, nil
	}

	dom := c.WebsiteDomain
	if dom == "" {
		dom = WebsiteDomain(c.Website)
	}
	if dom == "" {
		return decision{outcome: OutcomeNoWebsite, status: domain.CandidateRejected, reason: "no_website"}, nil
	}

	tracked, err := p.store.DomainTracked(ctx, dom)
	if err != nil {
		return decision{}, err
	}
	if tracked {
		return decision{outcome: OutcomeDuplicateDomain, status: domain.CandidateProcessed, reason: "duplicate_domain"}, nil
	}

	var atsReject string
	if !p.SkipATS {
		out, err := p.probe(ctx, Subject{Name: c.Name, Domain: dom})
		if err != nil {
			return decision{}, err
		}
		if out.Found() && out.Verified {
			now := p.now()
			_, err := p.store.UpsertCompany(ctx, domain.Company{
				Name:           c.Name,
				Source:         out.Source,
				Token:          out.Token,
				Active:         true,
				Confidence:     out.Confidence,
				DiscoveredAt:   now,
				LastVerifiedAt: &now,
			})
			if err != nil {
				return decision{}, err
			}
			return decision{outcome: OutcomeATSAdded, status: domain.CandidateProcessed, atsVerified: true}, nil
		}
		if out.Found() {
			atsReject = out.Reason
		}
	}

	res, err := p.locator.Locate(ctx, dom)
	switch {
	case err == nil:
		now := p.now()
		if _, err := p.store.UpsertCompany(ctx, domain.Company{
			Name:           c.Name,
			Source:         domain.SourceCareersPage,
			Token:          res.FinalURL,
			Active:         true,
			Confidence:     ConfidenceAuto,
			DiscoveredAt:   now,
			LastVerifiedAt: &now,
		}); err != nil {
			return decision{}, err
		}
		return decision{outcome: OutcomeCareerAdded, status: domain.CandidateProcessed}, nil

	case atsReject != "" && (eris.Is(err, careers.ErrNotFound) || eris.Is(err, careers.ErrRedirectMismatch)):
		return decision{outcome: OutcomeATSMismatch, status: domain.CandidateRejected, reason: "ats_mismatch:" + atsReject}, nil

	case eris.Is(err, careers.ErrRedirectMismatch):
		return decision{outcome: OutcomeCareerMismatch, status: domain.CandidateRejected, reason: "career:" + res.Reason}, nil

	case eris.Is(err, careers.ErrNotFound):
		return decision{outcome: OutcomeNoMatch, status: domain.CandidateRejected, reason: "no_match"}, nil

	default:
		return decision{}, eris.Wrap(err, "career page lookup")
	}
}

// probe consults the cache before spending requests on the vendors.
func (p *Pipeline) probe(ctx context.Context, s Subject) (Outcome, error) {
	key := "probe:" + s.Domain
	if b, ok, err := p.store.GetCache(ctx, key, p.cacheTTL); err == nil && ok {
		var out Outcome
		if json.Unmarshal(b, &out) == nil {
			return out, nil
		}
	}

	out, err := p.prober.Probe(ctx, s)
	if err != nil {
		return Outcome{}, err
	}
	if b, err := json.Marshal(out); err == nil {
		if err := p.store.PutCache(ctx, key, b); err != nil {
			logging.Component("discover").Warn("probe cache write", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}
