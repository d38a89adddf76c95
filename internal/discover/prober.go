package discover

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"hireassist-engine/internal/ingest"
	"hireassist-engine/internal/ingest/ats"
	"hireassist-engine/internal/logging"
	"hireassist-engine/internal/normalize"
)

// Outcome is the result of probing every vendor for one company.
type Outcome struct {
	Source     string `json:"source,omitempty"`
	Token      string `json:"token,omitempty"`
	Verified   bool   `json:"verified"`
	Reason     string `json:"reason,omitempty"`
	JobCount   int    `json:"job_count"`
	Confidence string `json:"confidence,omitempty"`
}

// Found reports whether any board answered.
func (o Outcome) Found() bool { return o.Source != "" }

type Prober struct {
	vendors  *ats.Registry
	verifier Verifier
	delay    time.Duration
	loc      *normalize.Locations
}

func NewProber(vendors *ats.Registry, verifier Verifier, delay time.Duration, loc *normalize.Locations) *Prober {
	return &Prober{vendors: vendors, verifier: verifier, delay: delay, loc: loc}
}

type probeHit struct {
	Hit
	jobs []ingest.Payload
}

// Probe tries every guessed token on every vendor, verifies each hit and
// returns the verified hit with the most jobs. When nothing verifies, the
// largest rejected hit is returned with its rejection reason.
func (p *Prober) Probe(ctx context.Context, s Subject) (Outcome, error) {
	log := logging.Component("discover").With(zap.String("company", s.Name))

	var hits []probeHit
	for _, token := range GenerateTokens(s.Name, s.Domain) {
		for _, v := range p.vendors.All() {
			if err := p.wait(ctx); err != nil {
				return Outcome{}, err
			}
			jobs, err := v.ListJobs(ctx, token)
			if err != nil {
				if ctx.Err() != nil {
					return Outcome{}, eris.Wrap(ctx.Err(), "probe interrupted")
				}
				if !eris.Is(err, ats.ErrNotFound) {
					log.Debug("probe failed", zap.String("source", v.Source()), zap.String("token", token), zap.Error(err))
				}
				continue
			}
			hits = append(hits, probeHit{
				Hit:  Hit{Source: v.Source(), Token: token, JobCount: len(jobs)},
				jobs: jobs,
			})
		}
	}
	if len(hits) == 0 {
		return Outcome{}, nil
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].JobCount > hits[j].JobCount })

	var rejected *Outcome
	for i := range hits {
		h := &hits[i]
		if v, ok := p.vendors.ForSource(h.Source); ok {
			name, err := v.BoardName(ctx, h.Token)
			if err != nil && ctx.Err() != nil {
				return Outcome{}, eris.Wrap(ctx.Err(), "probe interrupted")
			}
			h.BoardName = name
		}
		verified, reason := p.verifier.Verify(h.Hit, s)
		out := Outcome{
			Source:   h.Source,
			Token:    h.Token,
			Verified: verified,
			Reason:   reason,
			JobCount: h.JobCount,
		}
		if verified {
			out.Confidence = Confidence(locations(h.jobs), p.loc)
			log.Info("ats verified",
				zap.String("source", h.Source),
				zap.String("token", h.Token),
				zap.Int("jobs", h.JobCount),
				zap.String("reason", reason))
			return out, nil
		}
		log.Debug("ats rejected",
			zap.String("source", h.Source),
			zap.String("token", h.Token),
			zap.String("reason", reason))
		if rejected == nil {
			rejected = &out
		}
	}
	return *rejected, nil
}

func (p *Prober) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil || p.delay <= 0 {
		return err
	}
	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func locations(ps []ingest.Payload) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, ingest.Location(p))
	}
	return out
}
