package poll

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hireassist-engine/internal/discover"
	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/events"
	"hireassist-engine/internal/ingest"
	"hireassist-engine/internal/ingest/ats"
	"hireassist-engine/internal/logging"
	"hireassist-engine/internal/scrape"
	"hireassist-engine/internal/stats"
	"hireassist-engine/internal/store"
)

type DiscoverReport struct {
	Candidates  int            `json:"candidates"`
	Rejected    int            `json:"rejected"`
	Outcomes    map[string]int `json:"outcomes"`
	CachePruned int64          `json:"cachePruned"`
}

// Discover scores every pending candidate and sends the eligible ones
// through the discovery pipeline. Ineligible candidates are closed with the
// scorer's reason. Probe cache entries past their TTL are dropped first.
func (r *Runner) Discover(ctx context.Context) (DiscoverReport, error) {
	var rep DiscoverReport
	if r.Discoverer == nil || r.Scorer == nil {
		return rep, eris.New("discovery is not configured")
	}
	log := logging.Component("discover")

	ttl := time.Duration(r.cfg.Discovery.CacheTTLHours) * time.Hour
	if n, err := r.DB.PruneCache(ctx, ttl); err != nil {
		log.Warn("prune probe cache", zap.Error(err))
	} else {
		rep.CachePruned = n
	}

	pending, err := r.DB.PendingCandidates(ctx, r.cfg.Discovery.BatchLimit)
	if err != nil {
		return rep, eris.Wrap(err, "load pending candidates")
	}
	rep.Candidates = len(pending)

	timeout := time.Duration(r.cfg.Discovery.TimeoutSeconds) * time.Second
	var tally counter

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Discovery.Workers)
	for _, c := range pending {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			res := r.Scorer.Score(c)
			if !res.Eligible {
				if err := r.DB.SetCandidateOutcome(gctx, c.ID, domain.CandidateRejected, res.Reason, false); err != nil {
					log.Warn("reject candidate", zap.String("candidate", c.Name), zap.Error(err))
				}
				tally.add(domain.CandidateRejected, 1)
				return nil
			}

			ictx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			outcome, err := r.Discoverer.Process(ictx, c)
			if err != nil {
				log.Warn("candidate failed",
					zap.String("candidate", c.Name),
					zap.Int("score", res.Score),
					zap.Error(err))
				outcome = discover.OutcomeError
			}
			tally.add(outcome, 1)
			if outcome == discover.OutcomeATSAdded || outcome == discover.OutcomeCareerAdded {
				log.Info("company added", zap.String("candidate", c.Name), zap.String("outcome", outcome))
			}
			return nil
		})
	}
	_ = g.Wait()

	rep.Outcomes = tally.snapshot()
	rep.Rejected = rep.Outcomes[domain.CandidateRejected]
	delete(rep.Outcomes, domain.CandidateRejected)
	return rep, ctx.Err()
}

type SyncReport struct {
	Companies int `json:"companies"`
	Synced    int `json:"synced"`
	Empty     int `json:"empty"`
	Missing   int `json:"missing"`
	Failed    int `json:"failed"`
	New       int `json:"new"`
	Closed    int `json:"closed"`
	Active    int `json:"active"`
}

// SyncATS pulls every active ATS-tracked company's board and applies it to
// the job lifecycle. An empty or missing board leaves stored jobs alone.
func (r *Runner) SyncATS(ctx context.Context) (SyncReport, error) {
	var rep SyncReport
	var companies []domain.Company
	for _, src := range domain.ATSSources {
		cs, err := r.DB.ListCompanies(ctx, store.CompanyFilter{Source: src, ActiveOnly: true})
		if err != nil {
			return rep, eris.Wrapf(err, "list %s companies", src)
		}
		companies = append(companies, cs...)
	}
	rep.Companies = len(companies)

	log := logging.Component("sync")
	timeout := time.Duration(r.cfg.Sync.TimeoutSeconds) * time.Second
	var tally counter

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Sync.Workers)
	for _, c := range companies {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			ictx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			res, status, err := r.syncCompany(ictx, c)
			clog := log.With(zap.String("company", c.Name), zap.String("source", c.Source))
			switch {
			case err != nil:
				clog.Warn("sync failed", zap.Error(err))
			case status == "synced":
				clog.Info("synced",
					zap.Int("new", res.New),
					zap.Int("updated", res.Updated),
					zap.Int("closed", res.Deactivated))
			default:
				clog.Debug("nothing to apply", zap.String("status", status))
			}
			tally.add(status, 1)
			tally.add("new", res.New)
			tally.add("closed", res.Deactivated)
			return nil
		})
	}
	_ = g.Wait()

	t := tally.snapshot()
	rep.Synced, rep.Empty, rep.Missing, rep.Failed = t["synced"], t["empty"], t["missing"], t["failed"]
	rep.New, rep.Closed = t["new"], t["closed"]
	if n, err := r.DB.ActiveJobCount(ctx); err == nil {
		rep.Active = n
	}
	return rep, ctx.Err()
}

func (r *Runner) syncCompany(ctx context.Context, c domain.Company) (store.UpsertResult, string, error) {
	var res store.UpsertResult
	v, ok := r.Vendors.ForSource(c.Source)
	if !ok {
		return res, "failed", eris.Errorf("no vendor for source %q", c.Source)
	}
	payloads, err := v.ListJobs(ctx, c.Token)
	if eris.Is(err, ats.ErrNotFound) {
		return res, "missing", nil
	}
	if err != nil {
		return res, "failed", err
	}

	jobs := r.Normalizer.NormalizeAll(c.Name, payloads)
	if len(jobs) == 0 {
		return res, "empty", nil
	}
	now := r.now()
	res, err = r.DB.UpsertJobs(ctx, c.Source, c.Name, jobs, now)
	if err != nil {
		return res, "failed", eris.Wrap(err, "upsert jobs")
	}
	if err := r.DB.TouchVerified(ctx, c.ID, now); err != nil {
		logging.Component("sync").Warn("touch verified", zap.String("company", c.Name), zap.Error(err))
	}
	return res, "synced", nil
}

type ScrapeReport struct {
	scrape.RunCounts
	New    int `json:"new"`
	Closed int `json:"closed"`
}

// ScrapeCareers runs the scraper engine over every active careers_page
// company. Workers pause between companies so a single site is never hit
// in a burst.
func (r *Runner) ScrapeCareers(ctx context.Context) (ScrapeReport, error) {
	var rep ScrapeReport
	if r.Scraper == nil {
		logging.Component("scrape").Info("scraper disabled, skipping")
		return rep, nil
	}
	companies, err := r.DB.ListCompanies(ctx, store.CompanyFilter{Source: domain.SourceCareersPage, ActiveOnly: true})
	if err != nil {
		return rep, eris.Wrap(err, "list career page companies")
	}

	log := logging.Component("scrape")
	delay := time.Duration(r.cfg.Scrape.DelayMs) * time.Millisecond
	var (
		run   scrape.RunStats
		tally counter
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Scrape.Workers)
	for i, c := range companies {
		g.Go(func() error {
			if i > 0 && !pause(gctx, delay) {
				return nil
			}
			res, err := r.Scraper.Scrape(gctx, c)
			run.Record(res, err)
			clog := log.With(zap.String("company", c.Name))
			if err != nil {
				clog.Warn("scrape failed", zap.Error(err))
				return nil
			}
			clog.Info("scraped",
				zap.String("strategy", res.Strategy),
				zap.Int("jobs", len(res.Jobs)))

			if len(res.Jobs) > 0 {
				up, err := r.applyScraped(gctx, c, res)
				if err != nil {
					clog.Warn("store scraped jobs", zap.Error(err))
				}
				tally.add("new", up.New)
				tally.add("closed", up.Deactivated)
			}
			if res.Upgrade != nil {
				r.applyUpgrade(gctx, c, *res.Upgrade, &run)
			}
			return nil
		})
	}
	_ = g.Wait()

	rep.RunCounts = run.Counts()
	t := tally.snapshot()
	rep.New, rep.Closed = t["new"], t["closed"]
	return rep, ctx.Err()
}

func (r *Runner) applyScraped(ctx context.Context, c domain.Company, res scrape.Result) (store.UpsertResult, error) {
	careerURL := res.FinalURL
	if careerURL == "" {
		careerURL = c.Token
	}
	if _, err := r.DB.ReplaceScrapedJobs(ctx, c.Name, careerURL, res.Jobs); err != nil {
		return store.UpsertResult{}, eris.Wrap(err, "replace snapshot")
	}

	payloads := make([]ingest.Payload, 0, len(res.Jobs))
	for _, j := range res.Jobs {
		payloads = append(payloads, ingest.ScrapedPosting{ScrapedJob: j})
	}
	jobs := r.Normalizer.NormalizeAll(c.Name, payloads)
	if len(jobs) == 0 {
		return store.UpsertResult{}, nil
	}
	now := r.now()
	up, err := r.DB.UpsertJobs(ctx, domain.SourceCareersPage, c.Name, jobs, now)
	if err != nil {
		return up, eris.Wrap(err, "upsert jobs")
	}
	if err := r.DB.TouchVerified(ctx, c.ID, now); err != nil {
		return up, eris.Wrap(err, "touch verified")
	}
	return up, nil
}

func (r *Runner) applyUpgrade(ctx context.Context, c domain.Company, u scrape.Upgrade, run *scrape.RunStats) {
	log := logging.Component("scrape").With(
		zap.String("company", c.Name),
		zap.String("source", u.Source),
		zap.String("token", u.Token))
	action, err := r.DB.ApplyUpgrade(ctx, c.ID, u.Source, u.Token)
	if err != nil {
		log.Warn("upgrade failed", zap.Error(err))
		return
	}
	run.Upgraded()
	log.Info("company upgraded to ats board", zap.String("action", action))
	r.Hub.Publish(events.Make(events.TypeCompanyUpgrade, StageScrape, map[string]string{
		"company": c.Name,
		"source":  u.Source,
		"token":   u.Token,
		"action":  action,
	}))
}

type StatsReport struct {
	Date      string         `json:"date"`
	Companies int            `json:"companies"`
	Alerts    []domain.Alert `json:"alerts"`
	Notified  bool           `json:"notified"`
}

// DailyStats computes the day's per-company rows, detects alerts and hands
// them to the notifier when one is configured.
func (r *Runner) DailyStats(ctx context.Context, day time.Time) (StatsReport, error) {
	rep := StatsReport{Date: stats.Day(day)}
	rows, err := r.Stats.ComputeDaily(ctx, day)
	if err != nil {
		return rep, eris.Wrap(err, "compute daily stats")
	}
	rep.Companies = len(rows)

	alerts, err := r.Stats.DetectAlerts(ctx, day)
	if err != nil {
		return rep, eris.Wrap(err, "detect alerts")
	}
	rep.Alerts = alerts
	if len(alerts) == 0 {
		return rep, nil
	}
	r.Hub.Publish(events.Make(events.TypeAlerts, StageStats, alerts))

	if r.Notifier == nil {
		return rep, nil
	}
	if err := r.Notifier.SendAlerts(ctx, rep.Date, alerts); err != nil {
		return rep, eris.Wrap(err, "send alerts")
	}
	rep.Notified = true
	return rep, nil
}

func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
