// Package poll runs the engine's stages: discovery, ATS sync, career-page
// scraping and the daily stats pass. Each stage fans out over a bounded
// worker pool and isolates failures per item.
package poll

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"hireassist-engine/internal/candidate"
	"hireassist-engine/internal/config"
	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/events"
	"hireassist-engine/internal/ingest/ats"
	"hireassist-engine/internal/logging"
	"hireassist-engine/internal/normalize"
	"hireassist-engine/internal/scrape"
	"hireassist-engine/internal/store"
)

// Stage names, also used on the command line.
const (
	StageDiscover = "discover"
	StageSync     = "sync"
	StageScrape   = "scrape"
	StageStats    = "stats"
)

var AllStages = []string{StageDiscover, StageSync, StageScrape, StageStats}

type CandidateProcessor interface {
	Process(ctx context.Context, c domain.Candidate) (string, error)
}

type CareerScraper interface {
	Scrape(ctx context.Context, c domain.Company) (scrape.Result, error)
}

type StatsEngine interface {
	ComputeDaily(ctx context.Context, day time.Time) ([]domain.CompanyDailyStat, error)
	DetectAlerts(ctx context.Context, day time.Time) ([]domain.Alert, error)
}

type Notifier interface {
	SendAlerts(ctx context.Context, date string, alerts []domain.Alert) error
}

// Deps are the collaborators a Runner drives. Scraper and Notifier may be
// nil; the scrape stage and alert delivery are then skipped.
type Deps struct {
	DB         *store.DB
	Scorer     *candidate.Scorer
	Discoverer CandidateProcessor
	Vendors    *ats.Registry
	Normalizer *normalize.Normalizer
	Scraper    CareerScraper
	Stats      StatsEngine
	Notifier   Notifier
	Hub        *events.Hub
}

type Runner struct {
	Deps
	cfg    config.Config
	now    func() time.Time
	status *Status
}

func New(cfg config.Config, d Deps) *Runner {
	return &Runner{
		Deps:   d,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
		status: &Status{},
	}
}

func (r *Runner) Status() *Status { return r.status }

// Report collects the per-stage reports of one run.
type Report struct {
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Discover   *DiscoverReport `json:"discover,omitempty"`
	Sync       *SyncReport     `json:"sync,omitempty"`
	Scrape     *ScrapeReport   `json:"scrape,omitempty"`
	Stats      *StatsReport    `json:"stats,omitempty"`
}

// Run executes the named stages in pipeline order. Stage errors are
// logged and recorded; later stages still run.
func (r *Runner) Run(ctx context.Context, stages ...string) (Report, error) {
	if len(stages) == 0 {
		stages = r.enabledStages()
	}
	want := map[string]bool{}
	for _, s := range stages {
		want[s] = true
	}

	log := logging.Component("poll")
	rep := Report{StartedAt: r.now()}
	r.status.start(rep.StartedAt)

	var firstErr error
	record := func(stage string, err error) {
		if err == nil {
			return
		}
		log.Error("stage failed", zap.String("stage", stage), zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	if want[StageDiscover] {
		rep.Discover = &DiscoverReport{}
		record(StageDiscover, r.stage(ctx, StageDiscover, func(ctx context.Context) (any, error) {
			res, err := r.Discover(ctx)
			*rep.Discover = res
			return res, err
		}))
	}
	if want[StageSync] {
		rep.Sync = &SyncReport{}
		record(StageSync, r.stage(ctx, StageSync, func(ctx context.Context) (any, error) {
			res, err := r.SyncATS(ctx)
			*rep.Sync = res
			return res, err
		}))
	}
	if want[StageScrape] {
		rep.Scrape = &ScrapeReport{}
		record(StageScrape, r.stage(ctx, StageScrape, func(ctx context.Context) (any, error) {
			res, err := r.ScrapeCareers(ctx)
			*rep.Scrape = res
			return res, err
		}))
	}
	if want[StageStats] {
		rep.Stats = &StatsReport{}
		record(StageStats, r.stage(ctx, StageStats, func(ctx context.Context) (any, error) {
			res, err := r.DailyStats(ctx, r.now())
			*rep.Stats = res
			return res, err
		}))
	}

	rep.FinishedAt = r.now()
	r.status.finish(rep, firstErr)
	return rep, firstErr
}

func (r *Runner) enabledStages() []string {
	var out []string
	if r.cfg.Schedule.Discover {
		out = append(out, StageDiscover)
	}
	out = append(out, StageSync)
	if r.cfg.Schedule.Scrape {
		out = append(out, StageScrape)
	}
	return append(out, StageStats)
}

func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) (any, error)) error {
	log := logging.Component("poll").With(zap.String("stage", name))
	log.Info("stage started")
	r.Hub.Publish(events.Make(events.TypeStageStarted, name, nil))
	start := time.Now()

	res, err := fn(ctx)

	log.Info("stage finished", zap.Duration("took", time.Since(start)), zap.Any("report", res))
	r.Hub.Publish(events.Make(events.TypeStageFinished, name, res))
	return err
}

// counter is a mutex-guarded tally shared by a stage's workers.
type counter struct {
	mu sync.Mutex
	m  map[string]int
}

func (c *counter) add(key string, n int) {
	c.mu.Lock()
	if c.m == nil {
		c.m = map[string]int{}
	}
	c.m[key] += n
	c.mu.Unlock()
}

func (c *counter) snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}
	return out
}
