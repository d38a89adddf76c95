package main

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"hireassist-engine/internal/ai"
	"hireassist-engine/internal/candidate"
	"hireassist-engine/internal/careers"
	"hireassist-engine/internal/config"
	"hireassist-engine/internal/discover"
	"hireassist-engine/internal/events"
	"hireassist-engine/internal/httpapi"
	"hireassist-engine/internal/ingest/ats"
	"hireassist-engine/internal/ingest/ats/greenhouse"
	"hireassist-engine/internal/ingest/ats/lever"
	"hireassist-engine/internal/ingest/ats/recruitee"
	"hireassist-engine/internal/ingest/ats/smartrecruiters"
	"hireassist-engine/internal/logging"
	"hireassist-engine/internal/normalize"
	"hireassist-engine/internal/notify"
	"hireassist-engine/internal/poll"
	"hireassist-engine/internal/scheduler"
	"hireassist-engine/internal/scrape"
	"hireassist-engine/internal/scrape/util"
	"hireassist-engine/internal/secrets"
	"hireassist-engine/internal/stats"
	"hireassist-engine/internal/store"
)

type app struct {
	cfg     config.Config
	cfgPath string
	db      *store.DB
	hub     *events.Hub
	stats   *stats.Engine
	scorer  *candidate.Scorer
	runner  *poll.Runner
	browser *scrape.Browser
}

func newApp(cfg config.Config, cfgPath string, withBrowser bool) (*app, error) {
	log := logging.Component("main")

	dbPath := filepath.Join(cfg.App.DataDir, "hireassist.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	log.Info("database ready", zap.String("path", dbPath))

	a := &app{cfg: cfg, cfgPath: cfgPath, db: db, hub: events.NewHub()}

	limiter := util.NewHostLimiter(cfg.HTTP.RequestsPerSecond, cfg.HTTP.Burst)
	client := ats.NewClient(cfg, limiter)
	vendors := ats.NewRegistry(
		greenhouse.New(client),
		lever.New(client),
		smartrecruiters.New(client),
		recruitee.New(client),
	)
	norm := normalize.New(cfg.App.TargetCountry)

	prober := discover.NewProber(vendors,
		discover.Verifier{Strict: cfg.Discovery.Strict, MinTokenLen: cfg.Discovery.MinTokenLen},
		time.Duration(cfg.Discovery.ProbeDelayMs)*time.Millisecond,
		norm.Locations())
	pipeline := discover.NewPipeline(db, prober, careers.NewLocator(cfg, limiter),
		time.Duration(cfg.Discovery.CacheTTLHours)*time.Hour)

	a.scorer = candidate.New(cfg)
	a.stats = stats.New(db, stats.ThresholdsFromConfig(cfg))

	deps := poll.Deps{
		DB:         db,
		Scorer:     a.scorer,
		Discoverer: pipeline,
		Vendors:    vendors,
		Normalizer: norm,
		Stats:      a.stats,
		Hub:        a.hub,
	}

	tg, err := notify.NewTelegram(cfg)
	if err != nil {
		log.Warn("telegram unavailable", zap.Error(err))
	} else if tg.Enabled() {
		deps.Notifier = tg
	}

	if withBrowser {
		br, err := scrape.Launch(cfg)
		if err != nil {
			// career pages are skipped; ATS sync and stats still run
			log.Warn("browser unavailable, career page scraping disabled", zap.Error(err))
		} else {
			a.browser = br
			var llm ai.Completer
			if chat := ai.NewChatClient(cfg); cfg.AI.Enabled && chat.Enabled() {
				llm = chat
			}
			deps.Scraper = scrape.NewEngine(cfg, br, client, limiter, llm)
		}
	}

	a.runner = poll.New(cfg, deps)
	return a, nil
}

func (a *app) Close() {
	if a.browser != nil {
		if err := a.browser.Close(); err != nil {
			logging.Component("main").Warn("close browser", zap.Error(err))
		}
	}
	_ = a.db.Close()
}

// serve exposes the query API and runs the enabled stages on the configured
// interval until ctx ends.
func (a *app) serve(ctx context.Context) error {
	log := logging.Component("main")

	router := httpapi.NewRouter(httpapi.Deps{
		DB:         a.db,
		Stats:      a.stats,
		Hub:        a.hub,
		Status:     a.runner.Status(),
		Config:     func() config.Config { return a.cfg },
		ConfigPath: a.cfgPath,
		SetSecret:  secrets.Set,
	})

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(a.cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return eris.Wrapf(err, "listen %s", addr)
	}
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	interval := time.Duration(a.cfg.Schedule.IntervalHours) * time.Hour
	go scheduler.Every(ctx, interval, "pipeline", func(ctx context.Context) error {
		_, err := a.runner.Run(ctx)
		return err
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("engine listening", zap.String("addr", "http://"+addr), zap.Duration("interval", interval))
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "serve")
	}
	return nil
}
