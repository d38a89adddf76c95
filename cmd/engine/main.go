// Command engine runs the HireAssist discovery and job-tracking pipeline.
//
//	engine [flags] discover|sync|scrape|stats|all   run stages once and exit
//	engine [flags] serve                            query API plus the daily schedule
//	engine [flags] seed candidates.yml              load harvested candidates
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"hireassist-engine/internal/config"
	"hireassist-engine/internal/logging"
	"hireassist-engine/internal/poll"
	"hireassist-engine/internal/secrets"
)

var errUsage = eris.New("usage")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if eris.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "engine:", eris.ToString(err, false))
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("engine", flag.ContinueOnError)
	dataDir := fs.String("data", "", "data directory (default $HIREASSIST_DATA_DIR or .)")
	defaultCfg := fs.String("config", filepath.Join("config", "config.yml"), "default config copied into the data directory on first start")
	rules := fs.String("rules", "", "optional candidate rules file (default <data>/candidate_rules.yml)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: engine [flags] discover|sync|scrape|stats|all|serve|seed <file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	dir := *dataDir
	if dir == "" {
		dir = os.Getenv("HIREASSIST_DATA_DIR")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "create data dir")
	}

	cfgPath, err := config.EnsureUserConfig(dir, *defaultCfg)
	if err != nil {
		return eris.Wrap(err, "config bootstrap")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg.App.DataDir = dir
	rulesPath := *rules
	if rulesPath == "" {
		rulesPath = filepath.Join(dir, "candidate_rules.yml")
	}
	if err := config.OverlayCandidateRules(&cfg, rulesPath); err != nil {
		return err
	}
	secrets.Resolve(&cfg)

	flush, err := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer flush()
	log := logging.Component("main")

	cfg, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Warn("config", zap.String("warning", w))
	}
	if !vr.OK() {
		for _, e := range vr.Errors {
			log.Error("config", zap.String("error", e))
		}
		return eris.Errorf("invalid config %s", cfgPath)
	}

	// one engine process per database
	lock := flock.New(filepath.Join(dir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return eris.Wrap(err, "acquire run lock")
	}
	if !locked {
		return eris.Errorf("another engine process holds %s", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var stages []string
	switch cmd {
	case poll.StageDiscover, poll.StageSync, poll.StageScrape, poll.StageStats:
		stages = []string{cmd}
	case "all":
		stages = poll.AllStages
	case "serve":
	case "seed":
		if len(rest) != 1 {
			fs.Usage()
			return errUsage
		}
	default:
		fs.Usage()
		return errUsage
	}

	a, err := newApp(cfg, cfgPath, withScraper(cfg, cmd, stages))
	if err != nil {
		return err
	}
	defer a.Close()

	switch cmd {
	case "serve":
		return a.serve(ctx)
	case "seed":
		return a.seed(ctx, rest[0])
	}

	rep, err := a.runner.Run(ctx, stages...)
	log.Info("run finished", zap.Any("report", rep))
	return err
}

// withScraper reports whether cmd needs the headless browser.
func withScraper(cfg config.Config, cmd string, stages []string) bool {
	if cmd == "serve" {
		return cfg.Schedule.Scrape
	}
	for _, s := range stages {
		if s == poll.StageScrape {
			return true
		}
	}
	return false
}
