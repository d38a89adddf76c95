package scrape

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"hireassist-engine/internal/ai"
	"hireassist-engine/internal/config"
	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/ingest/ats"
	"hireassist-engine/internal/logging"
	"hireassist-engine/internal/scrape/util"
	"hireassist-engine/internal/scrape/workday"
)

const StrategyNone = "none"

// Upgrade names the vendor board a career page turned out to be.
type Upgrade struct {
	Source string `json:"source"`
	Token  string `json:"token"`
}

type Result struct {
	Jobs     []domain.ScrapedJob `json:"jobs"`
	Strategy string              `json:"strategy"`
	FinalURL string              `json:"finalUrl"`
	Upgrade  *Upgrade            `json:"upgrade,omitempty"`
}

// PageOpener hands out one page per company.
type PageOpener interface {
	NewPage(ctx context.Context) (playwright.Page, func(), error)
}

type Engine struct {
	pages          PageOpener
	strategies     []Strategy
	navTimeout     time.Duration
	companyTimeout time.Duration
}

// NewEngine wires the default strategy chain. llm may be nil, in which case
// the text-generation fallback is skipped.
func NewEngine(cfg config.Config, pages PageOpener, client *ats.Client, limiter *util.HostLimiter, llm ai.Completer) *Engine {
	wd := workdayScraper{client: workday.NewClient(limiter, cfg.Scrape.UserAgent)}
	return &Engine{
		pages:          pages,
		strategies:     defaultStrategies(wd, NewPublicAPI(client), NewAIExtractor(llm, cfg.AI.MaxChars)),
		navTimeout:     time.Duration(cfg.Scrape.NavTimeoutSeconds) * time.Second,
		companyTimeout: time.Duration(cfg.Scrape.CompanyTimeoutSeconds) * time.Second,
	}
}

func defaultStrategies(wd workdayScraper, api *PublicAPI, extractor *AIExtractor) []Strategy {
	return []Strategy{
		portalRedirect{wd: wd},
		workdayMarker{wd: wd},
		embeddedPortal{wd: wd},
		parseStrategy{},
		iframes{},
		followLinks{},
		loadMore{},
		scroll{},
		publicAPI{api: api},
		aiText{ai: extractor},
	}
}

// Scrape loads company's career page and runs the strategy chain. An error
// means the page could not be loaded at all; a Result with no jobs means
// every strategy came up empty.
func (e *Engine) Scrape(ctx context.Context, company domain.Company) (Result, error) {
	if company.Token == "" {
		return Result{}, eris.Errorf("company %q has no career page url", company.Name)
	}
	ctx, cancel := context.WithTimeout(ctx, e.companyTimeout)
	defer cancel()

	page, release, err := e.pages.NewPage(ctx)
	if err != nil {
		return Result{}, err
	}
	defer release()

	s := NewSession(page, company.Name, company.Token, e.navTimeout)
	if err := s.Goto(ctx, company.Token); err != nil {
		return Result{}, err
	}
	return runChain(ctx, s, e.strategies), nil
}

func runChain(ctx context.Context, s *Session, strategies []Strategy) Result {
	log := logging.Component("scrape").With(zap.String("company", s.Company))

	for _, st := range strategies {
		if ctx.Err() != nil {
			log.Warn("company timeout", zap.String("at", st.Name()))
			break
		}
		jobs, err := st.Extract(ctx, s)
		if err != nil {
			log.Debug("strategy failed", zap.String("strategy", st.Name()), zap.Error(err))
			continue
		}
		if len(jobs) == 0 {
			continue
		}

		res := Result{Jobs: jobs, Strategy: st.Name(), FinalURL: s.URL()}
		if s.portal != "" {
			res.FinalURL = s.portalURL
			if Upgradable(s.portal) {
				if token := UpgradeToken(s.portal, s.portalURL); token != "" {
					res.Upgrade = &Upgrade{Source: s.portal, Token: token}
				}
			}
		}
		log.Info("scraped", zap.String("strategy", st.Name()), zap.Int("jobs", len(jobs)))
		return res
	}
	return Result{Strategy: StrategyNone, FinalURL: s.StartURL}
}
