// Package stats derives per-company daily hiring figures from the job
// lifecycle table and flags unusual movement.
package stats

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/logging"
	"hireassist-engine/internal/store"
)

const dateLayout = "2006-01-02"

type Store interface {
	ActiveCounts(ctx context.Context) (map[store.Pair]int, error)
	NewCounts(ctx context.Context, from, to string) (map[store.Pair]int, error)
	StatsBetween(ctx context.Context, from, to string) ([]domain.CompanyDailyStat, error)
	UpsertDailyStats(ctx context.Context, stats []domain.CompanyDailyStat) error
	CompanyTotals(ctx context.Context, date string) ([]domain.CompanyDailyStat, error)
	CompanyHistory(ctx context.Context, company, since string) ([]domain.CompanyDailyStat, error)
	SummarySince(ctx context.Context, since string) (store.StatsSummary, error)
	ActiveJobCount(ctx context.Context) (int, error)
}

type Engine struct {
	store      Store
	thresholds Thresholds
	now        func() time.Time
}

func New(st Store, th Thresholds) *Engine {
	return &Engine{store: st, thresholds: th, now: func() time.Time { return time.Now().UTC() }}
}

// Day formats t as a stat date.
func Day(t time.Time) string { return t.UTC().Format(dateLayout) }

func shift(date string, days int) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(dateLayout)
}

// ComputeDaily writes one row per (company, source) for day. Safe to rerun.
// A pair that had jobs the day before but none now gets a row with zero
// active jobs so its closure is recorded.
func (e *Engine) ComputeDaily(ctx context.Context, day time.Time) ([]domain.CompanyDailyStat, error) {
	date := Day(day)
	log := logging.Component("stats").With(zap.String("date", date))

	active, err := e.store.ActiveCounts(ctx)
	if err != nil {
		return nil, err
	}
	fresh, err := e.store.NewCounts(ctx, date, shift(date, 1))
	if err != nil {
		return nil, err
	}
	prevRows, err := e.store.StatsBetween(ctx, shift(date, -1), shift(date, -1))
	if err != nil {
		return nil, err
	}
	prev := make(map[store.Pair]int, len(prevRows))
	for _, r := range prevRows {
		prev[store.Pair{Company: r.CompanyName, Source: r.Source}] = r.ActiveJobs
	}

	pairs := map[store.Pair]struct{}{}
	for p := range active {
		pairs[p] = struct{}{}
	}
	for p := range fresh {
		pairs[p] = struct{}{}
	}
	for p, n := range prev {
		if n > 0 {
			pairs[p] = struct{}{}
		}
	}

	out := make([]domain.CompanyDailyStat, 0, len(pairs))
	for p := range pairs {
		out = append(out, Daily(date, p.Company, p.Source, active[p], fresh[p], prev[p]))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompanyName != out[j].CompanyName {
			return out[i].CompanyName < out[j].CompanyName
		}
		return out[i].Source < out[j].Source
	})

	if err := e.store.UpsertDailyStats(ctx, out); err != nil {
		return nil, err
	}
	log.Info("daily stats computed", zap.Int("pairs", len(out)))
	return out, nil
}

// Daily derives one stat row from the day's counts and the previous day's
// active count.
func Daily(date, company, source string, active, fresh, prevActive int) domain.CompanyDailyStat {
	closed := prevActive + fresh - active
	if closed < 0 {
		closed = 0
	}
	return domain.CompanyDailyStat{
		StatDate:    date,
		CompanyName: company,
		Source:      source,
		ActiveJobs:  active,
		NewJobs:     fresh,
		ClosedJobs:  closed,
		NetChange:   active - prevActive,
	}
}

// Momentum scores hiring activity in [0, 100].
func Momentum(newJobs, netChange, activeJobs int) float64 {
	raw := 10*float64(newJobs) + 2*float64(netChange) + 5*math.Log(float64(activeJobs)+1)
	return math.Max(0, math.Min(100, raw))
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }

type CompanyStat struct {
	domain.CompanyDailyStat
	Momentum float64 `json:"momentum"`
}

// CompanyStats returns per-company totals for day, highest momentum first.
func (e *Engine) CompanyStats(ctx context.Context, day time.Time) ([]CompanyStat, error) {
	rows, err := e.store.CompanyTotals(ctx, Day(day))
	if err != nil {
		return nil, err
	}
	out := make([]CompanyStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, CompanyStat{
			CompanyDailyStat: r,
			Momentum:         round1(Momentum(r.NewJobs, r.NetChange, r.ActiveJobs)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Momentum > out[j].Momentum })
	return out, nil
}

// History returns the company's daily totals over the last days days.
func (e *Engine) History(ctx context.Context, company string, days int) ([]domain.CompanyDailyStat, error) {
	if days <= 0 {
		days = 30
	}
	return e.store.CompanyHistory(ctx, company, Day(e.now().AddDate(0, 0, -days)))
}

type Summary struct {
	PeriodDays       int    `json:"periodDays"`
	Since            string `json:"since"`
	CompaniesTracked int    `json:"companiesTracked"`
	TotalActiveJobs  int    `json:"totalActiveJobs"`
	TotalNewJobs     int    `json:"totalNewJobs"`
	TotalClosedJobs  int    `json:"totalClosedJobs"`
}

func (e *Engine) Summary(ctx context.Context, days int) (Summary, error) {
	if days <= 0 {
		days = 7
	}
	since := Day(e.now().AddDate(0, 0, -days))
	agg, err := e.store.SummarySince(ctx, since)
	if err != nil {
		return Summary{}, err
	}
	active, err := e.store.ActiveJobCount(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		PeriodDays:       days,
		Since:            since,
		CompaniesTracked: agg.CompaniesTracked,
		TotalActiveJobs:  active,
		TotalNewJobs:     agg.TotalNewJobs,
		TotalClosedJobs:  agg.TotalClosedJobs,
	}, nil
}
