package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"

	"hireassist-engine/internal/domain"
)

// Pair identifies one (company, source) job stream.
type Pair struct {
	Company string
	Source  string
}

// ActiveCounts returns the number of active jobs per pair.
func (d *DB) ActiveCounts(ctx context.Context) (map[Pair]int, error) {
	return d.pairCounts(ctx, `
SELECT company_name, source, COUNT(*) FROM jobs
WHERE is_active = 1
GROUP BY company_name, source;`)
}

// NewCounts returns the number of jobs first seen in [from, to) per pair.
// Bounds are YYYY-MM-DD dates and compare lexically with RFC 3339 stamps.
func (d *DB) NewCounts(ctx context.Context, from, to string) (map[Pair]int, error) {
	return d.pairCounts(ctx, `
SELECT company_name, source, COUNT(*) FROM jobs
WHERE first_seen_at >= ? AND first_seen_at < ?
GROUP BY company_name, source;`, from, to)
}

func (d *DB) pairCounts(ctx context.Context, q string, args ...any) (map[Pair]int, error) {
	rows, err := d.Pool.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "pair counts")
	}
	defer rows.Close()

	out := map[Pair]int{}
	for rows.Next() {
		var (
			p Pair
			n int
		)
		if err := rows.Scan(&p.Company, &p.Source, &n); err != nil {
			return nil, eris.Wrap(err, "scan pair count")
		}
		out[p] = n
	}
	return out, eris.Wrap(rows.Err(), "pair counts")
}

// UpsertDailyStats writes rows keyed by (date, company, source); rerunning a
// date overwrites it.
func (d *DB) UpsertDailyStats(ctx context.Context, stats []domain.CompanyDailyStat) error {
	if len(stats) == 0 {
		return nil
	}
	return d.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO company_daily_stats
  (stat_date, company_name, source, active_jobs, new_jobs, closed_jobs, net_change)
VALUES (?,?,?,?,?,?,?)
ON CONFLICT(stat_date, company_name, source) DO UPDATE SET
  active_jobs = excluded.active_jobs,
  new_jobs = excluded.new_jobs,
  closed_jobs = excluded.closed_jobs,
  net_change = excluded.net_change;`)
		if err != nil {
			return eris.Wrap(err, "prepare stats upsert")
		}
		defer stmt.Close()

		for _, s := range stats {
			if _, err := stmt.ExecContext(ctx, s.StatDate, s.CompanyName, s.Source,
				s.ActiveJobs, s.NewJobs, s.ClosedJobs, s.NetChange); err != nil {
				return eris.Wrapf(err, "upsert stats %s %q", s.StatDate, s.CompanyName)
			}
		}
		return nil
	})
}

// StatsBetween returns per-pair rows with from <= stat_date <= to, oldest first.
func (d *DB) StatsBetween(ctx context.Context, from, to string) ([]domain.CompanyDailyStat, error) {
	return d.queryStats(ctx, `
SELECT stat_date, company_name, source, active_jobs, new_jobs, closed_jobs, net_change
FROM company_daily_stats
WHERE stat_date >= ? AND stat_date <= ?
ORDER BY stat_date, company_name, source;`, from, to)
}

// CompanyTotals returns one row per company for date, summed over sources.
func (d *DB) CompanyTotals(ctx context.Context, date string) ([]domain.CompanyDailyStat, error) {
	return d.queryStats(ctx, `
SELECT stat_date, company_name, '',
       SUM(active_jobs), SUM(new_jobs), SUM(closed_jobs), SUM(net_change)
FROM company_daily_stats
WHERE stat_date = ?
GROUP BY company_name
ORDER BY company_name;`, date)
}

// CompanyHistory returns one row per date since since for company, summed over sources.
func (d *DB) CompanyHistory(ctx context.Context, company, since string) ([]domain.CompanyDailyStat, error) {
	return d.queryStats(ctx, `
SELECT stat_date, company_name, '',
       SUM(active_jobs), SUM(new_jobs), SUM(closed_jobs), SUM(net_change)
FROM company_daily_stats
WHERE company_name = ? AND stat_date >= ?
GROUP BY stat_date
ORDER BY stat_date;`, company, since)
}

func (d *DB) queryStats(ctx context.Context, q string, args ...any) ([]domain.CompanyDailyStat, error) {
	rows, err := d.Pool.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "query stats")
	}
	defer rows.Close()

	var out []domain.CompanyDailyStat
	for rows.Next() {
		var s domain.CompanyDailyStat
		if err := rows.Scan(&s.StatDate, &s.CompanyName, &s.Source,
			&s.ActiveJobs, &s.NewJobs, &s.ClosedJobs, &s.NetChange); err != nil {
			return nil, eris.Wrap(err, "scan stats")
		}
		out = append(out, s)
	}
	return out, eris.Wrap(rows.Err(), "query stats")
}

type StatsSummary struct {
	CompaniesTracked int `json:"companiesTracked"`
	TotalNewJobs     int `json:"totalNewJobs"`
	TotalClosedJobs  int `json:"totalClosedJobs"`
}

// SummarySince aggregates stats rows with stat_date >= since.
func (d *DB) SummarySince(ctx context.Context, since string) (StatsSummary, error) {
	var (
		s             StatsSummary
		newJ, closedJ sql.NullInt64
	)
	err := d.Pool.QueryRowContext(ctx, `
SELECT COUNT(DISTINCT company_name), SUM(new_jobs), SUM(closed_jobs)
FROM company_daily_stats
WHERE stat_date >= ?;`, since).Scan(&s.CompaniesTracked, &newJ, &closedJ)
	if err != nil {
		return s, eris.Wrap(err, "stats summary")
	}
	s.TotalNewJobs = int(newJ.Int64)
	s.TotalClosedJobs = int(closedJ.Int64)
	return s, nil
}
