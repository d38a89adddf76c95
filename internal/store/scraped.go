package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"

	"hireassist-engine/internal/domain"
)

// ReplaceScrapedJobs swaps a company's career-page snapshot for jobs. An
// empty snapshot is refused with ErrEmptyBatch so a zero-result run keeps
// the previous one.
func (d *DB) ReplaceScrapedJobs(ctx context.Context, company, careerURL string, jobs []domain.ScrapedJob) (int, error) {
	if len(jobs) == 0 {
		return 0, ErrEmptyBatch
	}
	now := formatTime(d.now())

	var replaced int
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		r, err := tx.ExecContext(ctx, `DELETE FROM scraped_jobs WHERE company_name = ?;`, company)
		if err != nil {
			return eris.Wrapf(err, "clear snapshot %q", company)
		}
		n, _ := r.RowsAffected()
		replaced = int(n)

		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO scraped_jobs (company_name, career_url, title, location_raw, apply_url, scraped_at)
VALUES (?,?,?,?,?,?);`)
		if err != nil {
			return eris.Wrap(err, "prepare snapshot insert")
		}
		defer stmt.Close()

		for _, j := range jobs {
			if _, err := stmt.ExecContext(ctx, company, careerURL, j.Title, j.LocationRaw, j.ApplyURL, now); err != nil {
				return eris.Wrapf(err, "insert snapshot row %q", j.Title)
			}
		}
		return nil
	})
	return replaced, err
}

// ScrapedJobs returns the current snapshot for company, in insertion order.
func (d *DB) ScrapedJobs(ctx context.Context, company string) ([]domain.ScrapedJob, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT title, location_raw, apply_url FROM scraped_jobs
WHERE company_name = ?
ORDER BY id;`, company)
	if err != nil {
		return nil, eris.Wrapf(err, "scraped jobs %q", company)
	}
	defer rows.Close()

	var out []domain.ScrapedJob
	for rows.Next() {
		var j domain.ScrapedJob
		if err := rows.Scan(&j.Title, &j.LocationRaw, &j.ApplyURL); err != nil {
			return nil, eris.Wrap(err, "scan scraped job")
		}
		out = append(out, j)
	}
	return out, eris.Wrap(rows.Err(), "scraped jobs")
}
