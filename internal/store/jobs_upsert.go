package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"hireassist-engine/internal/domain"
)

// ErrEmptyBatch is returned by writes that would otherwise wipe a company's
// jobs because a run found nothing.
var ErrEmptyBatch = eris.New("empty job batch")

type UpsertResult struct {
	New         int `json:"new"`
	Updated     int `json:"updated"`
	Deactivated int `json:"deactivated"`
	Total       int `json:"total"`
}

// UpsertJobs applies one complete observation of (source, companyName) in a
// single transaction: unseen keys are inserted, known keys are refreshed and
// reactivated, and active jobs missing from the batch are soft-closed.
func (d *DB) UpsertJobs(ctx context.Context, source, companyName string, jobs []domain.Job, now time.Time) (UpsertResult, error) {
	var res UpsertResult
	if len(jobs) == 0 {
		return res, ErrEmptyBatch
	}
	ts := formatTime(now)

	// last occurrence of a key wins
	byKey := make(map[string]domain.Job, len(jobs))
	order := make([]string, 0, len(jobs))
	for _, j := range jobs {
		if j.JobKey == "" {
			continue
		}
		if _, ok := byKey[j.JobKey]; !ok {
			order = append(order, j.JobKey)
		}
		byKey[j.JobKey] = j
	}
	if len(order) == 0 {
		return res, ErrEmptyBatch
	}
	res.Total = len(order)

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		for _, key := range order {
			j := byKey[key]
			var posted any
			if j.PostedAt != nil {
				posted = formatTime(*j.PostedAt)
			}
			tags := strings.Join(j.TechTags, "|")

			var id int64
			err := tx.QueryRowContext(ctx,
				`SELECT id FROM jobs WHERE source = ? AND job_key = ?;`, source, key,
			).Scan(&id)
			switch {
			case err == sql.ErrNoRows:
				if _, err := tx.ExecContext(ctx, `
INSERT INTO jobs
  (source, company_name, job_key, title, location_raw, country, city, url,
   department, job_type, tech_tags, posted_at, first_seen_at, last_seen_at, is_active)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,1);`,
					source, companyName, key, j.Title, j.LocationRaw, j.Country, j.City, j.URL,
					j.Department, j.JobType, tags, posted, ts, ts,
				); err != nil {
					return eris.Wrapf(err, "insert job %s", key)
				}
				res.New++
			case err != nil:
				return eris.Wrapf(err, "look up job %s", key)
			default:
				if _, err := tx.ExecContext(ctx, `
UPDATE jobs SET
  company_name = ?, title = ?, location_raw = ?, country = ?, city = ?, url = ?,
  department = ?, job_type = ?, tech_tags = ?,
  posted_at = COALESCE(?, posted_at),
  last_seen_at = ?, is_active = 1
WHERE id = ?;`,
					companyName, j.Title, j.LocationRaw, j.Country, j.City, j.URL,
					j.Department, j.JobType, tags, posted, ts, id,
				); err != nil {
					return eris.Wrapf(err, "update job %s", key)
				}
				res.Updated++
			}
		}

		q := `
UPDATE jobs SET is_active = 0, last_seen_at = ?
WHERE company_name = ? AND source = ? AND is_active = 1
AND job_key NOT IN (` + placeholders(len(order)) + `);`
		args := make([]any, 0, len(order)+3)
		args = append(args, ts, companyName, source)
		for _, k := range order {
			args = append(args, k)
		}
		r, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return eris.Wrap(err, "deactivate missing jobs")
		}
		n, _ := r.RowsAffected()
		res.Deactivated = int(n)
		return nil
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
