package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"hireassist-engine/internal/domain"
)

type ListJobsOpts struct {
	Company    string
	Source     string
	Country    string
	City       string
	Department string
	Tag        string
	Query      string // substring of the title
	ActiveOnly bool
	Window     string // 24h | 7d | 30d | all, on first_seen_at
	Sort       string // first_seen | posted | company | title
	Limit      int
}

func (d *DB) ListJobs(ctx context.Context, opts ListJobsOpts) ([]domain.Job, error) {
	if opts.Limit <= 0 || opts.Limit > 5000 {
		opts.Limit = 500
	}

	// whitelist sort columns
	sortCol := map[string]string{
		"first_seen": "first_seen_at DESC",
		"posted":     "COALESCE(posted_at, first_seen_at) DESC",
		"company":    "company_name COLLATE NOCASE ASC",
		"title":      "title COLLATE NOCASE ASC",
	}[opts.Sort]
	if sortCol == "" {
		sortCol = "first_seen_at DESC"
	}

	var (
		where []string
		args  []any
	)
	eq := func(col, v string) {
		if v != "" {
			where = append(where, "LOWER("+col+") = LOWER(?)")
			args = append(args, v)
		}
	}
	eq("company_name", opts.Company)
	eq("source", opts.Source)
	eq("country", opts.Country)
	eq("city", opts.City)
	eq("department", opts.Department)
	if opts.Tag != "" {
		where = append(where, "('|' || LOWER(tech_tags) || '|') LIKE ?")
		args = append(args, "%|"+strings.ToLower(opts.Tag)+"|%")
	}
	if opts.Query != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(opts.Query)+"%")
	}
	if opts.ActiveOnly {
		where = append(where, "is_active = 1")
	}
	var since time.Duration
	switch opts.Window {
	case "24h":
		since = 24 * time.Hour
	case "7d":
		since = 7 * 24 * time.Hour
	case "30d":
		since = 30 * 24 * time.Hour
	}
	if since > 0 {
		where = append(where, "first_seen_at >= ?")
		args = append(args, formatTime(d.now().Add(-since)))
	}

	query := `
SELECT id, source, company_name, job_key, title, location_raw, country, city, url,
       department, job_type, tech_tags, posted_at, first_seen_at, last_seen_at, is_active
FROM jobs`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf("\nORDER BY %s\nLIMIT ?;", sortCol)
	args = append(args, opts.Limit)

	rows, err := d.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "list jobs")
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		var (
			j           domain.Job
			tags        string
			posted      sql.NullString
			first, last string
			active      int
		)
		if err := rows.Scan(&j.ID, &j.Source, &j.CompanyName, &j.JobKey, &j.Title, &j.LocationRaw,
			&j.Country, &j.City, &j.URL, &j.Department, &j.JobType, &tags, &posted,
			&first, &last, &active); err != nil {
			return nil, eris.Wrap(err, "scan job")
		}
		if tags != "" {
			j.TechTags = strings.Split(tags, "|")
		}
		j.PostedAt = parseTimePtr(posted)
		j.FirstSeenAt = parseTime(first)
		j.LastSeenAt = parseTime(last)
		j.IsActive = active == 1
		out = append(out, j)
	}
	return out, eris.Wrap(rows.Err(), "list jobs")
}

// ActiveJobCount counts active jobs across every company and source.
func (d *DB) ActiveJobCount(ctx context.Context) (int, error) {
	var n int
	err := d.Pool.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE is_active = 1;`).Scan(&n)
	return n, eris.Wrap(err, "count active jobs")
}
