package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"hireassist-engine/internal/domain"
)

// ErrInvalidStatus is returned for an outcome a candidate may not move to.
var ErrInvalidStatus = eris.New("invalid candidate status")

// InsertCandidate stores a harvested candidate. A record already known under
// (source, external id) keeps its status; only its score, domain and
// last-seen time are refreshed. It reports whether the row is new.
func (d *DB) InsertCandidate(ctx context.Context, c domain.Candidate) (bool, error) {
	if strings.TrimSpace(c.Name) == "" {
		return false, eris.New("candidate name is required")
	}
	source := c.HarvestSource
	if source == "" {
		source = "manual"
	}
	ext := c.ExternalID
	if ext == "" {
		ext = strings.ToLower(strings.TrimSpace(c.Name)) + "|" + c.WebsiteDomain
	}
	attrs := c.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	raw, err := json.Marshal(attrs)
	if err != nil {
		return false, eris.Wrap(err, "encode candidate attributes")
	}
	now := formatTime(d.now())

	var inserted bool
	err = d.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM discovery_candidates WHERE source = ? AND external_id = ?;`, source, ext,
		).Scan(&one)
		if err != nil && err != sql.ErrNoRows {
			return eris.Wrap(err, "look up candidate")
		}
		inserted = err == sql.ErrNoRows

		_, err = tx.ExecContext(ctx, `
INSERT INTO discovery_candidates
  (name, website, city, region, source, external_id, raw_json, status, score, website_domain, created_at, last_seen_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(source, external_id) DO UPDATE SET
  last_seen_at = excluded.last_seen_at,
  score = excluded.score,
  website_domain = excluded.website_domain;`,
			strings.TrimSpace(c.Name), c.Website, c.City, c.Region, source, ext, string(raw),
			domain.CandidateNew, c.Score, c.WebsiteDomain, now, now,
		)
		return eris.Wrapf(err, "upsert candidate %q", c.Name)
	})
	return inserted, err
}

// PendingCandidates returns up to limit candidates still in status new,
// best score first, candidates with a website before those without.
func (d *DB) PendingCandidates(ctx context.Context, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, name, website, city, region, source, external_id, raw_json, status, score, website_domain, created_at
FROM discovery_candidates
WHERE status = ?
ORDER BY
  score DESC,
  CASE WHEN website != '' THEN 0 ELSE 1 END,
  name
LIMIT ?;`, domain.CandidateNew, limit)
	if err != nil {
		return nil, eris.Wrap(err, "pending candidates")
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var (
			c       domain.Candidate
			raw     string
			created string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Website, &c.City, &c.Region, &c.HarvestSource,
			&c.ExternalID, &raw, &c.Status, &c.Score, &c.WebsiteDomain, &created); err != nil {
			return nil, eris.Wrap(err, "scan candidate")
		}
		_ = json.Unmarshal([]byte(raw), &c.Attributes)
		c.CreatedAt = parseTime(created)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "pending candidates")
}

// SetCandidateOutcome records a terminal status. Candidates never return to new.
func (d *DB) SetCandidateOutcome(ctx context.Context, id int64, status, reason string, atsVerified bool) error {
	switch status {
	case domain.CandidateProcessed, domain.CandidateRejected, domain.CandidateError:
	default:
		return eris.Wrapf(ErrInvalidStatus, "status %q", status)
	}
	res, err := d.Pool.ExecContext(ctx, `
UPDATE discovery_candidates
SET status = ?, reject_reason = ?, ats_verified = ?, processed_at = ?
WHERE id = ?;`, status, reason, boolInt(atsVerified), formatTime(d.now()), id)
	if err != nil {
		return eris.Wrapf(err, "update candidate %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("candidate %d not found", id)
	}
	return nil
}

// CandidateCounts returns the number of candidates per status.
func (d *DB) CandidateCounts(ctx context.Context) (map[string]int, error) {
	rows, err := d.Pool.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM discovery_candidates GROUP BY status;`)
	if err != nil {
		return nil, eris.Wrap(err, "candidate counts")
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, eris.Wrap(err, "scan candidate count")
		}
		out[status] = n
	}
	return out, eris.Wrap(rows.Err(), "candidate counts")
}
