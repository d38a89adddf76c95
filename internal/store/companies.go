package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/scrape/util"
)

// Upgrade outcomes returned by ApplyUpgrade.
const (
	UpgradeRewritten   = "rewritten"
	UpgradeDeactivated = "deactivated"
)

// CompanyExists reports whether any of names is already tracked, ignoring case.
func (d *DB) CompanyExists(ctx context.Context, names ...string) (bool, error) {
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		var one int
		err := d.Pool.QueryRowContext(ctx,
			`SELECT 1 FROM companies WHERE LOWER(name) = LOWER(?) LIMIT 1;`, n,
		).Scan(&one)
		if err == nil {
			return true, nil
		}
		if err != sql.ErrNoRows {
			return false, eris.Wrapf(err, "company exists %q", n)
		}
	}
	return false, nil
}

// DomainTracked reports whether a careers_page company already points at
// domain. Tokens are compared by registrable domain, so "ab.nl" does not
// match a page on "lab.nl".
func (d *DB) DomainTracked(ctx context.Context, dom string) (bool, error) {
	want := util.Registrable(util.Host(dom))
	if want == "" {
		return false, nil
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT token FROM companies
WHERE source = ? AND LOWER(token) LIKE ?;`, domain.SourceCareersPage, "%"+want+"%")
	if err != nil {
		return false, eris.Wrapf(err, "domain tracked %q", dom)
	}
	defer rows.Close()

	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return false, eris.Wrap(err, "scan token")
		}
		if util.Registrable(util.Host(token)) == want {
			return true, nil
		}
	}
	return false, eris.Wrapf(rows.Err(), "domain tracked %q", dom)
}

// UpsertCompany inserts c, or reactivates and refreshes the row already
// holding (source, token). It returns the row id.
func (d *DB) UpsertCompany(ctx context.Context, c domain.Company) (int64, error) {
	if c.Source == "" || c.Token == "" {
		return 0, eris.New("company source and token are required")
	}
	now := d.now()
	discovered := c.DiscoveredAt
	if discovered.IsZero() {
		discovered = now
	}
	verified := now
	if c.LastVerifiedAt != nil {
		verified = *c.LastVerifiedAt
	}

	var id int64
	err := d.Pool.QueryRowContext(ctx, `
INSERT INTO companies(name, source, token, active, confidence, discovered_at, last_verified_at)
VALUES(?,?,?,1,?,?,?)
ON CONFLICT(source, token) DO UPDATE SET
  name = excluded.name,
  active = 1,
  confidence = excluded.confidence,
  last_verified_at = excluded.last_verified_at
RETURNING id;`,
		strings.TrimSpace(c.Name), c.Source, c.Token, c.Confidence,
		formatTime(discovered), formatTime(verified),
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "upsert company %s/%s", c.Source, c.Token)
	}
	return id, nil
}

type CompanyFilter struct {
	Source     string
	ActiveOnly bool
	Name       string // exact, case-insensitive
}

func (d *DB) ListCompanies(ctx context.Context, f CompanyFilter) ([]domain.Company, error) {
	var (
		where []string
		args  []any
	)
	if f.Source != "" {
		where = append(where, "source = ?")
		args = append(args, f.Source)
	}
	if f.ActiveOnly {
		where = append(where, "active = 1")
	}
	if f.Name != "" {
		where = append(where, "LOWER(name) = LOWER(?)")
		args = append(args, f.Name)
	}

	q := `SELECT id, name, source, token, active, confidence, discovered_at, last_verified_at FROM companies`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY name, source;"

	rows, err := d.Pool.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "list companies")
	}
	defer rows.Close()

	var out []domain.Company
	for rows.Next() {
		var (
			c          domain.Company
			active     int
			discovered string
			verified   sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Source, &c.Token, &active, &c.Confidence, &discovered, &verified); err != nil {
			return nil, eris.Wrap(err, "scan company")
		}
		c.Active = active == 1
		c.DiscoveredAt = parseTime(discovered)
		c.LastVerifiedAt = parseTimePtr(verified)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "list companies")
}

// ApplyUpgrade moves a careers_page company onto a hosted board. When the
// target (source, token) is already tracked the careers_page row is
// deactivated instead, so the board is never tracked twice. Either way the
// company's careers_page jobs are closed: the board sync owns them from now on.
func (d *DB) ApplyUpgrade(ctx context.Context, id int64, source, token string) (string, error) {
	if !domain.IsATSSource(source) || strings.TrimSpace(token) == "" {
		return "", eris.Errorf("invalid upgrade target %s/%s", source, token)
	}

	var outcome string
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var name string
		err := tx.QueryRowContext(ctx, `SELECT name FROM companies WHERE id = ?;`, id).Scan(&name)
		if err == sql.ErrNoRows {
			return eris.Errorf("company %d not found", id)
		}
		if err != nil {
			return eris.Wrapf(err, "load company %d", id)
		}

		var other int64
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM companies WHERE source = ? AND token = ? AND id != ? LIMIT 1;`,
			source, token, id,
		).Scan(&other)
		switch {
		case err == nil:
			if _, err := tx.ExecContext(ctx, `UPDATE companies SET active = 0 WHERE id = ?;`, id); err != nil {
				return eris.Wrapf(err, "deactivate company %d", id)
			}
			outcome = UpgradeDeactivated
		case err == sql.ErrNoRows:
			if _, err := tx.ExecContext(ctx, `
UPDATE companies SET source = ?, token = ?, last_verified_at = ?
WHERE id = ?;`, source, token, formatTime(d.now()), id); err != nil {
				return eris.Wrapf(err, "rewrite company %d", id)
			}
			outcome = UpgradeRewritten
		default:
			return eris.Wrap(err, "look up upgrade target")
		}

		_, err = tx.ExecContext(ctx, `
UPDATE jobs SET is_active = 0, last_seen_at = ?
WHERE company_name = ? AND source = ? AND is_active = 1;`,
			formatTime(d.now()), name, domain.SourceCareersPage)
		return eris.Wrapf(err, "close careers_page jobs for %s", name)
	})
	return outcome, err
}

func (d *DB) TouchVerified(ctx context.Context, id int64, at time.Time) error {
	_, err := d.Pool.ExecContext(ctx,
		`UPDATE companies SET last_verified_at = ? WHERE id = ?;`, formatTime(at), id)
	return eris.Wrapf(err, "touch company %d", id)
}
