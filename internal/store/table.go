package store

import (
	"database/sql"
	"fmt"

	"github.com/rotisserie/eris"
)

const schemaVersion = 1

var schemaTables = []string{
	`
CREATE TABLE IF NOT EXISTS companies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  source TEXT NOT NULL,
  token TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  confidence TEXT NOT NULL DEFAULT '',
  discovered_at TEXT NOT NULL,
  last_verified_at TEXT,
  UNIQUE(source, token)
);`,
	`
CREATE TABLE IF NOT EXISTS discovery_candidates (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  website TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  region TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL,
  external_id TEXT NOT NULL,
  raw_json TEXT NOT NULL DEFAULT '{}',
  status TEXT NOT NULL DEFAULT 'new',
  score INTEGER NOT NULL DEFAULT 0,
  reject_reason TEXT NOT NULL DEFAULT '',
  ats_verified INTEGER NOT NULL DEFAULT 0,
  website_domain TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  last_seen_at TEXT NOT NULL,
  processed_at TEXT,
  UNIQUE(source, external_id)
);`,
	`
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  source TEXT NOT NULL,
  company_name TEXT NOT NULL,
  job_key TEXT NOT NULL,
  title TEXT NOT NULL,
  location_raw TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  department TEXT NOT NULL DEFAULT '',
  job_type TEXT NOT NULL DEFAULT '',
  tech_tags TEXT NOT NULL DEFAULT '',
  posted_at TEXT,
  first_seen_at TEXT NOT NULL,
  last_seen_at TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  UNIQUE(source, job_key)
);`,
	`
CREATE TABLE IF NOT EXISTS company_daily_stats (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  stat_date TEXT NOT NULL,
  company_name TEXT NOT NULL,
  source TEXT NOT NULL,
  active_jobs INTEGER NOT NULL DEFAULT 0,
  new_jobs INTEGER NOT NULL DEFAULT 0,
  closed_jobs INTEGER NOT NULL DEFAULT 0,
  net_change INTEGER NOT NULL DEFAULT 0,
  UNIQUE(stat_date, company_name, source)
);`,
	`
CREATE TABLE IF NOT EXISTS scraped_jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_name TEXT NOT NULL,
  career_url TEXT NOT NULL,
  title TEXT NOT NULL,
  location_raw TEXT NOT NULL DEFAULT '',
  apply_url TEXT NOT NULL,
  scraped_at TEXT NOT NULL
);`,
	`
CREATE TABLE IF NOT EXISTS probe_cache (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  fetched_at TEXT NOT NULL
);`,
}

var schemaIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_candidates_status ON discovery_candidates(status, score);`,
	`CREATE INDEX IF NOT EXISTS idx_candidates_domain ON discovery_candidates(website_domain);`,
	`CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name COLLATE NOCASE);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_company_active ON jobs(company_name, source, is_active);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_source_active ON jobs(source, is_active);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_first_seen ON jobs(first_seen_at);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_department ON jobs(department);`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_city_active ON jobs(city, is_active);`,
	`CREATE INDEX IF NOT EXISTS idx_stats_date ON company_daily_stats(stat_date);`,
	`CREATE INDEX IF NOT EXISTS idx_scraped_company ON scraped_jobs(company_name);`,
}

// Migrate brings the schema up to schemaVersion. It is gated on
// PRAGMA user_version so reruns are no-ops.
func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return eris.Wrap(err, "begin migration")
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return eris.Wrap(err, "read user_version")
	}

	if v >= schemaVersion {
		return tx.Commit()
	}

	for i, stmt := range schemaTables {
		if _, err := tx.Exec(stmt); err != nil {
			return eris.Wrapf(err, "schema v1 table %d", i)
		}
	}

	// Databases created by earlier tools may have the candidates table
	// without the scoring columns.
	for _, c := range []struct{ name, def string }{
		{"score", "INTEGER NOT NULL DEFAULT 0"},
		{"reject_reason", "TEXT NOT NULL DEFAULT ''"},
		{"ats_verified", "INTEGER NOT NULL DEFAULT 0"},
		{"website_domain", "TEXT NOT NULL DEFAULT ''"},
	} {
		if columnExists(tx, "discovery_candidates", c.name) {
			continue
		}
		if _, err := tx.Exec(fmt.Sprintf(`ALTER TABLE discovery_candidates ADD COLUMN %s %s;`, c.name, c.def)); err != nil {
			return eris.Wrapf(err, "add column %s", c.name)
		}
	}

	for i, stmt := range schemaIndexes {
		if _, err := tx.Exec(stmt); err != nil {
			return eris.Wrapf(err, "schema v1 index %d", i)
		}
	}

	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return eris.Wrap(err, "set user_version")
	}

	return eris.Wrap(tx.Commit(), "commit migration")
}

func columnExists(q interface {
	QueryRow(query string, args ...any) *sql.Row
}, table, col string) bool {
	query := fmt.Sprintf(`
SELECT 1
FROM pragma_table_info('%s')
WHERE name = ?
LIMIT 1;
`, table)

	var one int
	err := q.QueryRow(query, col).Scan(&one)
	return err == nil
}
