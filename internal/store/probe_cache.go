package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// GetCache returns the value stored under key when it is younger than ttl.
// A zero ttl never expires.
func (d *DB) GetCache(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, nil
	}

	var (
		value   []byte
		fetched string
	)
	err := d.Pool.QueryRowContext(ctx,
		`SELECT value, fetched_at FROM probe_cache WHERE key = ? LIMIT 1;`, key,
	).Scan(&value, &fetched)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "get cache %q", key)
	}
	if ttl > 0 && d.now().Sub(parseTime(fetched)) > ttl {
		return nil, false, nil
	}
	return value, true, nil
}

func (d *DB) PutCache(ctx context.Context, key string, value []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO probe_cache(key, value, fetched_at)
VALUES(?,?,?)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  fetched_at = excluded.fetched_at;
`, key, value, formatTime(d.now()))
	return eris.Wrapf(err, "put cache %q", key)
}

// PruneCache drops entries older than maxAge.
func (d *DB) PruneCache(ctx context.Context, maxAge time.Duration) (int64, error) {
	res, err := d.Pool.ExecContext(ctx,
		`DELETE FROM probe_cache WHERE fetched_at < ?;`, formatTime(d.now().Add(-maxAge)))
	if err != nil {
		return 0, eris.Wrap(err, "prune cache")
	}
	n, _ := res.RowsAffected()
	return n, nil
}
