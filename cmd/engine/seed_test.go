package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireassist-engine/internal/candidate"
	"hireassist-engine/internal/config"
	"hireassist-engine/internal/store"
)

const seedYAML = `
candidates:
  - name: Acme Software B.V.
    website: https://www.acme.nl/
    city: Utrecht
    source: kvk
    external_id: "12345678"
  - name: Cafe Central
    source: osm
    external_id: node/42
    attributes:
      amenity: cafe
  - name: ""
    source: osm
    external_id: node/43
`

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candidates.yml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	cands, err := readSeedFile(path)
	require.NoError(t, err)
	require.Len(t, cands, 3)
	assert.Equal(t, "acme.nl", cands[0].WebsiteDomain)
	assert.Equal(t, "kvk", cands[0].HarvestSource)
	assert.Equal(t, "cafe", cands[1].Attributes["amenity"])

	db, err := store.Open(filepath.Join(dir, "seed.db"))
	require.NoError(t, err)
	defer db.Close()

	a := &app{db: db, scorer: candidate.New(config.Default())}
	ctx := context.Background()
	require.NoError(t, a.seed(ctx, path))
	// reseeding leaves the pending set unchanged
	require.NoError(t, a.seed(ctx, path))

	pending, err := db.PendingCandidates(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "Acme Software B.V.", pending[0].Name)
	assert.Equal(t, 50, pending[0].Score)
}

func TestWithScraper(t *testing.T) {
	cfg := config.Default()
	assert.True(t, withScraper(cfg, "scrape", []string{"scrape"}))
	assert.False(t, withScraper(cfg, "sync", []string{"sync"}))
	assert.True(t, withScraper(cfg, "serve", nil))
	cfg.Schedule.Scrape = false
	assert.False(t, withScraper(cfg, "serve", nil))
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	t.Setenv("HIREASSIST_DATA_DIR", t.TempDir())
	assert.ErrorIs(t, run([]string{"frobnicate"}), errUsage)
	assert.ErrorIs(t, run(nil), errUsage)
}
