package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "config.yml", `
app:
  target_country: Belgium
discovery:
  strict: true
telegram:
  enabled: true
`)
	t.Setenv("TELEGRAM_CHAT_ID", "12345")
	t.Setenv("HIREASSIST_AI_API_KEY", "sk-test")

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "Belgium", cfg.App.TargetCountry)
	assert.True(t, cfg.Discovery.Strict)
	assert.Equal(t, 5, cfg.Discovery.MinTokenLen)
	assert.Equal(t, 30, cfg.Candidate.MinScore)
	assert.Equal(t, -5, cfg.Alerts.SlowdownNet)
	assert.Equal(t, int64(12345), cfg.Telegram.ChatID)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
}

func TestLoadRejectsBadChatID(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "config.yml", "app:\n  port: 9000\n")
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	_, err := Load(p)
	assert.Error(t, err)
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	cfg.Candidate.CorporateWords = []string{" B.V. ", "b.v.", "", "Holding"}
	cfg.Careers.Paths = []string{"careers", "/jobs"}
	cfg.Telegram.Enabled = true

	out, v := NormalizeAndValidate(cfg)

	assert.Equal(t, []string{"b.v.", "holding"}, out.Candidate.CorporateWords)
	assert.Equal(t, []string{"/careers", "/jobs"}, out.Careers.Paths)
	assert.False(t, v.OK())
	assert.Contains(t, v.Errors, "telegram.chat_id is required when telegram.enabled=true")
	assert.NotEmpty(t, v.Warnings)
}

func TestSaveAtomicKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yml")

	first := Default()
	require.NoError(t, SaveAtomic(p, first))

	second := Default()
	second.App.TargetCountry = "Germany"
	require.NoError(t, SaveAtomic(p, second))

	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "Germany", got.App.TargetCountry)

	_, err = os.Stat(p + ".bak")
	assert.NoError(t, err)
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Candidate.PreferTags = []TagRule{{Key: "", Weight: 0}}
	err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg)
	assert.Error(t, err)
}

func TestEnsureUserConfigFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	p, err := EnsureUserConfig(dir, filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.True(t, cfg.Scrape.Headless)
}

func TestOverlayCandidateRules(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "candidate_rules.yml", `
corporate_words: [gmbh]
prefer_tags:
  - key: office
    any: [company]
    weight: 20
`)
	cfg := Default()
	require.NoError(t, OverlayCandidateRules(&cfg, p))
	assert.Equal(t, []string{"gmbh"}, cfg.Candidate.CorporateWords)
	assert.Len(t, cfg.Candidate.PreferTags, 1)

	require.NoError(t, OverlayCandidateRules(&cfg, filepath.Join(dir, "nope.yml")))
}
