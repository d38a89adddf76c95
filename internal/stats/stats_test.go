package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireassist-engine/internal/config"
	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/store"
)

func newEngine(t *testing.T, now time.Time) (*Engine, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := New(db, ThresholdsFromConfig(config.Default()))
	e.now = func() time.Time { return now }
	return e, db
}

func jobs(keys ...string) []domain.Job {
	out := make([]domain.Job, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.Job{JobKey: k, Title: "Job " + k, URL: "https://example.com/" + k})
	}
	return out
}

func TestDaily(t *testing.T) {
	s := Daily("2026-03-02", "Acme", "lever", 5, 0, 3)
	assert.Equal(t, 0, s.ClosedJobs)
	assert.Equal(t, 2, s.NetChange)

	s = Daily("2026-03-02", "Acme", "lever", 3, 1, 5)
	assert.Equal(t, 3, s.ClosedJobs)
	assert.Equal(t, -2, s.NetChange)
}

func TestMomentum(t *testing.T) {
	assert.Equal(t, 0.0, Momentum(0, 0, 0))
	assert.Equal(t, 100.0, Momentum(20, 5, 50))
	assert.Equal(t, 0.0, Momentum(0, -30, 2))
	assert.InDelta(t, 35.5, Momentum(2, 2, 9), 0.05)
}

func TestComputeDaily(t *testing.T) {
	ctx := context.Background()
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	e, db := newEngine(t, day2)

	_, err := db.UpsertJobs(ctx, "lever", "Acme", jobs("a", "b", "c"), day1)
	require.NoError(t, err)
	_, err = db.UpsertJobs(ctx, "careers_page", "Globex", jobs("g1", "g2"), day1)
	require.NoError(t, err)
	_, err = db.UpsertJobs(ctx, "greenhouse", "Initech", jobs("i1"), day1)
	require.NoError(t, err)

	first, err := e.ComputeDaily(ctx, day1)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, domain.CompanyDailyStat{StatDate: "2026-03-01", CompanyName: "Acme", Source: "lever", ActiveJobs: 3, NewJobs: 3, NetChange: 3}, first[0])

	_, err = db.UpsertJobs(ctx, "lever", "Acme", jobs("a", "b", "c", "d", "e"), day2)
	require.NoError(t, err)
	_, err = db.UpsertJobs(ctx, "greenhouse", "Initech", jobs("i2"), day2)
	require.NoError(t, err)
	// Globex's career page returned nothing on day2, so no upsert happens

	second, err := e.ComputeDaily(ctx, day2)
	require.NoError(t, err)
	got := map[string]domain.CompanyDailyStat{}
	for _, s := range second {
		got[s.CompanyName] = s
	}

	assert.Equal(t, 5, got["Acme"].ActiveJobs)
	assert.Equal(t, 2, got["Acme"].NewJobs)
	assert.Equal(t, 0, got["Acme"].ClosedJobs)
	assert.Equal(t, 2, got["Acme"].NetChange)

	assert.Equal(t, 2, got["Globex"].ActiveJobs, "zero-result career page keeps its jobs")
	assert.Equal(t, 0, got["Globex"].ClosedJobs)
	assert.Equal(t, 0, got["Globex"].NetChange)

	assert.Equal(t, 1, got["Initech"].ActiveJobs)
	assert.Equal(t, 1, got["Initech"].NewJobs)
	assert.Equal(t, 1, got["Initech"].ClosedJobs)

	// rerunning the same date rewrites rather than duplicates
	_, err = e.ComputeDaily(ctx, day2)
	require.NoError(t, err)
	rows, err := db.StatsBetween(ctx, "2026-03-02", "2026-03-02")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestComputeDailyRecordsClosure(t *testing.T) {
	ctx := context.Background()
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	e, db := newEngine(t, day1)

	_, err := db.UpsertJobs(ctx, "lever", "Acme", jobs("a", "b"), day1)
	require.NoError(t, err)
	_, err = e.ComputeDaily(ctx, day1)
	require.NoError(t, err)

	_, err = db.Pool.Exec(`UPDATE jobs SET is_active = 0;`)
	require.NoError(t, err)

	out, err := e.ComputeDaily(ctx, day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0, out[0].ActiveJobs)
	assert.Equal(t, 2, out[0].ClosedJobs)
	assert.Equal(t, -2, out[0].NetChange)
}

func seed(t *testing.T, db *store.DB, day time.Time, company string, offset, active, fresh, net int) {
	t.Helper()
	require.NoError(t, db.UpsertDailyStats(context.Background(), []domain.CompanyDailyStat{{
		StatDate:    Day(day.AddDate(0, 0, offset)),
		CompanyName: company,
		Source:      "lever",
		ActiveJobs:  active,
		NewJobs:     fresh,
		NetChange:   net,
	}}))
}

func seedAlertHistory(t *testing.T, db *store.DB, d time.Time) {
	for off := -7; off <= -1; off++ {
		seed(t, db, d, "Rocket", off, 10, 1, 0)
		seed(t, db, d, "Steady", off, 10, 0, 0)
	}
	seed(t, db, d, "Rocket", 0, 14, 4, 4)
	seed(t, db, d, "Steady", 0, 10, 0, 0)

	for off := -5; off <= -1; off++ {
		seed(t, db, d, "Ghost", off, 6, 0, 0)
	}
	seed(t, db, d, "Ghost", 0, 0, 0, -6)

	for off := -5; off <= -3; off++ {
		seed(t, db, d, "Sloth", off, 100, 0, 0)
	}
	seed(t, db, d, "Sloth", -2, 98, 0, -2)
	seed(t, db, d, "Sloth", -1, 96, 0, -2)
	seed(t, db, d, "Sloth", 0, 94, 0, -2)

	seed(t, db, d, "Fresh", -1, 6, 6, 6)
	seed(t, db, d, "Fresh", 0, 8, 2, 2)

	seed(t, db, d, "Tiny", 0, 2, 2, 2)
}

func TestDetectAlerts(t *testing.T) {
	ctx := context.Background()
	d := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	e, db := newEngine(t, d)
	seedAlertHistory(t, db, d)

	alerts, err := e.DetectAlerts(ctx, d)
	require.NoError(t, err)

	var got [][2]string
	for _, a := range alerts {
		got = append(got, [2]string{a.Type, a.CompanyName})
	}
	assert.Equal(t, [][2]string{
		{domain.AlertSurge, "Rocket"},
		{domain.AlertGoneDark, "Ghost"},
		{domain.AlertSlowdown, "Sloth"},
		{domain.AlertNewEntrant, "Fresh"},
	}, got)

	assert.Equal(t, 4, alerts[0].NewJobs)
	assert.NotEmpty(t, alerts[0].Message)
	assert.InDelta(t, 61.5, alerts[0].Momentum, 0.05)
}

func TestDetectAlertsSurgeNeedsRatio(t *testing.T) {
	ctx := context.Background()
	d := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	e, db := newEngine(t, d)

	for off := -7; off <= -1; off++ {
		seed(t, db, d, "Busy", off, 40, 3, 0)
	}
	seed(t, db, d, "Busy", 0, 44, 4, 4)

	alerts, err := e.DetectAlerts(ctx, d)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDetectAlertsSlowdownMeasuresCurrentVolume(t *testing.T) {
	ctx := context.Background()
	d := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	e, db := newEngine(t, d)

	// 210 -> 200: a loss of 10 is exactly 5% of what is open now
	for off := -5; off <= -3; off++ {
		seed(t, db, d, "Edge", off, 210, 0, 0)
		seed(t, db, d, "Large", off, 400, 0, 0)
	}
	seed(t, db, d, "Edge", -2, 205, 0, -5)
	seed(t, db, d, "Edge", -1, 200, 0, -5)
	seed(t, db, d, "Edge", 0, 200, 0, 0)

	// 410 -> 400 is under 5%
	seed(t, db, d, "Large", -2, 405, 0, 5)
	seed(t, db, d, "Large", -1, 400, 0, -5)
	seed(t, db, d, "Large", 0, 390, 0, -10)

	alerts, err := e.DetectAlerts(ctx, d)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertSlowdown, alerts[0].Type)
	assert.Equal(t, "Edge", alerts[0].CompanyName)
}

func TestCompanyStatsHistorySummary(t *testing.T) {
	ctx := context.Background()
	d := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	e, db := newEngine(t, d)
	seedAlertHistory(t, db, d)

	stats, err := e.CompanyStats(ctx, d)
	require.NoError(t, err)
	require.Len(t, stats, 6)
	assert.Equal(t, "Rocket", stats[0].CompanyName)
	assert.Equal(t, "Ghost", stats[len(stats)-1].CompanyName)
	for i := 1; i < len(stats); i++ {
		assert.GreaterOrEqual(t, stats[i-1].Momentum, stats[i].Momentum)
	}

	hist, err := e.History(ctx, "Rocket", 3)
	require.NoError(t, err)
	require.Len(t, hist, 4)
	assert.Equal(t, "2026-03-07", hist[0].StatDate)

	sum, err := e.Summary(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, sum.PeriodDays)
	assert.Equal(t, "2026-03-03", sum.Since)
	assert.Equal(t, 6, sum.CompaniesTracked)
	assert.Equal(t, 0, sum.TotalActiveJobs)
}
