package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireassist-engine/internal/config"
	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/events"
	"hireassist-engine/internal/poll"
	"hireassist-engine/internal/secrets"
	"hireassist-engine/internal/stats"
	"hireassist-engine/internal/store"
)

type fixture struct {
	db     *store.DB
	hub    *events.Hub
	router http.Handler
	stored map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Default()
	cfg.AI.APIKey = "sk-secret"

	f := &fixture{db: db, hub: events.NewHub(), stored: map[string]string{}}
	f.router = NewRouter(Deps{
		DB:         db,
		Stats:      stats.New(db, stats.ThresholdsFromConfig(cfg)),
		Hub:        f.hub,
		Status:     &poll.Status{},
		Config:     func() config.Config { return cfg },
		ConfigPath: "config.yml",
		SetSecret: func(account, value string) error {
			f.stored[account] = value
			return nil
		},
	})
	return f
}

func (f *fixture) get(t *testing.T, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func seedJobs(t *testing.T, db *store.DB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	_, err := db.UpsertJobs(ctx, domain.SourceLever, "Acme", []domain.Job{
		{JobKey: "a1", Title: "Backend Engineer", URL: "https://jobs.lever.co/acme/a1", Country: "Netherlands", City: "Amsterdam", TechTags: []string{"go"}},
		{JobKey: "a2", Title: "Designer", URL: "https://jobs.lever.co/acme/a2", Country: "Netherlands", City: "Utrecht"},
	}, now)
	require.NoError(t, err)
	_, err = db.UpsertJobs(ctx, domain.SourceCareersPage, "Globex", []domain.Job{
		{JobKey: "g1", Title: "Go Developer", URL: "https://globex.nl/jobs/1", Country: "Netherlands", TechTags: []string{"go"}},
	}, now)
	require.NoError(t, err)
	_, err = db.UpsertCompany(ctx, domain.Company{Name: "Acme", Source: domain.SourceLever, Token: "acme"})
	require.NoError(t, err)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	seedJobs(t, f.db)

	var body map[string]any
	rec := f.get(t, "/health", &body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.EqualValues(t, 3, body["active_jobs"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestJobsFilters(t *testing.T) {
	f := newFixture(t)
	seedJobs(t, f.db)

	var jobs []domain.Job
	f.get(t, "/jobs", &jobs)
	assert.Len(t, jobs, 3)

	f.get(t, "/jobs?tag=go", &jobs)
	assert.Len(t, jobs, 2)

	f.get(t, "/jobs?company=acme&city=utrecht", &jobs)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Designer", jobs[0].Title)

	f.get(t, "/jobs?q=nothing-matches", &jobs)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestCompanies(t *testing.T) {
	f := newFixture(t)
	seedJobs(t, f.db)

	var companies []domain.Company
	f.get(t, "/companies?source=lever", &companies)
	require.Len(t, companies, 1)
	assert.Equal(t, "acme", companies[0].Token)
}

func TestStatsEndpoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	today := stats.Day(time.Now())
	yesterday := stats.Day(time.Now().AddDate(0, 0, -1))
	require.NoError(t, f.db.UpsertDailyStats(ctx, []domain.CompanyDailyStat{
		{StatDate: yesterday, CompanyName: "Acme", Source: "lever", ActiveJobs: 4, NewJobs: 4, NetChange: 4},
		{StatDate: today, CompanyName: "Acme", Source: "lever", ActiveJobs: 6, NewJobs: 2, NetChange: 2},
		{StatDate: yesterday, CompanyName: "Globex", Source: "careers_page", ActiveJobs: 6},
		{StatDate: today, CompanyName: "Globex", Source: "careers_page", ActiveJobs: 0, ClosedJobs: 6, NetChange: -6},
	}))

	var rows []stats.CompanyStat
	f.get(t, "/stats/companies", &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme", rows[0].CompanyName)

	rec := f.get(t, "/stats/companies?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var hist struct {
		Company string                    `json:"company"`
		History []domain.CompanyDailyStat `json:"history"`
	}
	f.get(t, "/stats/company/Acme?days=7", &hist)
	assert.Equal(t, "Acme", hist.Company)
	assert.Len(t, hist.History, 2)

	rec = f.get(t, "/stats/company/Nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var sum stats.Summary
	f.get(t, "/stats/summary?days=3", &sum)
	assert.Equal(t, 3, sum.PeriodDays)
	assert.Equal(t, 2, sum.CompaniesTracked)

	var alerts struct {
		Date   string         `json:"date"`
		Alerts []domain.Alert `json:"alerts"`
	}
	f.get(t, "/stats/alerts", &alerts)
	assert.Equal(t, today, alerts.Date)
	require.Len(t, alerts.Alerts, 1)
	assert.Equal(t, domain.AlertGoneDark, alerts.Alerts[0].Type)
	assert.Equal(t, "Globex", alerts.Alerts[0].CompanyName)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	_, err := f.db.InsertCandidate(context.Background(), domain.Candidate{Name: "Acme", HarvestSource: "osm", ExternalID: "1"})
	require.NoError(t, err)

	var body struct {
		Run        poll.RunStatus `json:"run"`
		Candidates map[string]int `json:"candidates"`
	}
	f.get(t, "/status", &body)
	assert.False(t, body.Run.Running)
	assert.Equal(t, 1, body.Candidates[domain.CandidateNew])
}

func TestConfigIsRedacted(t *testing.T) {
	f := newFixture(t)
	rec := f.get(t, "/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sk-secret")
	assert.Contains(t, rec.Body.String(), `"ai":true`)

	var vr config.Validation
	f.get(t, "/config/validate", &vr)
	assert.Empty(t, vr.Errors)
}

func TestPutSecret(t *testing.T) {
	f := newFixture(t)

	put := func(name, remote, body string) int {
		req := httptest.NewRequest(http.MethodPut, "/secrets/"+name, strings.NewReader(body))
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, put("ai", "192.0.2.10:4000", `{"value":"k"}`))
	assert.Equal(t, http.StatusNotFound, put("imap", "127.0.0.1:4000", `{"value":"k"}`))
	assert.Equal(t, http.StatusBadRequest, put("ai", "127.0.0.1:4000", `{`))
	assert.Equal(t, http.StatusNoContent, put("telegram", "[::1]:4000", `{"value":"123:abc"}`))
	assert.Equal(t, "123:abc", f.stored[secrets.TelegramKeyAccount])
}

func TestUnknownRouteAndMethod(t *testing.T) {
	f := newFixture(t)
	rec := f.get(t, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCorsPreflight(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/jobs", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverReturnsJSON(t *testing.T) {
	h := RequestID(Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "internal_error", e.Error.Code)
	assert.NotEmpty(t, e.Error.RequestID)
}

func TestEventsStream(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	next := func() string {
		for sc.Scan() {
			if line := sc.Text(); strings.HasPrefix(line, "data: ") {
				return strings.TrimPrefix(line, "data: ")
			}
		}
		return ""
	}
	assert.Contains(t, next(), events.TypePing)

	f.hub.Publish(events.Make(events.TypeStageStarted, "sync", nil))
	msg := next()
	assert.Contains(t, msg, events.TypeStageStarted)
	assert.Contains(t, msg, `"stage":"sync"`)
}
