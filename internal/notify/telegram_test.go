package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hireassist-engine/internal/config"
	"hireassist-engine/internal/domain"
)

var sample = []domain.Alert{
	{Type: domain.AlertSurge, CompanyName: "Rocket & Co", Message: "12 new jobs", ActiveJobs: 40, NewJobs: 12, NetChange: 10, Momentum: 61.5},
	{Type: domain.AlertGoneDark, CompanyName: "Ghost", Message: "all listings closed", ActiveJobs: 0, NetChange: -8},
}

type fakeBotAPI struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeBotAPI) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Alerts","username":"alerts_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.texts = append(f.texts, r.FormValue("text"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"not found"}`))
	}
}

func enabledConfig() config.Config {
	cfg := config.Default()
	cfg.Telegram.Enabled = true
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.ChatID = 42
	return cfg
}

func TestSendAlerts(t *testing.T) {
	api := &fakeBotAPI{}
	srv := httptest.NewServer(http.HandlerFunc(api.handler))
	defer srv.Close()

	tg, err := newTelegram(enabledConfig(), srv.URL+"/bot%s/%s")
	require.NoError(t, err)
	require.True(t, tg.Enabled())

	require.NoError(t, tg.SendAlerts(context.Background(), "2026-10-18", sample))
	require.Len(t, api.texts, 1)
	assert.Contains(t, api.texts[0], "Rocket &amp; Co")
	assert.Contains(t, api.texts[0], "GONE DARK")

	require.NoError(t, tg.SendAlerts(context.Background(), "2026-10-18", nil))
	assert.Len(t, api.texts, 1)
}

func TestDisabledWithoutCredentials(t *testing.T) {
	cfg := enabledConfig()
	cfg.Telegram.Token = ""
	tg, err := NewTelegram(cfg)
	require.NoError(t, err)
	assert.False(t, tg.Enabled())
	assert.NoError(t, tg.SendAlerts(context.Background(), "2026-10-18", sample))

	tg, err = NewTelegram(config.Default())
	require.NoError(t, err)
	assert.False(t, tg.Enabled())
}

func TestFormatDigest(t *testing.T) {
	out := FormatDigest("2026-10-18", sample)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "<b>Hiring alerts 2026-10-18</b>", lines[0])
	assert.Equal(t, "<b>SURGE</b> Rocket &amp; Co: 12 new jobs (active 40, new 12, net +10, momentum 61.5)", lines[2])
}

func TestChunk(t *testing.T) {
	assert.Equal(t, []string{"short"}, chunk("short", 10))

	parts := chunk("aaaa\nbbbb\ncccc", 9)
	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, parts)

	parts = chunk("abcdefghijkl", 5)
	assert.Equal(t, []string{"abcde", "fghij", "kl"}, parts)
}
