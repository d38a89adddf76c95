// Package notify delivers the daily alert digest.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"hireassist-engine/internal/config"
	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/logging"
)

// maxMessage stays under Telegram's 4096 character limit.
const maxMessage = 4000

var alertLabels = map[string]string{
	domain.AlertSurge:      "SURGE",
	domain.AlertGoneDark:   "GONE DARK",
	domain.AlertSlowdown:   "SLOWDOWN",
	domain.AlertNewEntrant: "NEW",
}

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram returns a disabled notifier when the bot is switched off or
// credentials are missing.
func NewTelegram(cfg config.Config) (*Telegram, error) {
	return newTelegram(cfg, tgbotapi.APIEndpoint)
}

func newTelegram(cfg config.Config, endpoint string) (*Telegram, error) {
	log := logging.Component("notify")
	if !cfg.Telegram.Enabled {
		return &Telegram{}, nil
	}
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		log.Warn("telegram enabled without token or chat id; digests disabled")
		return &Telegram{}, nil
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Telegram.Token, endpoint)
	if err != nil {
		return nil, eris.Wrap(err, "init telegram bot")
	}
	log.Info("telegram ready", zap.String("bot", bot.Self.UserName))
	return &Telegram{bot: bot, chatID: cfg.Telegram.ChatID}, nil
}

func (t *Telegram) Enabled() bool { return t != nil && t.bot != nil }

// SendAlerts posts the digest for date. Nothing is sent when disabled or
// when there are no alerts.
func (t *Telegram) SendAlerts(ctx context.Context, date string, alerts []domain.Alert) error {
	if !t.Enabled() || len(alerts) == 0 {
		return nil
	}
	for _, part := range chunk(FormatDigest(date, alerts), maxMessage) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(t.chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := t.bot.Send(msg); err != nil {
			return eris.Wrap(err, "send telegram digest")
		}
	}
	logging.Component("notify").Info("digest sent", zap.String("date", date), zap.Int("alerts", len(alerts)))
	return nil
}

// FormatDigest renders alerts as Telegram HTML, one line per company.
func FormatDigest(date string, alerts []domain.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>Hiring alerts %s</b>\n", html.EscapeString(date))
	for _, a := range alerts {
		label := alertLabels[a.Type]
		if label == "" {
			label = strings.ToUpper(a.Type)
		}
		fmt.Fprintf(&b, "\n<b>%s</b> %s: %s (active %d, new %d, net %+d, momentum %.1f)",
			label, html.EscapeString(a.CompanyName), html.EscapeString(a.Message),
			a.ActiveJobs, a.NewJobs, a.NetChange, a.Momentum)
	}
	return b.String()
}

// chunk splits text on line boundaries into parts of at most max bytes.
// A single line longer than max is cut.
func chunk(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(text, "\n") {
		for len(line) > max {
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
			out = append(out, line[:max])
			line = line[max:]
		}
		if cur.Len() > 0 && cur.Len()+len(line)+1 > max {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
