package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"hireassist-engine/internal/config"
	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/logging"
)

// Thresholds tune the alert rules.
type Thresholds struct {
	SurgeMinNew       int     // new jobs today
	SurgeRatio        float64 // times the trailing seven-day average
	MinActive         int     // active jobs for surge and new_entrant
	SlowdownNet       int     // three-day net change at or below
	SlowdownPct       float64 // share of active jobs lost over three days
	NewEntrantDays    int     // history starting within this many days
	GoneDarkMinActive int     // previous active count for gone_dark
}

func ThresholdsFromConfig(cfg config.Config) Thresholds {
	a := cfg.Alerts
	return Thresholds{
		SurgeMinNew:       a.SurgeMinNew,
		SurgeRatio:        a.SurgeRatio,
		MinActive:         a.MinActive,
		SlowdownNet:       a.SlowdownNet,
		SlowdownPct:       a.SlowdownPct,
		NewEntrantDays:    a.NewEntrantDays,
		GoneDarkMinActive: a.GoneDarkMinActive,
	}
}

const (
	trailingDays = 7
	slowdownDays = 3
)

var priority = map[string]int{
	domain.AlertSurge:      0,
	domain.AlertGoneDark:   1,
	domain.AlertSlowdown:   2,
	domain.AlertNewEntrant: 3,
}

// series is one company's daily totals, keyed by date.
type series map[string]domain.CompanyDailyStat

// DetectAlerts evaluates the rules for day against stored stats and returns
// at most one alert per company, the highest priority rule that fired.
func (e *Engine) DetectAlerts(ctx context.Context, day time.Time) ([]domain.Alert, error) {
	date := Day(day)
	window := trailingDays
	if e.thresholds.NewEntrantDays >= window {
		window = e.thresholds.NewEntrantDays + 1
	}
	rows, err := e.store.StatsBetween(ctx, shift(date, -window), date)
	if err != nil {
		return nil, err
	}

	byCompany := map[string]series{}
	for _, r := range rows {
		s := byCompany[r.CompanyName]
		if s == nil {
			s = series{}
			byCompany[r.CompanyName] = s
		}
		agg := s[r.StatDate]
		agg.StatDate = r.StatDate
		agg.CompanyName = r.CompanyName
		agg.ActiveJobs += r.ActiveJobs
		agg.NewJobs += r.NewJobs
		agg.ClosedJobs += r.ClosedJobs
		agg.NetChange += r.NetChange
		s[r.StatDate] = agg
	}

	var alerts []domain.Alert
	for company, s := range byCompany {
		if a, ok := e.evaluate(date, s); ok {
			a.CompanyName = company
			alerts = append(alerts, a)
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		pi, pj := priority[alerts[i].Type], priority[alerts[j].Type]
		if pi != pj {
			return pi < pj
		}
		if alerts[i].Momentum != alerts[j].Momentum {
			return alerts[i].Momentum > alerts[j].Momentum
		}
		return alerts[i].CompanyName < alerts[j].CompanyName
	})

	logging.Component("stats").Info("alerts detected", zap.String("date", date), zap.Int("alerts", len(alerts)))
	return alerts, nil
}

// evaluate applies the rules in priority order.
func (e *Engine) evaluate(date string, s series) (domain.Alert, bool) {
	today, ok := s[date]
	if !ok {
		return domain.Alert{}, false
	}
	th := e.thresholds

	first := date
	for d := range s {
		if d < first {
			first = d
		}
	}
	// the window always reaches past the new-entrant horizon
	entrant := first > shift(date, -th.NewEntrantDays)

	alert := domain.Alert{
		ActiveJobs: today.ActiveJobs,
		NewJobs:    today.NewJobs,
		NetChange:  today.NetChange,
		Momentum:   round1(Momentum(today.NewJobs, today.NetChange, today.ActiveJobs)),
	}

	// surge
	if !entrant && today.NewJobs >= th.SurgeMinNew && today.ActiveJobs >= th.MinActive {
		var sum int
		for i := 1; i <= trailingDays; i++ {
			sum += s[shift(date, -i)].NewJobs
		}
		avg := float64(sum) / trailingDays
		if float64(today.NewJobs) >= th.SurgeRatio*avg {
			alert.Type = domain.AlertSurge
			alert.Message = fmt.Sprintf("%d new jobs today, %.1f per day over the previous week", today.NewJobs, avg)
			return alert, true
		}
	}

	// gone_dark
	if prev, ok := s[shift(date, -1)]; ok && prev.ActiveJobs >= th.GoneDarkMinActive && today.ActiveJobs == 0 {
		alert.Type = domain.AlertGoneDark
		alert.Message = fmt.Sprintf("all %d open jobs closed", prev.ActiveJobs)
		return alert, true
	}

	// slowdown
	var net int
	for i := 0; i < slowdownDays; i++ {
		net += s[shift(date, -i)].NetChange
	}
	if net <= th.SlowdownNet && today.ActiveJobs > 0 && float64(-net) >= th.SlowdownPct*float64(today.ActiveJobs) {
		alert.Type = domain.AlertSlowdown
		alert.Message = fmt.Sprintf("net %d jobs over %d days (now %d)", net, slowdownDays, today.ActiveJobs)
		return alert, true
	}

	// new_entrant
	if entrant && today.ActiveJobs >= th.MinActive {
		alert.Type = domain.AlertNewEntrant
		alert.Message = fmt.Sprintf("first seen %s with %d open jobs", first, today.ActiveJobs)
		return alert, true
	}

	return domain.Alert{}, false
}
