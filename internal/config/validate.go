package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg plus problems found.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Candidate.ExcludedWords = trimList(out.Candidate.ExcludedWords)
	out.Candidate.CorporateWords = trimList(out.Candidate.CorporateWords)
	out.Careers.Paths = trimList(out.Careers.Paths)
	out.Careers.Subdomains = trimList(out.Careers.Subdomains)
	for i, p := range out.Careers.Paths {
		if !strings.HasPrefix(p, "/") {
			out.Careers.Paths[i] = "/" + p
		}
	}

	if out.Discovery.MinTokenLen < 2 {
		res.addErr("discovery.min_token_len must be >= 2")
	} else if out.Discovery.MinTokenLen < 4 {
		res.addWarn("discovery.min_token_len is low (%d); short tokens collide across companies.", out.Discovery.MinTokenLen)
	}
	if !out.Discovery.Strict {
		res.addWarn("discovery.strict is false; any responding board will be accepted.")
	}
	if out.Discovery.ProbeDelayMs < 100 {
		res.addWarn("discovery.probe_delay_ms is very low (%d) and may cause rate limits.", out.Discovery.ProbeDelayMs)
	}

	if out.Scrape.Workers > 8 {
		res.addWarn("scrape.workers=%d starts that many browser pages at once.", out.Scrape.Workers)
	}
	if out.Scrape.NavTimeoutSeconds > out.Scrape.CompanyTimeoutSeconds {
		res.addErr("scrape.nav_timeout_seconds must not exceed scrape.company_timeout_seconds")
	}

	if out.AI.Enabled && strings.TrimSpace(out.AI.APIKey) == "" {
		res.addWarn("ai.enabled=true but no API key found; the text-extraction strategy is skipped.")
	}
	if out.Telegram.Enabled {
		if out.Telegram.ChatID == 0 {
			res.addErr("telegram.chat_id is required when telegram.enabled=true")
		}
		if strings.TrimSpace(out.Telegram.Token) == "" {
			res.addWarn("telegram.enabled=true but no bot token found; alerts will only be logged.")
		}
	}

	if out.Alerts.SurgeRatio < 1 {
		res.addWarn("alerts.surge_ratio below 1 flags every company with new jobs.")
	}

	return out, res
}
