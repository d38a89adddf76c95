package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// TagRule adds Weight when a harvested attribute Key has one of the Any values.
// An empty Any matches every value of Key.
type TagRule struct {
	Key    string   `yaml:"key"`
	Any    []string `yaml:"any"`
	Weight int      `yaml:"weight"`
}

type Config struct {
	App struct {
		Port          int    `yaml:"port"`
		DataDir       string `yaml:"data_dir"`
		TargetCountry string `yaml:"target_country"`
	} `yaml:"app"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json | console
	} `yaml:"log"`

	Schedule struct {
		IntervalHours int  `yaml:"interval_hours"`
		Discover      bool `yaml:"discover"`
		Scrape        bool `yaml:"scrape"`
	} `yaml:"schedule"`

	HTTP struct {
		UserAgent         string  `yaml:"user_agent"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		Retries           int     `yaml:"retries"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"http"`

	Candidate struct {
		MinScore       int       `yaml:"min_score"`
		RequireWebsite bool      `yaml:"require_website"`
		ExcludeTags    []TagRule `yaml:"exclude_tags"`
		PreferTags     []TagRule `yaml:"prefer_tags"`
		ExcludedWords  []string  `yaml:"excluded_words"`
		CorporateWords []string  `yaml:"corporate_words"`
	} `yaml:"candidate"`

	Discovery struct {
		Strict         bool `yaml:"strict"`
		MinTokenLen    int  `yaml:"min_token_len"`
		ProbeDelayMs   int  `yaml:"probe_delay_ms"`
		Workers        int  `yaml:"workers"`
		BatchLimit     int  `yaml:"batch_limit"`
		CacheTTLHours  int  `yaml:"cache_ttl_hours"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
	} `yaml:"discovery"`

	Careers struct {
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		Paths          []string `yaml:"paths"`
		Subdomains     []string `yaml:"subdomains"`
	} `yaml:"careers"`

	Scrape struct {
		Headless              bool   `yaml:"headless"`
		Workers               int    `yaml:"workers"`
		NavTimeoutSeconds     int    `yaml:"nav_timeout_seconds"`
		CompanyTimeoutSeconds int    `yaml:"company_timeout_seconds"`
		DelayMs               int    `yaml:"delay_ms"`
		UserAgent             string `yaml:"user_agent"`
	} `yaml:"scrape"`

	Sync struct {
		Workers        int `yaml:"workers"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"sync"`

	AI struct {
		Enabled        bool   `yaml:"enabled"`
		BaseURL        string `yaml:"base_url"`
		Model          string `yaml:"model"`
		MaxChars       int    `yaml:"max_chars"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		APIKey         string `yaml:"-"`
	} `yaml:"ai"`

	Alerts struct {
		SurgeMinNew       int     `yaml:"surge_min_new"`
		SurgeRatio        float64 `yaml:"surge_ratio"`
		MinActive         int     `yaml:"min_active"`
		SlowdownNet       int     `yaml:"slowdown_net"`
		SlowdownPct       float64 `yaml:"slowdown_pct"`
		NewEntrantDays    int     `yaml:"new_entrant_days"`
		GoneDarkMinActive int     `yaml:"gone_dark_min_active"`
	} `yaml:"alerts"`

	Telegram struct {
		Enabled bool   `yaml:"enabled"`
		ChatID  int64  `yaml:"chat_id"`
		Token   string `yaml:"-"`
	} `yaml:"telegram"`
}

// Load reads .env (if present), the YAML file at path, applies defaults and
// then environment overrides.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, eris.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, eris.Wrapf(err, "parse config %s", path)
	}
	ApplyDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default returns a config with every default filled in.
func Default() Config {
	var cfg Config
	cfg.Schedule.Discover = true
	cfg.Schedule.Scrape = true
	cfg.Scrape.Headless = true
	ApplyDefaults(&cfg)
	return cfg
}

func ApplyDefaults(cfg *Config) {
	setInt := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	setStr := func(v *string, d string) {
		if strings.TrimSpace(*v) == "" {
			*v = d
		}
	}

	setInt(&cfg.App.Port, 38471)
	setStr(&cfg.App.DataDir, ".")
	setStr(&cfg.App.TargetCountry, "Netherlands")
	setStr(&cfg.Log.Level, "info")
	setStr(&cfg.Log.Format, "console")
	setInt(&cfg.Schedule.IntervalHours, 24)

	setStr(&cfg.HTTP.UserAgent, "HireAssist/0.3 (discovery)")
	setInt(&cfg.HTTP.TimeoutSeconds, 15)
	if cfg.HTTP.Retries < 0 {
		cfg.HTTP.Retries = 0
	} else if cfg.HTTP.Retries == 0 {
		cfg.HTTP.Retries = 2
	}
	if cfg.HTTP.RequestsPerSecond <= 0 {
		cfg.HTTP.RequestsPerSecond = 3
	}
	setInt(&cfg.HTTP.Burst, 2)

	setInt(&cfg.Candidate.MinScore, 30)

	setInt(&cfg.Discovery.MinTokenLen, 5)
	setInt(&cfg.Discovery.ProbeDelayMs, 300)
	setInt(&cfg.Discovery.Workers, 4)
	setInt(&cfg.Discovery.BatchLimit, 200)
	setInt(&cfg.Discovery.CacheTTLHours, 24*7)
	setInt(&cfg.Discovery.TimeoutSeconds, 120)

	setInt(&cfg.Careers.TimeoutSeconds, 8)

	setInt(&cfg.Scrape.Workers, 2)
	setInt(&cfg.Scrape.NavTimeoutSeconds, 30)
	setInt(&cfg.Scrape.CompanyTimeoutSeconds, 180)
	setInt(&cfg.Scrape.DelayMs, 1000)
	setStr(&cfg.Scrape.UserAgent, "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	setInt(&cfg.Sync.Workers, 4)
	setInt(&cfg.Sync.TimeoutSeconds, 60)

	setStr(&cfg.AI.BaseURL, "https://api.groq.com/openai/v1")
	setStr(&cfg.AI.Model, "llama-3.3-70b-versatile")
	setInt(&cfg.AI.MaxChars, 15000)
	setInt(&cfg.AI.TimeoutSeconds, 60)

	setInt(&cfg.Alerts.SurgeMinNew, 3)
	if cfg.Alerts.SurgeRatio <= 0 {
		cfg.Alerts.SurgeRatio = 3
	}
	setInt(&cfg.Alerts.MinActive, 5)
	if cfg.Alerts.SlowdownNet >= 0 {
		cfg.Alerts.SlowdownNet = -5
	}
	if cfg.Alerts.SlowdownPct <= 0 {
		cfg.Alerts.SlowdownPct = 0.05
	}
	setInt(&cfg.Alerts.NewEntrantDays, 2)
	setInt(&cfg.Alerts.GoneDarkMinActive, 5)
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("HIREASSIST_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
	if v := os.Getenv("HIREASSIST_AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return eris.Wrap(err, "invalid TELEGRAM_CHAT_ID")
		}
		cfg.Telegram.ChatID = id
	}
	return nil
}
