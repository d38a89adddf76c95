package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}
	if cfg.Candidate.MinScore < -100 || cfg.Candidate.MinScore > 100 {
		errs = append(errs, "candidate.min_score must be within -100..100")
	}

	checkRules := func(name string, rules []TagRule) {
		for i, r := range rules {
			if strings.TrimSpace(r.Key) == "" {
				errs = append(errs, fmt.Sprintf("%s[%d].key is required", name, i))
			}
			if r.Weight == 0 {
				errs = append(errs, fmt.Sprintf("%s[%d].weight cannot be 0", name, i))
			}
			for j, term := range r.Any {
				if strings.TrimSpace(term) == "" {
					errs = append(errs, fmt.Sprintf("%s[%d].any[%d] cannot be empty", name, i, j))
				}
			}
		}
	}
	checkRules("candidate.exclude_tags", cfg.Candidate.ExcludeTags)
	checkRules("candidate.prefer_tags", cfg.Candidate.PreferTags)

	if len(errs) > 0 {
		return eris.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

// SaveAtomic validates cfg and replaces path, keeping a .bak of the previous
// file. Concurrent writers are serialized with a lock file next to path.
func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return eris.Wrap(err, "marshal config")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrap(err, "create config dir")
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return eris.Wrap(err, "lock config")
	}
	defer func() { _ = lock.Unlock() }()

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return eris.Wrap(err, "write temp config")
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
