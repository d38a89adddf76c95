package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// RulesFile is the optional candidate_rules.yml that replaces the scorer tables.
type RulesFile struct {
	ExcludeTags    []TagRule `yaml:"exclude_tags"`
	PreferTags     []TagRule `yaml:"prefer_tags"`
	ExcludedWords  []string  `yaml:"excluded_words"`
	CorporateWords []string  `yaml:"corporate_words"`
}

func OverlayCandidateRules(cfg *Config, rulesPath string) error {
	b, err := os.ReadFile(rulesPath)
	if err != nil {
		// Missing rules file should not kill startup
		return nil
	}

	var rf RulesFile
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return eris.Wrapf(err, "parse %s", rulesPath)
	}

	if len(rf.ExcludeTags) > 0 {
		cfg.Candidate.ExcludeTags = rf.ExcludeTags
	}
	if len(rf.PreferTags) > 0 {
		cfg.Candidate.PreferTags = rf.PreferTags
	}
	if len(rf.ExcludedWords) > 0 {
		cfg.Candidate.ExcludedWords = rf.ExcludedWords
	}
	if len(rf.CorporateWords) > 0 {
		cfg.Candidate.CorporateWords = rf.CorporateWords
	}
	return nil
}
