package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"hireassist-engine/internal/discover"
	"hireassist-engine/internal/domain"
	"hireassist-engine/internal/logging"
)

// seedFile is the harvest export accepted by `engine seed`.
type seedFile struct {
	Candidates []struct {
		Name       string            `yaml:"name"`
		Website    string            `yaml:"website"`
		City       string            `yaml:"city"`
		Region     string            `yaml:"region"`
		Source     string            `yaml:"source"`
		ExternalID string            `yaml:"external_id"`
		Attributes map[string]string `yaml:"attributes"`
	} `yaml:"candidates"`
}

func readSeedFile(path string) ([]domain.Candidate, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, eris.Wrapf(err, "parse %s", path)
	}
	out := make([]domain.Candidate, 0, len(f.Candidates))
	for _, c := range f.Candidates {
		out = append(out, domain.Candidate{
			Name:          c.Name,
			Website:       c.Website,
			City:          c.City,
			Region:        c.Region,
			HarvestSource: c.Source,
			ExternalID:    c.ExternalID,
			Attributes:    c.Attributes,
			WebsiteDomain: discover.WebsiteDomain(c.Website),
		})
	}
	return out, nil
}

// seed scores and stores candidates. Known candidates keep their status.
func (a *app) seed(ctx context.Context, path string) error {
	log := logging.Component("seed")
	cands, err := readSeedFile(path)
	if err != nil {
		return err
	}

	var added, known, skipped int
	for _, c := range cands {
		c.Score = a.scorer.Score(c).Score
		inserted, err := a.db.InsertCandidate(ctx, c)
		if err != nil {
			log.Warn("skip candidate", zap.String("candidate", c.Name), zap.Error(err))
			skipped++
			continue
		}
		if inserted {
			added++
		} else {
			known++
		}
	}
	log.Info("seed finished",
		zap.String("file", path),
		zap.Int("added", added),
		zap.Int("known", known),
		zap.Int("skipped", skipped))
	return nil
}
