package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// EnsureUserConfig returns the path of config.yml inside dataDir, creating it
// from defaultPath (or from Default() when defaultPath is missing).
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", eris.Wrap(err, "stat user config")
	}

	src, err := os.Open(defaultPath)
	if errors.Is(err, os.ErrNotExist) {
		b, merr := yaml.Marshal(Default())
		if merr != nil {
			return "", eris.Wrap(merr, "marshal default config")
		}
		if werr := os.WriteFile(userPath, b, 0o644); werr != nil {
			return "", eris.Wrap(werr, "write default config")
		}
		return userPath, nil
	}
	if err != nil {
		return "", eris.Wrap(err, "open default config")
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", eris.Wrap(err, "create user config")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", eris.Wrap(err, "copy default config")
	}
	return userPath, nil
}
