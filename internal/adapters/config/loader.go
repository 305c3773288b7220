// Package config provides the configuration loader for venvup.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration at path, or the one discovered above cwd when path is empty.
// Without a configuration file the defaults are returned.
func (l *Loader) Load(cwd, path string) (domain.Config, error) {
	if path == "" {
		discovered, err := l.DiscoverConfigPath(cwd)
		if err != nil {
			return domain.Config{}, err
		}
		if discovered == "" {
			return domain.DefaultConfig(), nil
		}
		path = discovered
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	var file Venvupfile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return domain.Config{}, zerr.With(err, "path", path)
	}

	cfg, err := apply(domain.DefaultConfig(), &file, filepath.Dir(path))
	if err != nil {
		return domain.Config{}, zerr.With(err, "path", path)
	}

	l.Logger.Debug("loaded configuration from " + path)
	return cfg, nil
}

// DiscoverConfigPath walks up from cwd and returns the first venvup.yaml found, or "".
func (l *Loader) DiscoverConfigPath(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "cwd", cwd)
	}

	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", nil
		}
		currentDir = parentDir
	}
}

var logFormats = []string{domain.LogFormatAuto, domain.LogFormatPretty, domain.LogFormatJSON}

// apply overlays the file on cfg. Relative paths are resolved against the file's directory.
func apply(cfg domain.Config, file *Venvupfile, configDir string) (domain.Config, error) {
	if file.EnvsHome != "" {
		cfg.EnvsHome = resolvePath(configDir, file.EnvsHome)
	}
	if file.ArchiveDir != "" {
		cfg.ArchiveDir = resolvePath(configDir, file.ArchiveDir)
	}
	if file.LogLocation != "" {
		cfg.LogLocation = resolvePath(configDir, file.LogLocation)
	}
	if file.IndexURL != "" {
		u, err := url.Parse(file.IndexURL)
		if err != nil {
			return cfg, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "field", "index_url")
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return cfg, zerr.With(domain.ErrConfigParseFailed, "index_url", u.Redacted())
		}
		cfg.IndexURL = file.IndexURL
	}
	if file.Python != "" {
		cfg.Python = file.Python
	}
	if file.Baseline != nil {
		cfg.Baseline = slices.Clone(file.Baseline)
	}
	if file.BlueGreen != nil {
		cfg.BlueGreen = *file.BlueGreen
	}
	if file.AutoUpgrade != nil {
		cfg.AutoUpgrade = *file.AutoUpgrade
	}
	if file.PostInstall != nil {
		cfg.PostInstall = *file.PostInstall
	}
	if file.Parallelism != nil {
		if *file.Parallelism < 1 {
			return cfg, zerr.With(domain.ErrConfigParseFailed, "parallelism", *file.Parallelism)
		}
		cfg.Parallelism = *file.Parallelism
	}
	if file.LogFormat != "" {
		if !slices.Contains(logFormats, file.LogFormat) {
			return cfg, zerr.With(domain.ErrConfigParseFailed, "log_format", file.LogFormat)
		}
		cfg.LogFormat = file.LogFormat
	}
	return cfg, nil
}

func resolvePath(configDir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(configDir, p))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
// Unknown keys are rejected.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is validated by caller
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zerr.With(domain.ErrConfigReadFailed, "reason", "file does not exist")
		}
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(configFile))
	dec.KnownFields(true)
	if parseErr := dec.Decode(target); parseErr != nil && !errors.Is(parseErr, io.EOF) {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
