package domain

import (
	"runtime"
	"strings"
)

// Log formats accepted by the logger.
const (
	LogFormatAuto   = "auto"
	LogFormatPretty = "pretty"
	LogFormatJSON   = "json"
)

// DefaultParallelism bounds concurrent upgrades in one batch.
const DefaultParallelism = 4

// DefaultBaseline is the toolset installed into every freshly built environment.
var DefaultBaseline = []string{"pip", "setuptools", "wheel"}

// Config holds the resolved settings of one run.
type Config struct {
	EnvsHome    string
	IndexURL    string
	ArchiveDir  string
	Python      string
	Baseline    []string
	BlueGreen   bool
	AutoUpgrade bool
	PostInstall bool
	Parallelism int
	LogFormat   string
	LogLocation string
}

// DefaultConfig returns the settings used when neither file nor flags override them.
func DefaultConfig() Config {
	return Config{
		Python:      DefaultPython(),
		Baseline:    append([]string(nil), DefaultBaseline...),
		Parallelism: DefaultParallelism,
		LogFormat:   LogFormatAuto,
	}
}

// DefaultPython returns the interpreter used to create environments.
func DefaultPython() string {
	if runtime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// IsDevelopmentIndex reports whether the index serves development builds,
// in which case pre-releases are installable.
func IsDevelopmentIndex(indexURL string) bool {
	return strings.Contains(indexURL, "development")
}
