// Package detector provides environment detection for log format selection.
package detector

import (
	"os"

	"go.trai.ch/venvup/internal/core/domain"
	"golang.org/x/term"
)

// LogFormat represents how log records are rendered.
type LogFormat int

const (
	// FormatAuto automatically detects the appropriate format.
	FormatAuto LogFormat = iota
	// FormatPretty renders colored human-readable lines.
	FormatPretty
	// FormatJSON renders one JSON object per record.
	FormatJSON
)

// DetectEnvironment returns the recommended log format based on the environment.
// It checks if stderr is a TTY and if CI environment variables are set.
func DetectEnvironment() LogFormat {
	isTTY := term.IsTerminal(int(os.Stderr.Fd()))

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return FormatJSON
	}
	return FormatPretty
}

// ResolveFormat applies the user setting to auto-detection.
// userFlag should be one of domain.LogFormatAuto, domain.LogFormatPretty, domain.LogFormatJSON or empty.
func ResolveFormat(autoDetected LogFormat, userFlag string) LogFormat {
	switch userFlag {
	case domain.LogFormatPretty:
		return FormatPretty
	case domain.LogFormatJSON:
		return FormatJSON
	default:
		return autoDetected
	}
}
