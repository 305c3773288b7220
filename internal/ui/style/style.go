// Package style holds the colors and icons shared by log and status output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/venvup/internal/core/domain"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
)

// Status returns the icon and color used to report an upgrade status.
func Status(s domain.Status) (string, lipgloss.Color) {
	switch s {
	case domain.StatusUpgraded:
		return Check, Green
	case domain.StatusError:
		return Cross, Red
	default:
		return Circle, Slate
	}
}
