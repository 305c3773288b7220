package pip

import (
	"regexp"
	"strings"

	"go.trai.ch/venvup/internal/core/domain"
)

var (
	missingPattern  = regexp.MustCompile(`^(\S+) (\S+) requires (.+), which is not installed\.$`)
	conflictPattern = regexp.MustCompile(`^(\S+) (\S+) has requirement (.+), but you have (.+)\.$`)
)

// ParseCheckOutput extracts the broken dependencies from the output of "pip check".
// Lines that describe anything else are ignored.
func ParseCheckOutput(output string) []domain.Inconsistency {
	var found []domain.Inconsistency
	for line := range strings.Lines(output) {
		line = strings.TrimSpace(line)
		if m := missingPattern.FindStringSubmatch(line); m != nil {
			found = append(found, domain.Inconsistency{
				Package:     m[1],
				Version:     m[2],
				Requirement: m[3],
				Kind:        domain.InconsistencyMissing,
			})
			continue
		}
		if m := conflictPattern.FindStringSubmatch(line); m != nil {
			found = append(found, domain.Inconsistency{
				Package:     m[1],
				Version:     m[2],
				Requirement: m[3],
				Kind:        domain.InconsistencyConflict,
				Installed:   m[4],
			})
		}
	}
	return found
}
