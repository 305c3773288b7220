package shell

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		sysEnv   []string
		cmdEnv   []string
		expected []string
	}{
		{
			name:     "System Only",
			sysEnv:   []string{"USER=test", "PATH=/bin", "HOME=/home/test"},
			expected: []string{"USER=test", "PATH=/bin", "HOME=/home/test"},
		},
		{
			name:     "Interpreter Variables Scrubbed",
			sysEnv:   []string{"USER=test", "PYTHONPATH=/x", "PYTHONHOME=/y", "VIRTUAL_ENV=/z"},
			expected: []string{"USER=test"},
		},
		{
			name:     "Override",
			sysEnv:   []string{"USER=test", "UPDATE_PKG=old"},
			cmdEnv:   []string{"UPDATE_PKG=--migrate", "FOO=bar"},
			expected: []string{"USER=test", "UPDATE_PKG=--migrate", "FOO=bar"},
		},
		{
			name:     "Prepend PATH",
			sysEnv:   []string{"PATH=/bin"},
			cmdEnv:   []string{"PATH=/env/bin"},
			expected: []string{"PATH=/env/bin" + string(os.PathListSeparator) + "/bin"},
		},
		{
			name:     "Malformed Entries Ignored",
			sysEnv:   []string{"NOEQUALS", "A=1"},
			cmdEnv:   []string{"ALSO_BROKEN"},
			expected: []string{"A=1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveEnvironment(tt.sysEnv, tt.cmdEnv))
		})
	}
}

func TestTail(t *testing.T) {
	assert.Equal(t, "short", tail("  short\n", 10))
	assert.Equal(t, "...6789", tail("0123456789", 4))
}
