package logger_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/venvup/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestCollectErrorEntries(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Empty(t, logger.CollectErrorEntries(nil))
	})

	t.Run("standard error stops the walk", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", errors.New("inner"))
		entries := logger.CollectErrorEntries(err)
		assert.Equal(t, []logger.ErrorEntry{{Message: "outer: inner"}}, entries)
	})

	t.Run("zerr chain with metadata", func(t *testing.T) {
		cause := zerr.With(zerr.New("pip exited 1"), "exit_code", 1)
		err := zerr.With(zerr.Wrap(cause, "install failed"), "requirement", "pkg==1.0")

		entries := logger.CollectErrorEntries(err)
		assert.Len(t, entries, 2)
		assert.Equal(t, "install failed", entries[0].Message)
		assert.Equal(t, "pkg==1.0", entries[0].Metadata["requirement"])
		assert.Equal(t, "pip exited 1", entries[1].Message)
		assert.Equal(t, 1, entries[1].Metadata["exit_code"])
	})

	t.Run("zerr wrapping a standard error", func(t *testing.T) {
		err := zerr.Wrap(errors.New("connection refused"), "package index unreachable")

		entries := logger.CollectErrorEntries(err)
		assert.Len(t, entries, 2)
		assert.Equal(t, "connection refused", entries[1].Message)
		assert.Nil(t, entries[1].Metadata)
	})
}

func TestFormatErrorEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []logger.ErrorEntry
		want    string
	}{
		{
			name:    "single entry",
			entries: []logger.ErrorEntry{{Message: "boom"}},
			want:    "Error: boom",
		},
		{
			name:    "multiline message",
			entries: []logger.ErrorEntry{{Message: "first\nsecond"}},
			want:    "Error: first\n       second",
		},
		{
			name: "sorted metadata",
			entries: []logger.ErrorEntry{{
				Message:  "boom",
				Metadata: map[string]any{"b": 2, "a": "x"},
			}},
			want: "Error: boom\n       a: x\n       b: 2",
		},
		{
			name: "causes",
			entries: []logger.ErrorEntry{
				{Message: "outer"},
				{Message: "middle", Metadata: map[string]any{"k": "v"}},
				{Message: "inner\ndetail"},
			},
			want: "Error: outer\n\n  Caused by:\n    → middle\n      k: v\n    → inner\n      detail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.FormatErrorEntries(tt.entries))
		})
	}
}
