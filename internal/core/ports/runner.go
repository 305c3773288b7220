package ports

import (
	"context"

	"go.trai.ch/venvup/internal/core/domain"
)

// CommandRunner runs external processes.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type CommandRunner interface {
	// Run executes the command and captures its output.
	// A non-zero exit status is reported as domain.ErrCommandFailed together with the result.
	Run(ctx context.Context, cmd domain.Command) (domain.CommandResult, error)
}
