package ports

import (
	"context"

	"go.trai.ch/venvup/internal/core/domain"
)

// Installer installs packages into an environment through its package manager.
//
//go:generate go run go.uber.org/mock/mockgen -source=installer.go -destination=mocks/mock_installer.go -package=mocks
type Installer interface {
	// Install performs one install attempt. Failures are reported in the response, never returned.
	Install(ctx context.Context, env domain.Environment, req domain.InstallRequest) domain.InstallResponse

	// List returns the packages installed in the environment.
	List(ctx context.Context, env domain.Environment) (domain.Contents, error)

	// Check runs the dependency consistency check of the environment.
	Check(ctx context.Context, env domain.Environment) ([]domain.Inconsistency, error)
}
