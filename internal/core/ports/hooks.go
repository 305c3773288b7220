package ports

import (
	"context"

	"go.trai.ch/venvup/internal/core/domain"
)

// PostInstaller runs the package specific steps after an environment changed.
//
//go:generate go run go.uber.org/mock/mockgen -source=hooks.go -destination=mocks/mock_hooks.go -package=mocks
type PostInstaller interface {
	// Run executes the hook of the required package inside env.
	Run(ctx context.Context, env domain.Environment, req domain.Requirement) error
}
