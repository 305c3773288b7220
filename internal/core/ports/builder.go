package ports

import (
	"context"

	"go.trai.ch/venvup/internal/core/domain"
)

// EnvironmentBuilder creates new environments.
//
//go:generate go run go.uber.org/mock/mockgen -source=builder.go -destination=mocks/mock_builder.go -package=mocks
type EnvironmentBuilder interface {
	// Build creates an environment at path with the baseline toolset installed.
	// It fails with domain.ErrDirectoryExists when path is already present.
	Build(ctx context.Context, path string) (domain.Environment, error)
}
