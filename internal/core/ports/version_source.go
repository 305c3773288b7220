package ports

import (
	"context"

	"go.trai.ch/venvup/internal/core/domain"
)

// VersionSource lists the versions published for a package.
//
//go:generate go run go.uber.org/mock/mockgen -source=version_source.go -destination=mocks/mock_version_source.go -package=mocks
type VersionSource interface {
	// ListVersions returns every version published for the named package.
	// An unknown package yields an empty set, not an error.
	ListVersions(ctx context.Context, name string) (domain.VersionSet, error)
}

// Pinger is implemented by version sources that can validate their endpoint before use.
type Pinger interface {
	// Ping fails when the endpoint does not answer successfully.
	Ping(ctx context.Context) error
}
