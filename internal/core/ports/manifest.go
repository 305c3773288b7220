package ports

import "go.trai.ch/venvup/internal/core/domain"

// ManifestReader extracts the declared requirement from a dependency manifest.
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestReader interface {
	// Read parses the manifest at path.
	Read(path string) (domain.Requirement, error)
}
