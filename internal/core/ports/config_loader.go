package ports

import "go.trai.ch/venvup/internal/core/domain"

// ConfigLoader defines the interface for loading settings.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the settings from path, or from the file discovered above cwd when path is empty.
	// Missing files yield the defaults.
	Load(cwd, path string) (domain.Config, error)

	// DiscoverConfigPath walks up from cwd to find the configuration file.
	// Returns "" when there is none.
	DiscoverConfigPath(cwd string) (string, error)
}
