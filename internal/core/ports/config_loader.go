package ports

import "go.trai.ch/rbuild/internal/core/domain"

// ConfigLoader defines the interface for loading taskfiles.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Discover walks up from cwd and returns the path of the first taskfile found.
	Discover(cwd string) (string, error)

	// Load parses the taskfile at path into a registry whose tasks carry
	// absolute base directories.
	Load(path string) (*domain.Taskfile, error)
}
