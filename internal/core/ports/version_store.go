package ports

import "go.trai.ch/rbuild/internal/core/domain"

// VersionStore reads and rewrites MAJOR.MINOR.PATCH version files.
//
//go:generate mockgen -source=version_store.go -destination=mocks/mock_version_store.go -package=mocks
type VersionStore interface {
	// Read parses the version stored at path.
	Read(path string) (domain.Version, error)

	// Bump increments part of the version stored at path and returns the old and new values.
	Bump(path string, part domain.VersionPart) (domain.Version, domain.Version, error)
}
