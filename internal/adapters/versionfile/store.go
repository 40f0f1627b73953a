// Package versionfile stores MAJOR.MINOR.PATCH version numbers in plain text files.
package versionfile

import (
	"bytes"
	"os"
	"path/filepath"

	"go.trai.ch/rbuild/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.VersionStore.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Read parses the version stored at path.
func (s *Store) Read(path string) (domain.Version, error) {
	v, _, _, err := read(path)
	return v, err
}

// Bump increments part of the version stored at path.
// The file is replaced atomically and keeps its mode and trailing newline.
func (s *Store) Bump(path string, part domain.VersionPart) (oldVersion, newVersion domain.Version, err error) {
	oldVersion, info, data, err := read(path)
	if err != nil {
		return domain.Version{}, domain.Version{}, err
	}

	newVersion = oldVersion.Bump(part)

	content := []byte(newVersion.String())
	if bytes.HasSuffix(data, []byte("\n")) {
		content = append(content, '\n')
	}

	if err := writeAtomic(path, content, info.Mode().Perm()); err != nil {
		return domain.Version{}, domain.Version{}, zerr.With(zerr.Wrap(err, domain.ErrVersionWriteFailed.Error()), "path", path)
	}

	return oldVersion, newVersion, nil
}

func read(path string) (domain.Version, os.FileInfo, []byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Version{}, nil, nil, zerr.With(zerr.Wrap(err, domain.ErrVersionReadFailed.Error()), "path", path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return domain.Version{}, nil, nil, zerr.With(zerr.Wrap(err, domain.ErrVersionReadFailed.Error()), "path", path)
	}

	v, err := domain.ParseVersion(string(data))
	if err != nil {
		return domain.Version{}, nil, nil, zerr.With(err, "path", path)
	}

	return v, info, data, nil
}

// writeAtomic writes data to a temporary file in the target directory and renames it over path.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Clean up on failure.
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	tmpName = ""
	return nil
}
