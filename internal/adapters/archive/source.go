// Package archive lists versions from a flat directory of package archives.
package archive

import (
	"context"
	"os"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.VersionSource = (*Source)(nil)
	_ ports.Pinger        = (*Source)(nil)
)

// Source implements ports.VersionSource over a local archive directory.
type Source struct {
	dir string
}

// NewSource creates a Source reading dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// ListVersions returns the versions of every archive in the directory that belongs to name.
// File names that are not archives are ignored.
func (s *Source) ListVersions(_ context.Context, name string) (domain.VersionSet, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return domain.VersionSet{}, zerr.With(zerr.Wrap(err, domain.ErrArchiveNotFound.Error()), "archive_dir", s.dir)
	}

	set := domain.NewVersionSet()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		archive, err := domain.ParseArchiveName(entry.Name())
		if err != nil || !archive.Matches(name) {
			continue
		}
		set.Add(archive.Version)
	}
	return set, nil
}

// Ping checks that the directory is readable.
func (s *Source) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrArchiveNotFound.Error()), "archive_dir", s.dir)
	}
	if !info.IsDir() {
		return zerr.With(zerr.With(domain.ErrArchiveNotFound, "archive_dir", s.dir), "reason", "not a directory")
	}
	return nil
}
