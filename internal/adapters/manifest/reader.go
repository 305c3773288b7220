// Package manifest reads the declared top-level requirement from a dependency manifest.
package manifest

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultFileName is read when the manifest path names a directory.
const DefaultFileName = "requirements.txt"

var _ ports.ManifestReader = (*Reader)(nil)

// Reader implements ports.ManifestReader.
//
// The first line containing "#" declares the requirement as "<requirement> # <comment>".
// Lines without "#" are ignored.
type Reader struct{}

// NewReader creates a new Reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read parses the manifest at path. A directory is read through its requirements.txt.
func (r *Reader) Read(path string) (domain.Requirement, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}

	f, err := os.Open(path) //nolint:gosec // path is user input by design
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Requirement{}, zerr.With(domain.ErrManifestNotFound, "path", path)
		}
		return domain.Requirement{}, zerr.With(zerr.Wrap(err, domain.ErrManifestNotFound.Error()), "path", path)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		raw, _, ok := strings.Cut(scanner.Text(), "#")
		if !ok {
			continue
		}
		req, err := domain.ParseRequirement(raw)
		if err != nil {
			return domain.Requirement{}, zerr.With(err, "manifest", path)
		}
		return req, nil
	}
	if err := scanner.Err(); err != nil {
		return domain.Requirement{}, zerr.With(zerr.Wrap(err, domain.ErrManifestInvalid.Error()), "path", path)
	}

	return domain.Requirement{}, zerr.With(domain.ErrManifestInvalid, "path", path)
}
