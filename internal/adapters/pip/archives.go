package pip

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zip"
	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/zerr"
)

// maxMetadataSize bounds the METADATA entry read from a wheel.
const maxMetadataSize = 1 << 20

// FindArchive returns the newest wheel in dir that belongs to req and satisfies its specifier.
// File names are matched case-insensitively on the name with separators folded to "_".
func FindArchive(dir string, req domain.Requirement) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrArchiveNotFound.Error()), "archive_dir", dir)
	}

	pattern := strings.ToLower(req.ArchiveName()) + "-*.whl"
	var (
		best  domain.ArchiveFile
		found bool
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := doublestar.Match(pattern, strings.ToLower(entry.Name()))
		if err != nil {
			return "", zerr.Wrap(err, domain.ErrArchiveNotFound.Error())
		}
		if !ok {
			continue
		}
		archive, err := domain.ParseArchiveName(entry.Name())
		if err != nil || !archive.Matches(req.Name) {
			continue
		}
		if !req.Specifier.Matches(archive.Version) {
			continue
		}
		if !found || archive.Version.GreaterThan(best.Version) {
			best, found = archive, true
		}
	}

	if !found {
		err := zerr.With(domain.ErrArchiveNotFound, "requirement", req.String())
		return "", zerr.With(err, "archive_dir", dir)
	}
	return filepath.Join(dir, best.FileName), nil
}

// InspectArchive confirms that the wheel at path is a readable zip carrying
// distribution metadata for the named project.
func InspectArchive(archivePath, name string) error {
	fail := func(reason string) error {
		return zerr.With(zerr.With(domain.ErrInvalidArchive, "archive", archivePath), "reason", reason)
	}

	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrInvalidArchive.Error()), "archive", archivePath)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		dir, base := path.Split(f.Name)
		if base != "METADATA" || !strings.HasSuffix(strings.TrimSuffix(dir, "/"), ".dist-info") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrInvalidArchive.Error()), "archive", archivePath)
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxMetadataSize))
		_ = rc.Close()
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrInvalidArchive.Error()), "archive", archivePath)
		}

		declared := metadataField(string(data), "Name")
		if declared == "" {
			return fail("metadata has no Name field")
		}
		if !domain.SameName(declared, name) {
			return zerr.With(fail("archive belongs to another project"), "declared_name", declared)
		}
		return nil
	}
	return fail("no dist-info METADATA entry")
}

// metadataField returns the first header value named key from core metadata.
func metadataField(metadata, key string) string {
	for line := range strings.Lines(metadata) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			// headers end at the first blank line
			return ""
		}
		k, v, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
