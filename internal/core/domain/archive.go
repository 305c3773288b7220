package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ArchiveKind distinguishes built wheels from source distributions.
type ArchiveKind string

const (
	// ArchiveWheel is a built distribution ending in .whl.
	ArchiveWheel ArchiveKind = "wheel"
	// ArchiveSource is a source distribution.
	ArchiveSource ArchiveKind = "sdist"
)

var sdistExtensions = []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tgz", ".zip"}

// ArchiveFile is a distribution file name split into its parts.
type ArchiveFile struct {
	FileName string
	Name     string
	Version  Version
	Kind     ArchiveKind
}

// ParseArchiveName splits a distribution file name into project name and version.
// Wheels are name-version(-build)?-python-abi-platform.whl; source distributions
// are name-version with a known archive extension.
func ParseArchiveName(fileName string) (ArchiveFile, error) {
	fail := func() (ArchiveFile, error) {
		return ArchiveFile{}, zerr.With(ErrInvalidArchive, "file", fileName)
	}

	if stem, ok := strings.CutSuffix(fileName, ".whl"); ok {
		parts := strings.Split(stem, "-")
		if len(parts) != 5 && len(parts) != 6 {
			return fail()
		}
		v, err := ParseVersion(parts[1])
		if err != nil || parts[0] == "" {
			return fail()
		}
		return ArchiveFile{FileName: fileName, Name: parts[0], Version: v, Kind: ArchiveWheel}, nil
	}

	lower := strings.ToLower(fileName)
	for _, ext := range sdistExtensions {
		if !strings.HasSuffix(lower, ext) {
			continue
		}
		stem := fileName[:len(fileName)-len(ext)]
		i := strings.LastIndex(stem, "-")
		if i <= 0 {
			return fail()
		}
		v, err := ParseVersion(stem[i+1:])
		if err != nil {
			return fail()
		}
		return ArchiveFile{FileName: fileName, Name: stem[:i], Version: v, Kind: ArchiveSource}, nil
	}
	return fail()
}

// Matches reports whether the archive belongs to the named project.
func (a ArchiveFile) Matches(name string) bool {
	return SameName(a.Name, name)
}
