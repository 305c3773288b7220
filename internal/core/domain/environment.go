package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Package is an installed distribution as reported by the package manager.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// String renders the package as "name==version".
func (p Package) String() string {
	return p.Name + "==" + p.Version
}

// Contents is the set of packages installed in an environment.
type Contents []Package

// Find returns the package with the given name, compared in normalized form.
func (c Contents) Find(name string) (Package, bool) {
	for _, p := range c {
		if SameName(p.Name, name) {
			return p, true
		}
	}
	return Package{}, false
}

// Sorted returns a copy ordered by normalized name.
func (c Contents) Sorted() Contents {
	sorted := slices.Clone(c)
	slices.SortFunc(sorted, func(a, b Package) int {
		return strings.Compare(NormalizeName(a.Name), NormalizeName(b.Name))
	})
	return sorted
}

// Fingerprint returns a stable hash of the contents, independent of their order.
func (c Contents) Fingerprint() string {
	digest := xxhash.New()
	for _, p := range c.Sorted() {
		_, _ = digest.WriteString(NormalizeName(p.Name) + "==" + p.Version + "\n")
	}
	return fmt.Sprintf("%016x", digest.Sum64())
}

// Environment is an isolated runtime environment on disk.
type Environment struct {
	Path       string
	Executable string
	Contents   Contents
}

// NewEnvironment describes the environment rooted at path.
func NewEnvironment(path string) Environment {
	return Environment{
		Path:       path,
		Executable: ExecutablePath(path),
	}
}

// InstalledVersion parses the version of the named package from the contents.
// It returns nil when the package is absent.
func (e Environment) InstalledVersion(name string) (*Version, error) {
	p, ok := e.Contents.Find(name)
	if !ok {
		return nil, nil //nolint:nilnil // absence is not an error
	}
	v, err := ParseVersion(p.Version)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
