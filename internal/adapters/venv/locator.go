package venv

import (
	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
)

// Location describes where the environment for a requirement lives.
type Location struct {
	Path       string `json:"path"`
	Executable string `json:"executable"`
	Exists     bool   `json:"exists"`
	ShadowPath string `json:"shadow_path,omitempty"`
}

// Locator maps requirements to environment paths and probes them.
type Locator struct {
	fs ports.FileSystem
}

// NewLocator creates a new Locator.
func NewLocator(fs ports.FileSystem) *Locator {
	return &Locator{fs: fs}
}

// Exists reports whether an environment directory is present at path. It is never cached.
func (l *Locator) Exists(path string) bool {
	return l.fs.Exists(path)
}

// Locate resolves the environment of req under home.
func (l *Locator) Locate(home string, req domain.Requirement) Location {
	path := domain.Locate(home, req.String())
	loc := Location{
		Path:       path,
		Executable: domain.ExecutablePath(path),
		Exists:     l.fs.Exists(path),
	}
	if shadow := domain.ShadowPath(path); l.fs.Exists(shadow) {
		loc.ShadowPath = shadow
	}
	return loc
}
