package fs

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileSystem = (*FileSystem)(nil)

// FileSystem implements ports.FileSystem on the local disk.
type FileSystem struct {
	walker *Walker
	hasher *Hasher
}

// NewFileSystem creates a new FileSystem.
func NewFileSystem(walker *Walker, hasher *Hasher) *FileSystem {
	return &FileSystem{walker: walker, hasher: hasher}
}

// Exists reports whether a directory is present at path.
func (f *FileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Copy duplicates the tree at src into dst and verifies the copy.
// dst must not exist. Symlinks are recreated verbatim and modes are preserved.
func (f *FileSystem) Copy(src, dst string) error {
	if err := f.copyTree(src, dst); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, domain.ErrCopyFailed.Error()), "src", src), "dst", dst)
	}

	want, err := f.hasher.ComputeTreeHash(src)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCopyFailed.Error())
	}
	got, err := f.hasher.ComputeTreeHash(dst)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCopyFailed.Error())
	}
	if want != got {
		return zerr.With(zerr.With(domain.ErrCopyFailed, "src", src), "reason", "copy differs from source")
	}
	return nil
}

func (f *FileSystem) copyTree(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return zerr.With(zerr.New("destination already exists"), "path", dst)
	}

	type dirMode struct {
		path string
		mode fs.FileMode
	}
	var dirs []dirMode

	for entry, err := range f.walker.WalkTree(src) {
		if err != nil {
			return err
		}

		target := filepath.Join(dst, entry.Rel)
		mode := entry.Info.Mode()

		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0o700); err != nil {
				return err
			}
			dirs = append(dirs, dirMode{path: target, mode: mode.Perm()})
		case mode&os.ModeSymlink != 0:
			link, err := os.Readlink(entry.Path)
			if err != nil {
				return err
			}
			if err := os.Symlink(link, target); err != nil {
				return err
			}
		case mode.IsRegular():
			if err := copyFile(entry.Path, target, mode.Perm()); err != nil {
				return err
			}
		default:
			// Sockets, pipes and devices have no place in an environment.
		}
	}

	// Directory modes are applied last so read-only directories can still be filled.
	for _, d := range slices.Backward(dirs) {
		if err := os.Chmod(d.path, d.mode); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, perm)
}

// Rename moves oldPath to newPath.
func (f *FileSystem) Rename(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "failed to rename"), "from", oldPath), "to", newPath)
	}
	return nil
}

// RemoveAll deletes path and everything below it.
func (f *FileSystem) RemoveAll(path string) error {
	// Read-only directories would make RemoveAll fail half way.
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			_ = os.Chmod(p, 0o700) //nolint:gosec // directory is about to be deleted
		}
		return nil
	})
	if err := os.RemoveAll(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove"), "path", path)
	}
	return nil
}

// Relocate rewrites references to the directory from inside the scripts below root so they point to to.
// Scripts created in a staging or shadow environment name that path until the environment is moved.
// Binary files are left untouched.
func (f *FileSystem) Relocate(root, from, to string) error {
	binDir := filepath.Dir(domain.ExecutablePath(root))
	entries, err := os.ReadDir(binDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read scripts directory"), "path", binDir)
	}

	pattern := regexp.MustCompile(regexp.QuoteMeta(filepath.Clean(from)) + `([/\\'"\s:;]|$)`)
	replacement := []byte(escapeReplacement(filepath.Clean(to)) + "${1}")

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := relocateScript(filepath.Join(binDir, e.Name()), pattern, replacement); err != nil {
			return err
		}
	}
	return nil
}

func escapeReplacement(s string) string {
	return strings.ReplaceAll(s, "$", "$$")
}

func relocateScript(path string, pattern *regexp.Regexp, replacement []byte) error {
	data, err := os.ReadFile(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read script"), "path", path)
	}
	if bytes.IndexByte(data, 0) >= 0 || !pattern.Match(data) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat script"), "path", path)
	}

	rewritten := pattern.ReplaceAll(data, replacement)
	if err := os.WriteFile(path, rewritten, info.Mode().Perm()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write script"), "path", path)
	}
	return nil
}
