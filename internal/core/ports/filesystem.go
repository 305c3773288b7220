package ports

// FileSystem holds the directory operations used to stage and switch environments.
//
//go:generate go run go.uber.org/mock/mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type FileSystem interface {
	// Exists reports whether a directory is present at path.
	Exists(path string) bool
	// Copy duplicates the tree at src into dst, preserving symlinks and modes.
	Copy(src, dst string) error
	// Rename moves oldPath to newPath.
	Rename(oldPath, newPath string) error
	// RemoveAll deletes path and everything below it. A missing path is not an error.
	RemoveAll(path string) error
	// Relocate rewrites script interpreter lines below root that point into from so they point into to.
	Relocate(root, from, to string) error
}
