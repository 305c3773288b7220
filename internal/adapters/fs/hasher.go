package fs

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// Hasher computes content digests of directory trees.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// ComputeTreeHash digests the layout of a tree: relative paths, modes, symlink targets
// and file contents. Two trees with equal digests are interchangeable copies.
func (h *Hasher) ComputeTreeHash(root string) (uint64, error) {
	hasher := xxhash.New()
	var buf [8]byte

	for entry, err := range h.walker.WalkTree(root) {
		if err != nil {
			return 0, zerr.With(zerr.Wrap(err, "failed to walk tree"), "root", root)
		}

		_, _ = hasher.WriteString(entry.Rel)
		_, _ = hasher.Write([]byte{0})
		binary.LittleEndian.PutUint32(buf[:4], uint32(entry.Info.Mode()))
		_, _ = hasher.Write(buf[:4])

		switch mode := entry.Info.Mode(); {
		case mode&os.ModeSymlink != 0:
			target, err := os.Readlink(entry.Path)
			if err != nil {
				return 0, zerr.With(zerr.Wrap(err, "failed to read symlink"), "path", entry.Path)
			}
			_, _ = hasher.WriteString(target)
		case mode.IsRegular():
			sum, err := h.ComputeFileHash(entry.Path)
			if err != nil {
				return 0, err
			}
			binary.LittleEndian.PutUint64(buf[:], sum)
			_, _ = hasher.Write(buf[:])
		}
		_, _ = hasher.Write([]byte{0})
	}

	return hasher.Sum64(), nil
}
