// Package cas implements the upgrade history store.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/venvup/internal/core/domain"
	"go.trai.ch/venvup/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxEntries bounds the results kept per requirement. Older entries are dropped first.
const maxEntries = 100

var _ ports.HistoryStore = (*Store)(nil)

// Store implements ports.HistoryStore using a file-per-requirement strategy
// under the environments home.
type Store struct{}

// NewStore creates a new HistoryStore.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the recorded results for a requirement, oldest first.
func (s *Store) Get(home, requirement string) ([]domain.UpgradeResult, error) {
	filename := s.getFilename(home, requirement)
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	var results []domain.UpgradeResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "file", filename)
	}

	return results, nil
}

// Put appends the result to the history of its requirement.
func (s *Store) Put(home string, result domain.UpgradeResult) error {
	results, err := s.Get(home, result.Requirement)
	if err != nil {
		return err
	}
	results = append(results, result)
	if len(results) > maxEntries {
		results = results[len(results)-maxEntries:]
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	filename := s.getFilename(home, result.Requirement)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	if err := atomicWriteFile(filename, data); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "file", filename)
	}

	return nil
}

func (s *Store) getFilename(home, requirement string) string {
	hash := sha256.Sum256([]byte(requirement))
	hexHash := hex.EncodeToString(hash[:])
	return filepath.Join(domain.HistoryPath(home), hexHash+".json")
}

func atomicWriteFile(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "history-*.json")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
