package ports

import "go.trai.ch/venvup/internal/core/domain"

// HistoryStore defines the interface for recording upgrade results.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type HistoryStore interface {
	// Get returns the recorded results for a requirement, oldest first.
	// Returns nil, nil if nothing was recorded.
	Get(home, requirement string) ([]domain.UpgradeResult, error)

	// Put appends a result to the history of its requirement.
	Put(home string, result domain.UpgradeResult) error
}
