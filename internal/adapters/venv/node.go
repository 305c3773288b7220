package venv

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/venvup/internal/adapters/fs"
	"go.trai.ch/venvup/internal/core/ports"
)

// LocatorNodeID is the unique identifier for the environment locator Graft node.
const LocatorNodeID graft.ID = "adapter.venv.locator"

func init() {
	graft.Register(graft.Node[*Locator]{
		ID:        LocatorNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.FileSystemNodeID},
		Run: func(ctx context.Context) (*Locator, error) {
			filesystem, err := graft.Dep[ports.FileSystem](ctx)
			if err != nil {
				return nil, err
			}
			return NewLocator(filesystem), nil
		},
	})
}
