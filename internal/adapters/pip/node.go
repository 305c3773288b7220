package pip

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/venvup/internal/adapters/logger"
	"go.trai.ch/venvup/internal/adapters/shell"
	"go.trai.ch/venvup/internal/core/ports"
)

// NodeID is the unique identifier for the installer Graft node.
const NodeID graft.ID = "adapter.installer"

func init() {
	graft.Register(graft.Node[ports.Installer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Installer, error) {
			runner, err := graft.Dep[ports.CommandRunner](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewInstaller(runner, log), nil
		},
	})
}
