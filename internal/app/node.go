package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/venvup/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/venvup/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/venvup/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/venvup/internal/adapters/hooks"     //nolint:depguard // Wired in app layer
	"go.trai.ch/venvup/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/venvup/internal/adapters/manifest"  //nolint:depguard // Wired in app layer
	"go.trai.ch/venvup/internal/adapters/pip"       //nolint:depguard // Wired in app layer
	"go.trai.ch/venvup/internal/adapters/shell"     //nolint:depguard // Wired in app layer
	"go.trai.ch/venvup/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/venvup/internal/adapters/venv"      //nolint:depguard // Wired in app layer
	"go.trai.ch/venvup/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/venvup/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			manifest.NodeID,
			fs.FileSystemNodeID,
			venv.LocatorNodeID,
			shell.NodeID,
			pip.NodeID,
			hooks.NodeID,
			cas.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	manifests, err := graft.Dep[ports.ManifestReader](ctx)
	if err != nil {
		return nil, err
	}

	filesystem, err := graft.Dep[ports.FileSystem](ctx)
	if err != nil {
		return nil, err
	}

	locator, err := graft.Dep[*venv.Locator](ctx)
	if err != nil {
		return nil, err
	}

	runner, err := graft.Dep[ports.CommandRunner](ctx)
	if err != nil {
		return nil, err
	}

	installer, err := graft.Dep[ports.Installer](ctx)
	if err != nil {
		return nil, err
	}

	postInstaller, err := graft.Dep[ports.PostInstaller](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.HistoryStore](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	watchers, err := graft.Dep[ports.WatcherFactory](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, manifests, filesystem, locator, runner, installer, postInstaller, store, tracer, log, watchers), nil
}
