// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/venvup/internal/adapters/cas"
	_ "go.trai.ch/venvup/internal/adapters/config"
	_ "go.trai.ch/venvup/internal/adapters/fs"
	_ "go.trai.ch/venvup/internal/adapters/hooks"
	_ "go.trai.ch/venvup/internal/adapters/logger"
	_ "go.trai.ch/venvup/internal/adapters/manifest"
	_ "go.trai.ch/venvup/internal/adapters/pip"
	_ "go.trai.ch/venvup/internal/adapters/shell"
	_ "go.trai.ch/venvup/internal/adapters/telemetry"
	_ "go.trai.ch/venvup/internal/adapters/venv"
	_ "go.trai.ch/venvup/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/venvup/internal/app"
)
