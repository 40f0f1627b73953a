// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/rbuild/internal/adapters/config"
	_ "go.trai.ch/rbuild/internal/adapters/logger"
	_ "go.trai.ch/rbuild/internal/adapters/settings"
	_ "go.trai.ch/rbuild/internal/adapters/shell"
	_ "go.trai.ch/rbuild/internal/adapters/versionfile"
	_ "go.trai.ch/rbuild/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/rbuild/internal/app"
)
