// Package console wires the smartlp services shared by the CLI commands and
// the TUI.
package console

import (
	"github.com/skykid17/smartlp-sub005/internal/api"
	"github.com/skykid17/smartlp-sub005/internal/core/config"
	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
	"github.com/skykid17/smartlp-sub005/internal/core/kv"
	"github.com/skykid17/smartlp-sub005/internal/store/jsonfile"
)

// BuildInfo holds build-time metadata.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App bundles the configured dependencies. main populates it in the root
// command's Before hook; commands hold a pointer to it from registration.
type App struct {
	Config *config.Config
	Client *api.Client
	KV     kv.KV
	Bus    *eventbus.EventBus
	Build  BuildInfo

	// SelectionFile is the JSON store path when the json backend is in use.
	SelectionFile string
}

// NewApp creates an App.
func NewApp(cfg *config.Config, client *api.Client, store kv.KV, bus *eventbus.EventBus, build BuildInfo) *App {
	app := &App{
		Config: cfg,
		Client: client,
		KV:     store,
		Bus:    bus,
		Build:  build,
	}
	if fs, ok := store.(*jsonfile.KVStore); ok {
		app.SelectionFile = fs.Path()
	}
	return app
}

// Services returns the selection and delete services for the app.
func (a *App) Services() *Service {
	return NewService(a.Config, a.Client, a.KV, a.Bus)
}
