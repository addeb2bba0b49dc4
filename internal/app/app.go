// Package app is the facade the CLI, TUI and HTTP adapter share: it loads
// configuration, picks the control backend and builds controllers.
package app

import (
	"github.com/rs/zerolog"

	"svcboard/internal/config"
)

// Options configures the top-level facade.
type Options struct {
	// ConfigPath points to the optional JSON config file.
	ConfigPath string
	// Config, when set, is used as-is instead of loading ConfigPath.
	Config *config.Config
	Logger zerolog.Logger
}

// App exposes high-level operations that the CLI/TUI can reuse.
type App struct {
	cfgPath string
	cfg     config.Config
	log     zerolog.Logger
}

// New loads the configuration and constructs the facade.
func New(opts Options) (*App, error) {
	var cfg config.Config
	if opts.Config != nil {
		cfg = *opts.Config
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	} else {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return &App{
		cfgPath: opts.ConfigPath,
		cfg:     cfg,
		log:     opts.Logger,
	}, nil
}

// ConfigPath returns the configured config file path (if any).
func (a *App) ConfigPath() string {
	return a.cfgPath
}

// Config returns the effective configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the logger handed to components.
func (a *App) Logger() zerolog.Logger {
	return a.log
}
