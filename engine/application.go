package engine

import (
	"errors"
	"io/fs"

	"github.com/spaghettifunk/lumen/engine/core"
)

type ApplicationConfig struct {
	// The application name used in windowing, overrides the config file title if set.
	Name string
	// Path of the TOML configuration. A missing file falls back to the defaults.
	ConfigPath string
	// Overrides applied after the configuration is loaded, if applicable.
	Configure func(cfg *core.Config)
}

// loadConfig reads the configuration file and applies the application overrides.
func (ac *ApplicationConfig) loadConfig() (*core.Config, error) {
	cfg := core.DefaultConfig()
	if ac.ConfigPath != "" {
		loaded, err := core.LoadConfig(ac.ConfigPath)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist):
			core.LogWarn("config %s not found, using defaults", ac.ConfigPath)
		default:
			return nil, err
		}
	}
	if ac.Name != "" {
		cfg.Window.Title = ac.Name
	}
	if ac.Configure != nil {
		ac.Configure(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
