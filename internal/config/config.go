// Package config handles loading canopy.toml configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/canopyreview/canopy/geom"
	"github.com/canopyreview/canopy/internal/validation"
	"github.com/canopyreview/canopy/layout"
)

// Config represents the canopy.toml configuration file.
type Config struct {
	Service   Service   `toml:"service"`
	Workspace Workspace `toml:"workspace"`
}

// Service contains backend connection configuration.
type Service struct {
	// URL is the websocket endpoint of the workspace backend,
	// e.g. "ws://127.0.0.1:7317/rpc". Empty means work offline.
	URL string `toml:"url"`

	// TimeoutSeconds bounds each backend call. Zero uses the client default.
	TimeoutSeconds int `toml:"timeout-seconds"`
}

// Workspace contains defaults applied when creating workspaces.
type Workspace struct {
	// Width and Height set the default canvas size. Zero values fall
	// back to the built-in default.
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`

	// Mode is the default layout mode for new workspaces.
	Mode string `toml:"mode"`
}

// Timeout returns the configured service timeout as a duration, or zero.
func (s Service) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// CanvasSize returns the configured default canvas size. Axes left unset
// fall back to fallback, and the result is clamped to the canvas minimum.
func (w Workspace) CanvasSize(fallback geom.Size) geom.Size {
	size := fallback
	if w.Width > 0 {
		size.Width = w.Width
	}
	if w.Height > 0 {
		size.Height = w.Height
	}
	return geom.ClampCanvas(size)
}

// LayoutMode returns the configured default layout mode, or fallback when unset.
// An invalid mode string is an error.
func (w Workspace) LayoutMode(fallback layout.Mode) (layout.Mode, error) {
	if w.Mode == "" {
		return fallback, nil
	}
	mode := layout.Mode(w.Mode)
	if !mode.IsValid() {
		return "", validation.FormatInvalidValueError(errInvalidMode, mode, layout.ValidModes())
	}
	return mode, nil
}

var errInvalidMode = errors.New("invalid layout mode")

// Load loads configuration from dir and the global config file. Returns an
// empty config if no config files exist.
func Load(dir string) (*Config, error) {
	globalPath, err := globalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(dir, "canopy.toml"))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	return merged, nil
}

func globalConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "canopy", "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Service.URL = mergeString(projectMeta.IsDefined("service", "url"), projectCfg.Service.URL, globalCfg.Service.URL)
	merged.Workspace.Mode = mergeString(projectMeta.IsDefined("workspace", "mode"), projectCfg.Workspace.Mode, globalCfg.Workspace.Mode)
	merged.Service.TimeoutSeconds = mergeInt(projectMeta.IsDefined("service", "timeout-seconds"), projectCfg.Service.TimeoutSeconds, globalCfg.Service.TimeoutSeconds)
	merged.Workspace.Width = mergeFloat(projectMeta.IsDefined("workspace", "width"), projectCfg.Workspace.Width, globalCfg.Workspace.Width)
	merged.Workspace.Height = mergeFloat(projectMeta.IsDefined("workspace", "height"), projectCfg.Workspace.Height, globalCfg.Workspace.Height)

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

func mergeInt(projectDefined bool, projectValue, globalValue int) int {
	if projectDefined {
		return projectValue
	}
	return globalValue
}

func mergeFloat(projectDefined bool, projectValue, globalValue float64) float64 {
	if projectDefined {
		return projectValue
	}
	return globalValue
}
