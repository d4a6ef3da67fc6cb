// Package config loads viewer configuration from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
)

// Speed bounds shared by every writer of the animation speed.
const (
	MinSpeed = control.MinSpeed
	MaxSpeed = control.MaxSpeed
)

var (
	errNoViewports     = errors.New("config: at least one viewport is required")
	errBadWindowSize   = errors.New("config: window width and height must be positive")
	errUnknownFileType = errors.New("config: unsupported config file extension")
)

// WindowConfig describes the host window.
type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

// ViewportConfig describes one independently framed viewport.
type ViewportConfig struct {
	Name   string     `toml:"name" yaml:"name"`
	Camera [3]float32 `toml:"camera" yaml:"camera"`
}

// ParticleConfig configures the ambient particle field.
type ParticleConfig struct {
	Count int `toml:"count" yaml:"count"`
}

// GhostConfig configures the translucent ghost rendering mode.
type GhostConfig struct {
	InitialMode bool    `toml:"initial_mode" yaml:"initial_mode"`
	Opacity     float32 `toml:"opacity" yaml:"opacity"`
}

// AnimationConfig configures the procedural idle animation.
type AnimationConfig struct {
	// OnLoad is the animation type applied after a successful asset load ("float", "rotate" or "none").
	OnLoad       string  `toml:"on_load" yaml:"on_load"`
	InitialSpeed float64 `toml:"initial_speed" yaml:"initial_speed"`
}

// VoiceConfig selects the speech recognition backend.
type VoiceConfig struct {
	// Backend is one of "stdin", "websocket" or "none".
	Backend string `toml:"backend" yaml:"backend"`
	// URL is the transcript server address used by the websocket backend.
	URL string `toml:"url" yaml:"url"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Config is the complete viewer configuration.
type Config struct {
	Window    WindowConfig     `toml:"window" yaml:"window"`
	TickRate  float64          `toml:"tick_rate" yaml:"tick_rate"`
	Particles ParticleConfig   `toml:"particles" yaml:"particles"`
	Viewports []ViewportConfig `toml:"viewports" yaml:"viewports"`
	Ghost     GhostConfig      `toml:"ghost" yaml:"ghost"`
	Animation AnimationConfig  `toml:"animation" yaml:"animation"`
	Voice     VoiceConfig      `toml:"voice" yaml:"voice"`
	WatchDir  string           `toml:"watch_dir" yaml:"watch_dir"`
	Log       LogConfig        `toml:"log" yaml:"log"`
	Profile   bool             `toml:"profile" yaml:"profile"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "Ghost Hologram Viewer",
			Width:  1280,
			Height: 960,
		},
		TickRate:  60,
		Particles: ParticleConfig{Count: 20},
		Viewports: []ViewportConfig{
			{Name: "front", Camera: [3]float32{0, 0, 5}},
			{Name: "side", Camera: [3]float32{5, 0, 0}},
			{Name: "top", Camera: [3]float32{0, 5, 0}},
			{Name: "perspective", Camera: [3]float32{-3, 2, 3}},
		},
		Ghost:     GhostConfig{InitialMode: true, Opacity: 0.7},
		Animation: AnimationConfig{OnLoad: "float", InitialSpeed: 1.0},
		Voice:     VoiceConfig{Backend: "stdin"},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file layered over Default. The decoder is chosen by
// extension: .toml, .yaml or .yml. An empty path returns the defaults.
//
// Parameters:
//   - path: the config file path; a leading ~ is expanded to the home directory
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if the file cannot be read, decoded or validated
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	expanded, err := ExpandPath(path)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		return cfg, fmt.Errorf("config: failed to read %s: %w", expanded, err)
	}

	// Viewports from the file replace the defaults rather than extending them.
	defaults := cfg.Viewports
	cfg.Viewports = nil

	switch strings.ToLower(filepath.Ext(expanded)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Default(), fmt.Errorf("%w: %s", errUnknownFileType, filepath.Ext(expanded))
	}
	if err != nil {
		return Default(), fmt.Errorf("config: failed to decode %s: %w", expanded, err)
	}
	if len(cfg.Viewports) == 0 {
		cfg.Viewports = defaults
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate normalizes out-of-range values and rejects unusable configurations.
//
// Returns:
//   - error: error if the configuration cannot be used
func (c *Config) Validate() error {
	if len(c.Viewports) == 0 {
		return errNoViewports
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errBadWindowSize
	}
	if c.TickRate <= 0 {
		c.TickRate = 60
	}
	if c.Particles.Count < 0 {
		c.Particles.Count = 0
	}
	if c.Ghost.Opacity <= 0 || c.Ghost.Opacity > 1 {
		c.Ghost.Opacity = 0.7
	}
	if c.Animation.InitialSpeed == 0 {
		c.Animation.InitialSpeed = 1.0
	}
	c.Animation.InitialSpeed = min(max(c.Animation.InitialSpeed, MinSpeed), MaxSpeed)
	if c.WatchDir != "" {
		dir, err := ExpandPath(c.WatchDir)
		if err != nil {
			return err
		}
		c.WatchDir = dir
	}
	return nil
}

// ExpandPath expands a leading ~ in path to the user's home directory.
//
// Parameters:
//   - path: the path to expand
//
// Returns:
//   - string: the expanded path
//   - error: error if the home directory cannot be determined
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("config: failed to expand %q: %w", path, err)
	}
	return expanded, nil
}
