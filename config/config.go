// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Limits     LimitsConfig     `yaml:"limits"`
	Simulation SimulationConfig `yaml:"simulation"`
	Render     RenderConfig     `yaml:"render"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// LimitsConfig holds the capacity maxima a level must fit in.
type LimitsConfig struct {
	MaxRows     int `yaml:"max_rows"`
	MaxCols     int `yaml:"max_cols"`
	MaxTrains   int `yaml:"max_trains"`
	MaxSwitches int `yaml:"max_switches"` // at most 26 (A-Z)
}

// SimulationConfig holds tick scheduling parameters.
type SimulationConfig struct {
	TickInterval float64 `yaml:"tick_interval"` // Seconds between ticks in graphical mode
	MaxTicks     int     `yaml:"max_ticks"`     // Stop after N ticks (0 = until complete)
	MaxSpeed     int     `yaml:"max_speed"`     // Upper bound for the ticks-per-interval multiplier
}

// RenderConfig holds grid drawing parameters.
type RenderConfig struct {
	TileSize  float64 `yaml:"tile_size"`  // Pixels per tile at zoom 1
	ShowGrid  bool    `yaml:"show_grid"`  // Draw cell outlines
	ShowPaths bool    `yaml:"show_paths"` // Draw each train's candidate cell
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfCollectorWindow int `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
	LogEvery            int `yaml:"log_every"`             // Log a progress line every N ticks (0 = never)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	TickDuration time.Duration // Simulation.TickInterval as a duration
	TileSize32   float32       // Render.TileSize as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. Panics if they fail to parse.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects settings the engine cannot honor.
func (c *Config) validate() error {
	l := c.Limits
	if l.MaxRows <= 0 || l.MaxCols <= 0 {
		return fmt.Errorf("limits: grid maxima must be positive, got %dx%d", l.MaxRows, l.MaxCols)
	}
	if l.MaxTrains < 0 {
		return fmt.Errorf("limits: max_trains must not be negative")
	}
	if l.MaxSwitches < 0 || l.MaxSwitches > 26 {
		return fmt.Errorf("limits: max_switches must be in [0,26], got %d", l.MaxSwitches)
	}
	if c.Simulation.TickInterval <= 0 {
		return fmt.Errorf("simulation: tick_interval must be positive")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.TickDuration = time.Duration(c.Simulation.TickInterval * float64(time.Second))
	c.Derived.TileSize32 = float32(c.Render.TileSize)
	if c.Simulation.MaxSpeed < 1 {
		c.Simulation.MaxSpeed = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
