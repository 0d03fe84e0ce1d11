// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen" toml:"screen"`
	Arena      ArenaConfig      `yaml:"arena" toml:"arena"`
	Spatial    SpatialConfig    `yaml:"spatial" toml:"spatial"`
	Population PopulationConfig `yaml:"population" toml:"population"`
	Physics    PhysicsConfig    `yaml:"physics" toml:"physics"`
	Respawn    RespawnConfig    `yaml:"respawn" toml:"respawn"`
	Classes    ClassesConfig    `yaml:"classes" toml:"classes"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" toml:"telemetry"`
	Metrics    MetricsConfig    `yaml:"metrics" toml:"metrics"`
}

// ScreenConfig holds display settings for the windowed viewer.
type ScreenConfig struct {
	Width     int `yaml:"width" toml:"width"`
	Height    int `yaml:"height" toml:"height"`
	TargetFPS int `yaml:"target_fps" toml:"target_fps"`
}

// ArenaConfig holds the simulated arena dimensions in world units.
type ArenaConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// SpatialConfig holds quadtree parameters.
type SpatialConfig struct {
	Capacity int `yaml:"capacity" toml:"capacity"`   // entries per node before subdividing
	MaxDepth int `yaml:"max_depth" toml:"max_depth"` // nodes at this depth never subdivide
}

// PopulationConfig holds population parameters.
type PopulationConfig struct {
	Agents int `yaml:"agents" toml:"agents"`
}

// PhysicsConfig holds motion parameters.
type PhysicsConfig struct {
	MaxSpeed float64 `yaml:"max_speed" toml:"max_speed"` // speed after a collision response
	FixedDT  float64 `yaml:"fixed_dt" toml:"fixed_dt"`   // headless step size in seconds
}

// RespawnConfig holds respawn parameters.
type RespawnConfig struct {
	Interval    float64 `yaml:"interval" toml:"interval"`         // seconds between respawn waves
	SpawnOffset float64 `yaml:"spawn_offset" toml:"spawn_offset"` // distance behind the destroyer
	PerInterval int     `yaml:"per_interval" toml:"per_interval"` // agents revived per wave
}

// ClassConfig describes one kind of agent.
type ClassConfig struct {
	Radius  float64 `yaml:"radius" toml:"radius"`
	Texture string  `yaml:"texture" toml:"texture"` // resource key resolved by the viewer
}

// ClassesConfig holds the per-class parameters.
type ClassesConfig struct {
	Critter   ClassConfig `yaml:"critter" toml:"critter"`
	Destroyer ClassConfig `yaml:"destroyer" toml:"destroyer"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window" toml:"stats_window"` // seconds of simulated time per stats row
	PerfWindow  int     `yaml:"perf_window" toml:"perf_window"`   // ticks averaged by the perf collector
}

// MetricsConfig holds the Prometheus exporter settings.
type MetricsConfig struct {
	Addr string `yaml:"addr" toml:"addr"` // empty disables the exporter
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

// Default returns the embedded defaults.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

// Load loads configuration from a YAML or TOML file, merging with embedded
// defaults, and validates the result. Files ending in .toml are decoded as
// TOML; anything else as YAML. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Decode into the same struct - only overwrites fields present in file
		if strings.EqualFold(filepath.Ext(path), ".toml") {
			if _, err := toml.Decode(string(data), cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case !positive(c.Arena.Width) || !positive(c.Arena.Height):
		return fmt.Errorf("%w: arena size %vx%v must be positive and finite", ErrInvalid, c.Arena.Width, c.Arena.Height)
	case c.Spatial.Capacity <= 0:
		return fmt.Errorf("%w: spatial.capacity %d must be positive", ErrInvalid, c.Spatial.Capacity)
	case c.Spatial.MaxDepth < 0:
		return fmt.Errorf("%w: spatial.max_depth %d must not be negative", ErrInvalid, c.Spatial.MaxDepth)
	case c.Population.Agents < 0:
		return fmt.Errorf("%w: population.agents %d must not be negative", ErrInvalid, c.Population.Agents)
	case !positive(c.Physics.MaxSpeed):
		return fmt.Errorf("%w: physics.max_speed %v must be positive and finite", ErrInvalid, c.Physics.MaxSpeed)
	case !nonNegative(c.Physics.FixedDT):
		return fmt.Errorf("%w: physics.fixed_dt %v must be finite and not negative", ErrInvalid, c.Physics.FixedDT)
	case !positive(c.Respawn.Interval):
		return fmt.Errorf("%w: respawn.interval %v must be positive and finite", ErrInvalid, c.Respawn.Interval)
	case !nonNegative(c.Respawn.SpawnOffset):
		return fmt.Errorf("%w: respawn.spawn_offset %v must be finite and not negative", ErrInvalid, c.Respawn.SpawnOffset)
	case c.Respawn.PerInterval < 0:
		return fmt.Errorf("%w: respawn.per_interval %d must not be negative", ErrInvalid, c.Respawn.PerInterval)
	}

	classes := []struct {
		name string
		cls  ClassConfig
	}{
		{"critter", c.Classes.Critter},
		{"destroyer", c.Classes.Destroyer},
	}
	for _, cl := range classes {
		if !nonNegative(cl.cls.Radius) {
			return fmt.Errorf("%w: classes.%s.radius %v must be finite and not negative", ErrInvalid, cl.name, cl.cls.Radius)
		}
		if 2*cl.cls.Radius > c.Arena.Width || 2*cl.cls.Radius > c.Arena.Height {
			return fmt.Errorf("%w: classes.%s.radius %v does not fit a %vx%v arena",
				ErrInvalid, cl.name, cl.cls.Radius, c.Arena.Width, c.Arena.Height)
		}
	}
	return nil
}

// positive reports whether v is finite and greater than zero. NaN is rejected.
func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

// nonNegative reports whether v is finite and not below zero.
func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }

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
