// Package config holds the particle field configuration and its loading.
//
// Values come from, in increasing priority: DefaultConfig, a YAML file,
// PARTICLEFIELD_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512
	WindowTitle  = "Particle Field - Esc/Q: Quit"

	// Particle density
	DefaultParticles = 100
	NarrowParticles  = 50
	NarrowBreakpoint = 768

	// Motion and appearance
	MaxSpeed   = 0.25
	MinRadius  = 1.0
	MaxRadius  = 3.0
	MinOpacity = 0.1
	MaxOpacity = 0.6

	// Proximity connections
	LinkDistance = 100.0
	LinkOpacity  = 0.1

	ResizeDebounce = 250 * time.Millisecond

	TickRingSize = 120

	TerminalFPS        = 30
	TerminalCellWidth  = 8
	TerminalCellHeight = 16
)

// ColorConfig is the particle color in HSV (hue: 0-360, saturation and value: 0-1).
type ColorConfig struct {
	Hue        float64 `mapstructure:"hue" yaml:"hue"`
	Saturation float64 `mapstructure:"saturation" yaml:"saturation"`
	Value      float64 `mapstructure:"value" yaml:"value"`
}

// FieldConfig drives the particle field renderer.
type FieldConfig struct {
	Particles        int           `mapstructure:"particles" yaml:"particles"`
	NarrowParticles  int           `mapstructure:"narrow_particles" yaml:"narrow_particles"`
	NarrowBreakpoint float64       `mapstructure:"narrow_breakpoint" yaml:"narrow_breakpoint"`
	MaxSpeed         float64       `mapstructure:"max_speed" yaml:"max_speed"`
	MinRadius        float64       `mapstructure:"min_radius" yaml:"min_radius"`
	MaxRadius        float64       `mapstructure:"max_radius" yaml:"max_radius"`
	MinOpacity       float64       `mapstructure:"min_opacity" yaml:"min_opacity"`
	MaxOpacity       float64       `mapstructure:"max_opacity" yaml:"max_opacity"`
	LinkDistance     float64       `mapstructure:"link_distance" yaml:"link_distance"`
	LinkOpacity      float64       `mapstructure:"link_opacity" yaml:"link_opacity"`
	ResizeDebounce   time.Duration `mapstructure:"resize_debounce" yaml:"resize_debounce"`
	Seed             uint64        `mapstructure:"seed" yaml:"seed"` // 0 seeds from the clock
	Color            ColorConfig   `mapstructure:"color" yaml:"color"`
}

// WindowConfig is used by the ebiten host.
type WindowConfig struct {
	Width  int    `mapstructure:"width" yaml:"width"`
	Height int    `mapstructure:"height" yaml:"height"`
	Title  string `mapstructure:"title" yaml:"title"`
	Debug  bool   `mapstructure:"debug" yaml:"debug"`
}

// TerminalConfig is used by the tcell host. A terminal cell maps to
// CellWidth x CellHeight logical units so link distances stay comparable.
type TerminalConfig struct {
	FPS        int `mapstructure:"fps" yaml:"fps"`
	CellWidth  int `mapstructure:"cell_width" yaml:"cell_width"`
	CellHeight int `mapstructure:"cell_height" yaml:"cell_height"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // console or json
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// Config is the top-level configuration.
type Config struct {
	Backend  string         `mapstructure:"backend" yaml:"backend"` // window or terminal
	Field    FieldConfig    `mapstructure:"field" yaml:"field"`
	Window   WindowConfig   `mapstructure:"window" yaml:"window"`
	Terminal TerminalConfig `mapstructure:"terminal" yaml:"terminal"`
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
}

const (
	BackendWindow   = "window"
	BackendTerminal = "terminal"
)

// DefaultField returns the renderer defaults.
func DefaultField() FieldConfig {
	return FieldConfig{
		Particles:        DefaultParticles,
		NarrowParticles:  NarrowParticles,
		NarrowBreakpoint: NarrowBreakpoint,
		MaxSpeed:         MaxSpeed,
		MinRadius:        MinRadius,
		MaxRadius:        MaxRadius,
		MinOpacity:       MinOpacity,
		MaxOpacity:       MaxOpacity,
		LinkDistance:     LinkDistance,
		LinkOpacity:      LinkOpacity,
		ResizeDebounce:   ResizeDebounce,
		Color:            ColorConfig{Hue: 210, Saturation: 0.2, Value: 1.0},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendWindow,
		Field:   DefaultField(),
		Window: WindowConfig{
			Width:  WindowWidth,
			Height: WindowHeight,
			Title:  WindowTitle,
		},
		Terminal: TerminalConfig{
			FPS:        TerminalFPS,
			CellWidth:  TerminalCellWidth,
			CellHeight: TerminalCellHeight,
		},
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "particlefield",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      7,
		},
	}
}

// Validate reports the first invalid field setting.
func (f FieldConfig) Validate() error {
	switch {
	case f.Particles <= 0 || f.NarrowParticles <= 0:
		return errors.New("particle counts must be positive")
	case f.NarrowBreakpoint < 0:
		return errors.New("narrow_breakpoint must not be negative")
	case f.MaxSpeed < 0:
		return errors.New("max_speed must not be negative")
	case f.MinRadius <= 0 || f.MinRadius > f.MaxRadius:
		return fmt.Errorf("radius range [%g, %g] is invalid", f.MinRadius, f.MaxRadius)
	case f.MinOpacity <= 0 || f.MinOpacity > f.MaxOpacity || f.MaxOpacity > 1:
		return fmt.Errorf("opacity range [%g, %g] must lie in (0, 1]", f.MinOpacity, f.MaxOpacity)
	case f.LinkDistance <= 0:
		return errors.New("link_distance must be positive")
	case f.LinkOpacity < 0 || f.LinkOpacity > 1:
		return errors.New("link_opacity must lie in [0, 1]")
	case f.ResizeDebounce < 0:
		return errors.New("resize_debounce must not be negative")
	}
	return nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if c.Backend != BackendWindow && c.Backend != BackendTerminal {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if err := c.Field.Validate(); err != nil {
		return fmt.Errorf("field: %w", err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.New("window: size must be positive")
	}
	if c.Terminal.FPS <= 0 || c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		return errors.New("terminal: fps and cell size must be positive")
	}
	return nil
}
