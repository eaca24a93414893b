// Package app wires the interpreter core to a graphics backend, a
// configuration file and the host controls.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gochip8/internal/graphics"
	"gochip8/internal/input"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Emulation EmulationConfig `json:"emulation"`
	Input     InputConfig     `json:"input"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Scale      int  `json:"scale"` // Display pixel multiplier
	Fullscreen bool `json:"fullscreen"`
	Resizable  bool `json:"resizable"`
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend    string `json:"backend"` // "ebitengine", "terminal", "headless"
	VSync      bool   `json:"vsync"`
	Filter     string `json:"filter"`     // "nearest", "linear"
	Foreground string `json:"foreground"` // "#RRGGBB"
	Background string `json:"background"` // "#RRGGBB"
	ShowStatus bool   `json:"show_status"`
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	CycleDelayMs       int    `json:"cycle_delay_ms"`        // Minimum time between cycles
	MaxCyclesPerUpdate int    `json:"max_cycles_per_update"` // Catch-up cap per host tick
	StartPaused        bool   `json:"start_paused"`
	HeadlessCycles     int    `json:"headless_cycles"` // Cycles run in headless mode
	Seed               uint64 `json:"seed"`            // Random seed; 0 seeds from entropy
}

// InputConfig contains the keypad mapping, indexed by hex key value
type InputConfig struct {
	Keys input.Layout `json:"keys"`
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	EnableLogging bool `json:"enable_logging"`
	Trace         bool `json:"trace"`
	TraceUnknown  bool `json:"trace_unknown_only"`
	LoopDetection bool `json:"loop_detection"`
	DumpFrames    bool `json:"dump_frames"`
	DumpInterval  int  `json:"dump_interval"` // Headless dump period in frames
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	ROMs        string `json:"roms"`
	Screenshots string `json:"screenshots"`
}

// Defaults used by NewConfig and validate
const (
	DefaultScale              = 10
	DefaultCycleDelayMs       = 3
	DefaultMaxCyclesPerUpdate = 64
	DefaultHeadlessCycles     = 1000
	DefaultDumpInterval       = 60
)

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Scale:      DefaultScale,
			Fullscreen: false,
			Resizable:  true,
		},
		Video: VideoConfig{
			Backend:    string(graphics.BackendEbitengine),
			VSync:      true,
			Filter:     "nearest",
			Foreground: formatColor(graphics.DefaultForeground),
			Background: formatColor(graphics.DefaultBackground),
			ShowStatus: true,
		},
		Emulation: EmulationConfig{
			CycleDelayMs:       DefaultCycleDelayMs,
			MaxCyclesPerUpdate: DefaultMaxCyclesPerUpdate,
			HeadlessCycles:     DefaultHeadlessCycles,
		},
		Input: InputConfig{
			Keys: input.DefaultLayout,
		},
		Debug: DebugConfig{
			LoopDetection: true,
			DumpInterval:  DefaultDumpInterval,
		},
		Paths: PathsConfig{
			ROMs:        "./roms",
			Screenshots: "./screenshots",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// validate clamps out-of-range values to defaults and rejects settings
// that cannot be repaired
func (c *Config) validate() error {
	if c.Window.Scale <= 0 {
		c.Window.Scale = DefaultScale
	}

	switch graphics.BackendType(c.Video.Backend) {
	case graphics.BackendEbitengine, graphics.BackendTerminal, graphics.BackendHeadless:
	default:
		return &ConfigError{Field: "video.backend", Value: c.Video.Backend, Err: fmt.Errorf("unknown backend")}
	}

	if c.Video.Filter != "nearest" && c.Video.Filter != "linear" {
		c.Video.Filter = "nearest"
	}

	if _, err := ParseColor(c.Video.Foreground); err != nil {
		return &ConfigError{Field: "video.foreground", Value: c.Video.Foreground, Err: err}
	}
	if _, err := ParseColor(c.Video.Background); err != nil {
		return &ConfigError{Field: "video.background", Value: c.Video.Background, Err: err}
	}

	if c.Emulation.CycleDelayMs < 0 {
		c.Emulation.CycleDelayMs = DefaultCycleDelayMs
	}

	if c.Emulation.MaxCyclesPerUpdate <= 0 {
		c.Emulation.MaxCyclesPerUpdate = DefaultMaxCyclesPerUpdate
	}

	if c.Emulation.HeadlessCycles <= 0 {
		c.Emulation.HeadlessCycles = DefaultHeadlessCycles
	}

	if c.Debug.DumpInterval < 0 {
		c.Debug.DumpInterval = 0
	}

	return c.validateKeys()
}

// validateKeys checks that every bound key name is known to the graphics
// layer and that no key is bound twice
func (c *Config) validateKeys() error {
	for i, name := range c.Input.Keys {
		if name == "" {
			continue
		}
		if _, ok := graphics.KeyByName(name); !ok {
			return &ConfigError{Field: fmt.Sprintf("input.keys[%X]", i), Value: name, Err: fmt.Errorf("unknown key name")}
		}
	}
	if err := c.Input.Keys.Validate(); err != nil {
		return &ConfigError{Field: "input.keys", Value: c.Input.Keys, Err: err}
	}
	return nil
}

// Colors returns the parsed foreground and background colors, falling back
// to the defaults for unparsable values
func (c *Config) Colors() (foreground, background uint32) {
	foreground, err := ParseColor(c.Video.Foreground)
	if err != nil {
		foreground = graphics.DefaultForeground
	}
	background, err = ParseColor(c.Video.Background)
	if err != nil {
		background = graphics.DefaultBackground
	}
	return foreground, background
}

// GetWindowResolution returns the window resolution based on scale
func (c *Config) GetWindowResolution() (int, int) {
	return graphics.WindowSize(c.Window.Scale, c.Video.ShowStatus)
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/gochip8.json"
}

// ParseColor parses "#RRGGBB" or "RRGGBB" into 0xRRGGBB
func ParseColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("color %q must have six hex digits", s)
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(value), nil
}

func formatColor(color uint32) string {
	return fmt.Sprintf("#%06X", color&0xFFFFFF)
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
