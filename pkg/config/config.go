// Package config loads the subsystem configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/softtty/softtty-go/pkg/pty"
)

// Validation errors.
var (
	ErrMaxPtysRange      = errors.New("max_ptys outside [1,4096]")
	ErrPortCapacityRange = errors.New("port_capacity must be positive")
	ErrWriteRoomRange    = errors.New("write_room must be positive")
)

// Config holds the tunable parameters of a subsystem instance.
type Config struct {
	// MaxPtys bounds the number of concurrent pairs.
	MaxPtys int `yaml:"max_ptys"`

	// PortCapacity sizes the per-endpoint receive buffers.
	PortCapacity int `yaml:"port_capacity"`

	// WriteRoom is the static write capacity hint.
	WriteRoom int `yaml:"write_room"`

	// TraceFile is the path of the CBOR trace capture, empty to
	// disable file tracing.
	TraceFile string `yaml:"trace_file"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		MaxPtys:      pty.MaxPtys,
		PortCapacity: 8192,
		WriteRoom:    pty.DefaultWriteRoom,
	}
}

// Parse reads a configuration from YAML bytes. Omitted fields keep
// their defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if c.MaxPtys < 1 || c.MaxPtys > pty.MaxPtys {
		return fmt.Errorf("%w: %d", ErrMaxPtysRange, c.MaxPtys)
	}
	if c.PortCapacity < 1 {
		return fmt.Errorf("%w: %d", ErrPortCapacityRange, c.PortCapacity)
	}
	if c.WriteRoom < 1 {
		return fmt.Errorf("%w: %d", ErrWriteRoomRange, c.WriteRoom)
	}
	return nil
}

// Options converts the configuration into subsystem options. The
// trace logger is supplied by the caller because it usually combines
// several sinks.
func (c Config) Options() pty.Options {
	return pty.Options{
		MaxPtys:      c.MaxPtys,
		PortCapacity: c.PortCapacity,
		WriteRoom:    c.WriteRoom,
	}
}
