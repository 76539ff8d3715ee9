// Package config loads freezeout run configuration from TOML files.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// GridConfig describes the sampling grid of a run.
type GridConfig struct {
	Origin  []float64 `toml:"origin"`
	Spacing []float64 `toml:"spacing"`
	Shape   []int     `toml:"shape"`
}

// OutputConfig names the files a run writes.
type OutputConfig struct {
	// Surface is the element table path, one centroid+normal row per
	// element.
	Surface string `toml:"surface"`
	// STL, when set on a 3-D run, receives the triangulated surface.
	STL string `toml:"stl"`
}

// Config is a complete run description.
type Config struct {
	// Threshold is the field value the surface is extracted at.
	Threshold float64 `toml:"threshold"`
	// Script is the path of the field-definition script.
	Script string `toml:"script"`
	// Field selects which defined field to extract; empty means the
	// first field the script defines.
	Field string `toml:"field"`
	// Workers is the scan goroutine count; zero means one.
	Workers int `toml:"workers"`

	Grid   GridConfig   `toml:"grid"`
	Output OutputConfig `toml:"output"`
}

// Load reads and validates a run configuration.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the parts of the configuration that can be checked
// without touching the filesystem. Grid consistency beyond slice lengths
// is left to the sampling layer.
func (c *Config) Validate() error {
	if c.Script == "" {
		return fmt.Errorf("config: no script given")
	}
	n := len(c.Grid.Shape)
	if n < 2 || n > 4 {
		return fmt.Errorf("config: grid has %d axes, want 2, 3 or 4", n)
	}
	if len(c.Grid.Origin) != n || len(c.Grid.Spacing) != n {
		return fmt.Errorf("config: grid origin/spacing/shape lengths disagree: %d/%d/%d",
			len(c.Grid.Origin), len(c.Grid.Spacing), n)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers %d, want >= 0", c.Workers)
	}
	if c.Output.STL != "" && n != 3 {
		return fmt.Errorf("config: stl output requires a 3-D grid, got %d-D", n)
	}
	return nil
}
