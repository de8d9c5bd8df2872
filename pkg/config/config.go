// Package config handles intcode.toml run configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "intcode.toml"

// Config represents an intcode.toml file.
type Config struct {
	Program  string    `toml:"program"`
	Run      Run       `toml:"run"`
	Patches  []Patch   `toml:"patch"`
	Sweep    Sweep     `toml:"sweep"`
	Variants []Variant `toml:"variant"`

	// Dir is the directory containing the file (set at load time).
	Dir string `toml:"-"`
}

// Run configures a single execution.
type Run struct {
	Inputs      []int64 `toml:"inputs"`
	MaxTicks    int     `toml:"max-ticks"`
	Trace       bool    `toml:"trace"`
	DumpOnFault string  `toml:"dump-on-fault"`
}

// Patch overwrites one cell before the run starts.
type Patch struct {
	Address int64 `toml:"address"`
	Value   int64 `toml:"value"`
}

// Sweep configures the variant runner.
type Sweep struct {
	Workers int `toml:"workers"`
}

// Variant is one run of a sweep.
type Variant struct {
	Name    string  `toml:"name"`
	Inputs  []int64 `toml:"inputs"`
	Patches []Patch `toml:"patch"`
}

// Parse decodes configuration text.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.Run.MaxTicks < 0 {
		return nil, fmt.Errorf("run.max-ticks must not be negative, got %d", c.Run.MaxTicks)
	}
	if c.Sweep.Workers < 0 {
		return nil, fmt.Errorf("sweep.workers must not be negative, got %d", c.Sweep.Workers)
	}
	for i, v := range c.Variants {
		if v.Name == "" {
			c.Variants[i].Name = fmt.Sprintf("variant-%d", i)
		}
	}
	return &c, nil
}

// Load parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find an intcode.toml file,
// then loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// ProgramPath returns the configured program path resolved against Dir.
func (c *Config) ProgramPath() string {
	if c.Program == "" || filepath.IsAbs(c.Program) {
		return c.Program
	}
	return filepath.Join(c.Dir, c.Program)
}
