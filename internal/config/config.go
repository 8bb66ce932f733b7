// Package config provides configuration management for the slicebom pipeline
// using Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// Two configuration surfaces exist. The tool configuration (.slicebom.yml,
// SLICEBOM_* environment variables) controls which slicer binary to run,
// which printer profile to load, and where stage outputs land. The slicer
// profile itself is a plain key=value ini handled by Profile in this package;
// filament cost and the supports toggle are read from there unless overridden
// in the tool configuration.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Slicer SlicerConfig `yaml:"slicer" mapstructure:"slicer"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
}

type SlicerConfig struct {
	// Command is the slicer executable name or path, resolved via PATH.
	Command string `yaml:"command" mapstructure:"command"`
	// Profile is the shared slicer configuration ini.
	Profile string `yaml:"profile" mapstructure:"profile"`
	// CostPerKG overrides the filament_cost value from the profile when > 0.
	CostPerKG float64 `yaml:"cost_per_kg" mapstructure:"cost_per_kg"`
}

type ExportConfig struct {
	// Application is the COM ProgID of the CAD application.
	Application string `yaml:"application" mapstructure:"application"`
	// PrintedProperty is the user-defined property marking printable parts.
	PrintedProperty string `yaml:"printed_property" mapstructure:"printed_property"`
	// StartupDelay gives a freshly launched CAD instance time to settle.
	StartupDelay time.Duration `yaml:"startup_delay" mapstructure:"startup_delay"`
}

type OutputConfig struct {
	// StepDir is the folder name for exported STEP files, beside the source part.
	StepDir string `yaml:"step_dir" mapstructure:"step_dir"`
	// StatsDir is the folder name for stats records and G-code, beside the geometry file.
	StatsDir string `yaml:"stats_dir" mapstructure:"stats_dir"`
	// BOMDir is the folder name for generated reports, beside the scanned input.
	BOMDir string `yaml:"bom_dir" mapstructure:"bom_dir"`
}

type WatchConfig struct {
	// Paths are the directories watched for geometry file changes.
	Paths []string `yaml:"paths" mapstructure:"paths"`
	// Debounce groups rapid file events into one pipeline run.
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// Load unmarshals the viper-backed configuration and applies defaults for
// anything left unset.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ApplyDefaults fills in defaults for any field left unset.
func (c *Config) ApplyDefaults() {
	if c.Slicer.Command == "" {
		c.Slicer.Command = "prusa-slicer"
	}
	if c.Slicer.Profile == "" {
		c.Slicer.Profile = "config.ini"
	}
	if c.Export.Application == "" {
		c.Export.Application = "Inventor.Application"
	}
	if c.Export.PrintedProperty == "" {
		c.Export.PrintedProperty = "3D_PRINTED"
	}
	if c.Export.StartupDelay == 0 {
		c.Export.StartupDelay = 2 * time.Second
	}
	if c.Output.StepDir == "" {
		c.Output.StepDir = "STEP_Exports"
	}
	if c.Output.StatsDir == "" {
		c.Output.StatsDir = "Slicer_Stats"
	}
	if c.Output.BOMDir == "" {
		c.Output.BOMDir = "BOM"
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
}

// Validate rejects configurations that cannot drive the pipeline.
func (c *Config) Validate() error {
	if c.Slicer.Command == "" {
		return fmt.Errorf("slicer.command must not be empty")
	}
	if c.Slicer.Profile == "" {
		return fmt.Errorf("slicer.profile must not be empty")
	}
	if c.Slicer.CostPerKG < 0 {
		return fmt.Errorf("slicer.cost_per_kg must not be negative, got %v", c.Slicer.CostPerKG)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}
