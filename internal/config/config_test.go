package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prusa-slicer", cfg.Slicer.Command)
	assert.Equal(t, "config.ini", cfg.Slicer.Profile)
	assert.Equal(t, 0.0, cfg.Slicer.CostPerKG)
	assert.Equal(t, "Inventor.Application", cfg.Export.Application)
	assert.Equal(t, "3D_PRINTED", cfg.Export.PrintedProperty)
	assert.Equal(t, "STEP_Exports", cfg.Output.StepDir)
	assert.Equal(t, "Slicer_Stats", cfg.Output.StatsDir)
	assert.Equal(t, "BOM", cfg.Output.BOMDir)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("slicer.command", "prusa-slicer-console.exe")
	viper.Set("slicer.profile", "profiles/pla.ini")
	viper.Set("slicer.cost_per_kg", 2500.0)
	viper.Set("output.bom_dir", "Reports")
	viper.Set("watch.paths", []string{"./parts"})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "prusa-slicer-console.exe", cfg.Slicer.Command)
	assert.Equal(t, "profiles/pla.ini", cfg.Slicer.Profile)
	assert.Equal(t, 2500.0, cfg.Slicer.CostPerKG)
	assert.Equal(t, "Reports", cfg.Output.BOMDir)
	assert.Equal(t, []string{"./parts"}, cfg.Watch.Paths)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty slicer command", func(c *Config) { c.Slicer.Command = "" }, true},
		{"empty profile", func(c *Config) { c.Slicer.Profile = "" }, true},
		{"negative cost", func(c *Config) { c.Slicer.CostPerKG = -1 }, true},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, true},
		{"positive cost", func(c *Config) { c.Slicer.CostPerKG = 1800 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.ApplyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
