package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mkamal/slicebom/internal/config"
)

func TestSubcommandsRegistered(t *testing.T) {
	expected := []string{"export", "slice", "bom", "watch", "init", "version"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range expected {
		assert.True(t, registered[name], "missing subcommand %s", name)
	}
}

func TestInitScaffoldsFiles(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, runInit(initCmd, []string{dir}))

	configPath := filepath.Join(dir, ".slicebom.yml")
	data, err := os.ReadFile(configPath)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "prusa-slicer", cfg.Slicer.Command)
	assert.Equal(t, "Slicer_Stats", cfg.Output.StatsDir)

	profile, err := os.ReadFile(filepath.Join(dir, "config.ini"))
	require.NoError(t, err)
	assert.Contains(t, string(profile), "support_material = 1")
	assert.Contains(t, string(profile), "filament_cost")
}

func TestInitKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".slicebom.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("custom: true\n"), 0644))

	initForce = false
	require.NoError(t, runInit(initCmd, []string{dir}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "custom: true\n", string(data))
}

func TestInitForceOverwrites(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".slicebom.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("custom: true\n"), 0644))

	initForce = true
	defer func() { initForce = false }()
	require.NoError(t, runInit(initCmd, []string{dir}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.NotEqual(t, "custom: true\n", string(data))
}

func TestVersionRejectsUnknownFormat(t *testing.T) {
	versionFormat = "xml"
	defer func() { versionFormat = "text" }()

	err := runVersionCommand(versionCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
