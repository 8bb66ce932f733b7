package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProfile = `# printer profile
layer_height = 0.2
fill_density = 20%
filament_cost = 2500.0
supports_enabled = yes
slicer_settings = "0.2mm layer, 20% infill, supports=auto"
support_material = 0
filament_cost = 9999.0
`

func TestProfileString(t *testing.T) {
	p := ProfileFromString(sampleProfile)

	assert.Equal(t, "0.2", p.String("layer_height", ""))
	assert.Equal(t, "fallback", p.String("missing_key", "fallback"))
}

func TestProfileStringUnquotes(t *testing.T) {
	p := ProfileFromString(sampleProfile)
	assert.Equal(t, "0.2mm layer, 20% infill, supports=auto", p.String("slicer_settings", ""))

	single := ProfileFromString("name = 'quoted value'\n")
	assert.Equal(t, "quoted value", single.String("name", ""))
}

func TestProfileFirstMatchWins(t *testing.T) {
	p := ProfileFromString(sampleProfile)
	// filament_cost appears twice; the first occurrence is authoritative.
	assert.Equal(t, 2500.0, p.Float("filament_cost", 0))
}

func TestProfileCaseInsensitiveKeys(t *testing.T) {
	p := ProfileFromString("Filament_Cost = 1800\n")
	assert.Equal(t, 1800.0, p.Float("filament_cost", 0))
}

func TestProfileStripsComments(t *testing.T) {
	p := ProfileFromString("filament_cost = 1234.5 # EGP per kg\n")
	assert.Equal(t, 1234.5, p.Float("filament_cost", 0))
}

func TestProfileFloat(t *testing.T) {
	p := ProfileFromString(sampleProfile)

	assert.Equal(t, 2500.0, p.Float("filament_cost", 0))
	assert.Equal(t, 42.0, p.Float("missing_key", 42.0))
	// Non-numeric value falls back to the default.
	assert.Equal(t, 7.0, p.Float("supports_enabled", 7.0))
}

func TestProfileBool(t *testing.T) {
	tests := []struct {
		value    string
		def      bool
		expected bool
	}{
		{"true", false, true},
		{"yes", false, true},
		{"1", false, true},
		{"on", false, true},
		{"false", true, false},
		{"no", true, false},
		{"0", true, false},
		{"off", true, false},
		{"maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			p := ProfileFromString("flag = " + tt.value + "\n")
			assert.Equal(t, tt.expected, p.Bool("flag", tt.def))
		})
	}
}

func TestProfileKeyMustStartLine(t *testing.T) {
	p := ProfileFromString("# filament_cost = 100\nother_filament_cost = 200\n")
	assert.Equal(t, 0.0, p.Float("filament_cost", 0))
}

func TestSupportVariantReplacesExisting(t *testing.T) {
	p := ProfileFromString("layer_height = 0.2\nsupport_material = 0\n")

	enabled := p.SupportVariant(true)
	assert.Contains(t, enabled, "support_material = 1")
	assert.NotContains(t, enabled, "support_material = 0")

	disabled := p.SupportVariant(false)
	assert.Contains(t, disabled, "support_material = 0")
	assert.Equal(t, 1, strings.Count(disabled, "support_material"))
}

func TestSupportVariantAppendsWhenAbsent(t *testing.T) {
	p := ProfileFromString("layer_height = 0.2\n")

	variant := p.SupportVariant(true)
	assert.Contains(t, variant, "support_material = 1")
	assert.Equal(t, 1, strings.Count(variant, "support_material"))
}

func TestWriteSupportVariant(t *testing.T) {
	p := ProfileFromString("support_material = 1\n")
	dst := filepath.Join(t.TempDir(), "config_without_supports.ini")

	require.NoError(t, p.WriteSupportVariant(dst, false))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "support_material = 0")
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(sampleProfile), 0644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, path, p.Path())
	assert.True(t, p.Bool("supports_enabled", false))
}

func TestLoadProfileMissing(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.ini"))
	assert.Error(t, err)
}
