package metrics

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportsWeight(t *testing.T) {
	tests := []struct {
		name     string
		totalG   float64
		objectG  float64
		expected float64
	}{
		{"normal subtraction", 125.5, 100.0, 25.5},
		{"equal weights", 50.0, 50.0, 0},
		{"zero weights", 0, 0, 0},
		{"negative difference clamps to zero", 99.8, 100.0, 0},
		{"tiny noise clamps to zero", 100.0, 100.0001, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SupportsWeight(tt.totalG, tt.objectG), 1e-9)
		})
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		name      string
		totalG    float64
		costPerKG float64
		expected  float64
	}{
		{"basic cost", 100.0, 2500.0, 250.0},
		{"rounds to one decimal", 123.4, 2500.0, 308.5},
		{"zero weight", 0, 2500.0, 0},
		{"zero cost yields zero", 500.0, 0, 0},
		{"negative cost yields zero", 500.0, -10.0, 0},
		{"small weight", 1.0, 2500.0, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Price(tt.totalG, tt.costPerKG), 1e-9)
		})
	}
}

func TestFinalizeWithSupports(t *testing.T) {
	r := NewRecord("bracket", "0.2mm layer, 20% infill")
	r.TotalWeightG = 125.54
	r.ObjectWeightG = 100.02

	r.Finalize(2500.0, true)

	assert.InDelta(t, 125.5, r.TotalWeightG, 1e-9)
	assert.InDelta(t, 100.0, r.ObjectWeightG, 1e-9)
	assert.InDelta(t, 25.5, r.SupportsWeightG, 1e-9)
	assert.InDelta(t, 0.1255, r.TotalWeightKG, 1e-9)
	assert.InDelta(t, 313.8, r.PriceEGP, 1e-9)
}

func TestFinalizeWithoutSupports(t *testing.T) {
	r := NewRecord("plate", "0.2mm layer")
	r.ObjectWeightG = 42.0
	r.TotalWeightG = 99.0 // stale value from an earlier run must be overwritten

	r.Finalize(1000.0, false)

	assert.Equal(t, 42.0, r.TotalWeightG)
	assert.Equal(t, 0.0, r.SupportsWeightG)
	assert.InDelta(t, 42.0, r.PriceEGP, 1e-9)
}

func TestFinalizeInvalidCost(t *testing.T) {
	r := NewRecord("gear", "")
	r.ObjectWeightG = 10.0
	r.TotalWeightG = 10.0

	r.Finalize(-5.0, true)

	assert.Equal(t, 0.0, r.PriceEGP)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dims := "10.00 x 20.00 x 30.00"
	r := &Record{
		PartName:         "bracket_v2",
		DimensionsMM:     &dims,
		ObjectWeightG:    100.5,
		SupportsWeightG:  12.3,
		TotalWeightG:     112.8,
		PrintTime:        "2h 15m",
		PriceEGP:         282.0,
		PrintSettings:    "0.2mm layer, 20% infill, supports=auto",
		ObjectWeightKG:   0.1005,
		SupportsWeightKG: 0.0123,
		TotalWeightKG:    0.1128,
	}

	path := filepath.Join(t.TempDir(), "bracket_v2_stats.json")
	require.NoError(t, r.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, r, loaded)
}

func TestLoadMissingOptionalFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal_stats.json")
	data := `{"part_name": "a", "total_weight_g": 5.0, "price_egp": 12.5}`
	require.NoError(t, writeFile(path, data))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a", r.PartName)
	assert.Nil(t, r.DimensionsMM)
	assert.Equal(t, "", r.PrintTime)
	assert.Equal(t, 5.0, r.TotalWeightG)
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken_stats.json")
	require.NoError(t, writeFile(path, "{not json"))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope_stats.json"))
	assert.Error(t, err)
}
