package slicer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkamal/slicebom/internal/config"
	"github.com/mkamal/slicebom/internal/logging"
	"github.com/mkamal/slicebom/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfile = `layer_height = 0.2
filament_cost = 2500.0
supports_enabled = yes
slicer_settings = "0.2mm layer, 20% infill"
support_material = 0
`

// fakeSlicer simulates a slicer invocation: it writes a canned G-code file to
// the --output path and returns canned console output. Supports-on runs are
// recognized by the loaded profile variant.
type fakeSlicer struct {
	calls       [][]string
	withGcode   string
	noGcode     string
	output      string
	failWith    bool
	failWithout bool
}

func (f *fakeSlicer) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))

	var outputPath, profilePath string
	for i := 0; i < len(args)-1; i++ {
		switch args[i] {
		case "--output":
			outputPath = args[i+1]
		case "--load":
			profilePath = args[i+1]
		}
	}

	withSupports := filepath.Base(profilePath) == "config_with_supports.ini"
	if withSupports && f.failWith {
		return []byte("something broke"), fmt.Errorf("exit status 1")
	}
	if !withSupports && f.failWithout {
		return []byte("something broke"), fmt.Errorf("exit status 1")
	}

	gcode := f.noGcode
	if withSupports {
		gcode = f.withGcode
	}
	if err := os.WriteFile(outputPath, []byte(gcode), 0644); err != nil {
		return nil, err
	}

	return []byte(f.output), nil
}

func newTestRunner(t *testing.T, profileContent string) (*Runner, *fakeSlicer, string) {
	t.Helper()

	dir := t.TempDir()
	stepPath := filepath.Join(dir, "bracket.step")
	require.NoError(t, os.WriteFile(stepPath, []byte("ISO-10303-21;"), 0644))

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	// "echo" exists on PATH everywhere the tests run; the fake intercepts
	// the actual invocation.
	cfg.Slicer.Command = "echo"

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LevelError,
		Output: os.Stderr,
	})

	runner := NewRunner(cfg, config.ProfileFromString(profileContent), logger)

	fake := &fakeSlicer{
		withGcode: "; total filament used [g] = 125.5\n; estimated printing time (normal mode) = 2h 15m\n",
		noGcode:   "; total filament used [g] = 100.0\n; estimated printing time (normal mode) = 1h 50m\n",
		output:    "size (mm): 10.00 x 20.00 x 30.00\n",
	}
	runner.run = fake.run

	return runner, fake, stepPath
}

func TestSliceWithSupports(t *testing.T) {
	runner, fake, stepPath := newTestRunner(t, testProfile)

	record, err := runner.Slice(context.Background(), stepPath)
	require.NoError(t, err)
	require.Len(t, fake.calls, 2)

	assert.Equal(t, "bracket", record.PartName)
	assert.InDelta(t, 125.5, record.TotalWeightG, 1e-9)
	assert.InDelta(t, 100.0, record.ObjectWeightG, 1e-9)
	assert.InDelta(t, 25.5, record.SupportsWeightG, 1e-9)
	assert.Equal(t, "2h 15m", record.PrintTime)
	require.NotNil(t, record.DimensionsMM)
	assert.Equal(t, "10.00 x 20.00 x 30.00", *record.DimensionsMM)
	assert.InDelta(t, 313.8, record.PriceEGP, 1e-9)
	assert.Equal(t, "0.2mm layer, 20% infill", record.PrintSettings)

	// The record is persisted under the stats folder beside the input.
	statsPath := runner.StatsPath(stepPath)
	loaded, err := metrics.Load(statsPath)
	require.NoError(t, err)
	assert.Equal(t, record, loaded)

	// Temp profile variants are removed after the run.
	assert.NoDirExists(t, filepath.Join(filepath.Dir(stepPath), "temp_configs"))
}

func TestSliceSupportsDisabled(t *testing.T) {
	noSupports := `filament_cost = 2500.0
supports_enabled = no
`
	runner, fake, stepPath := newTestRunner(t, noSupports)

	record, err := runner.Slice(context.Background(), stepPath)
	require.NoError(t, err)

	// Only the without-supports run happens.
	require.Len(t, fake.calls, 1)
	assert.InDelta(t, 100.0, record.ObjectWeightG, 1e-9)
	assert.Equal(t, record.ObjectWeightG, record.TotalWeightG)
	assert.Equal(t, 0.0, record.SupportsWeightG)
	assert.Equal(t, "1h 50m", record.PrintTime)
}

func TestSliceSlicerFailureIsFatal(t *testing.T) {
	runner, fake, stepPath := newTestRunner(t, testProfile)
	fake.failWith = true

	_, err := runner.Slice(context.Background(), stepPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "with supports")

	// No record is produced and temp configs are still cleaned up.
	assert.NoFileExists(t, runner.StatsPath(stepPath))
	assert.NoDirExists(t, filepath.Join(filepath.Dir(stepPath), "temp_configs"))
}

func TestSliceSecondRunFailureIsFatal(t *testing.T) {
	runner, fake, stepPath := newTestRunner(t, testProfile)
	fake.failWithout = true

	_, err := runner.Slice(context.Background(), stepPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without supports")
}

func TestSliceMissingInputIsFatal(t *testing.T) {
	runner, _, stepPath := newTestRunner(t, testProfile)

	_, err := runner.Slice(context.Background(), filepath.Join(filepath.Dir(stepPath), "missing.step"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSliceMissingWeightMarkerWarns(t *testing.T) {
	runner, fake, stepPath := newTestRunner(t, testProfile)
	fake.withGcode = "; no weight comment here\n"
	fake.noGcode = "; no weight comment here\n"

	record, err := runner.Slice(context.Background(), stepPath)
	require.NoError(t, err)

	assert.Equal(t, 0.0, record.TotalWeightG)
	assert.Equal(t, 0.0, record.ObjectWeightG)
	assert.Equal(t, 0.0, record.PriceEGP)

	warnings := runner.Warnings()
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].Message, "total filament used")
}

func TestSliceInvalidCostWarns(t *testing.T) {
	zeroCost := `filament_cost = 0
supports_enabled = yes
`
	runner, _, stepPath := newTestRunner(t, zeroCost)
	require.Equal(t, 0.0, runner.costPerKG)

	record, err := runner.Slice(context.Background(), stepPath)
	require.NoError(t, err)
	assert.Equal(t, 0.0, record.PriceEGP)

	found := false
	for _, w := range runner.Warnings() {
		if strings.Contains(w.Message, "invalid filament cost") {
			found = true
		}
	}
	assert.True(t, found, "expected an invalid-cost warning")
}

func TestSliceDimensionsFallback(t *testing.T) {
	runner, fake, stepPath := newTestRunner(t, testProfile)
	// No dimensions from either console output; record carries none.
	fake.output = "Slicing done.\n"

	record, err := runner.Slice(context.Background(), stepPath)
	require.NoError(t, err)
	assert.Nil(t, record.DimensionsMM)
}
