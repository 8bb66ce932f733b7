// Package slicer drives the external slicing tool against a neutral geometry
// file and extracts weight, time, and dimension metrics from its output.
//
// Each part is sliced twice: once with support structures forced on and once
// with them forced off. The object weight comes from the supports-off run and
// the total from the supports-on run; the support-material weight is the
// difference. Both runs load independently derived variants of the shared
// slicer profile.
package slicer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkamal/slicebom/internal/config"
	"github.com/mkamal/slicebom/internal/errors"
	"github.com/mkamal/slicebom/internal/logging"
	"github.com/mkamal/slicebom/internal/metrics"
)

const stage = "slice"

// DefaultCostPerKG is used when the profile carries no filament_cost.
const DefaultCostPerKG = 2500.0

// DefaultSettings describes the slicing configuration when the profile
// carries no slicer_settings string.
const DefaultSettings = "0.2mm layer, 20% infill, supports=auto"

// TempConfigDir is the folder beside the input holding the per-run profile
// variants. It is removed again once slicing finishes.
const TempConfigDir = "temp_configs"

// execFunc runs an external command and returns its combined stdout/stderr.
// Tests substitute this to avoid requiring a slicer binary.
type execFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Runner invokes the slicer and assembles a metrics record per geometry file.
type Runner struct {
	command         string
	profile         *config.Profile
	statsDirName    string
	costPerKG       float64
	supportsEnabled bool
	settings        string
	logger          logging.Logger
	warnings        *errors.Collector
	run             execFunc
}

// NewRunner builds a Runner from the tool configuration and a loaded slicer
// profile. The filament cost comes from the tool configuration when set,
// otherwise from the profile's filament_cost key.
func NewRunner(cfg *config.Config, profile *config.Profile, logger logging.Logger) *Runner {
	cost := cfg.Slicer.CostPerKG
	if cost <= 0 {
		cost = profile.Float("filament_cost", DefaultCostPerKG)
	}

	return &Runner{
		command:         cfg.Slicer.Command,
		profile:         profile,
		statsDirName:    cfg.Output.StatsDir,
		costPerKG:       cost,
		supportsEnabled: profile.Bool("supports_enabled", true),
		settings:        profile.String("slicer_settings", DefaultSettings),
		logger:          logger.WithStage(stage),
		warnings:        errors.NewCollector(),
		run:             runCommand,
	}
}

// Warnings returns the warnings collected by the most recent Slice call.
func (r *Runner) Warnings() []*errors.PipelineError {
	return r.warnings.Warnings()
}

// StatsPath returns where Slice writes the metrics record for stepPath.
func (r *Runner) StatsPath(stepPath string) string {
	base := partName(stepPath)
	return filepath.Join(filepath.Dir(stepPath), r.statsDirName, base+"_stats.json")
}

// Slice runs the slicer against stepPath and returns the assembled metrics
// record. The record is also persisted beside the geometry file under the
// stats folder. A missing input file, a missing profile, or a non-zero
// slicer exit is fatal; extraction misses degrade to zero defaults with
// warnings.
func (r *Runner) Slice(ctx context.Context, stepPath string) (*metrics.Record, error) {
	r.warnings.Clear()

	if _, err := os.Stat(stepPath); err != nil {
		return nil, errors.Fatal(stage, "", fmt.Sprintf("geometry file not found: %s", stepPath), err)
	}

	if _, err := exec.LookPath(r.command); err != nil {
		return nil, errors.Fatal(stage, "", fmt.Sprintf("slicer command %q not found in PATH", r.command), err)
	}

	base := partName(stepPath)
	outputDir := filepath.Dir(stepPath)

	statsDir := filepath.Join(outputDir, r.statsDirName)
	if err := os.MkdirAll(statsDir, 0755); err != nil {
		return nil, errors.Fatal(stage, base, "failed to create stats directory", err)
	}

	statsPath := filepath.Join(statsDir, base+"_stats.json")
	gcodeWith := filepath.Join(statsDir, base+"_with_supports.gcode")
	gcodeWithout := filepath.Join(statsDir, base+"_without_supports.gcode")

	// Variant configs are named deterministically per input directory; two
	// simultaneous runs on the same input would collide. Acknowledged gap.
	tempDir := filepath.Join(outputDir, TempConfigDir)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, errors.Fatal(stage, base, "failed to create temp config directory", err)
	}

	cfgWith := filepath.Join(tempDir, "config_with_supports.ini")
	cfgWithout := filepath.Join(tempDir, "config_without_supports.ini")

	if err := r.profile.WriteSupportVariant(cfgWith, true); err != nil {
		return nil, errors.Fatal(stage, base, "failed to write supports-on profile variant", err)
	}
	if err := r.profile.WriteSupportVariant(cfgWithout, false); err != nil {
		return nil, errors.Fatal(stage, base, "failed to write supports-off profile variant", err)
	}
	defer r.cleanupTempConfigs(ctx, tempDir, cfgWith, cfgWithout)

	record := metrics.NewRecord(base, r.settings)

	if r.supportsEnabled {
		output, err := r.runSlicer(ctx, gcodeWith, cfgWith, stepPath)
		if err != nil {
			return nil, errors.Fatal(stage, base, "slicer failed (with supports)", err)
		}

		run := r.extractRunMetrics(ctx, base, output, gcodeWith)
		record.TotalWeightG = run.weightG
		if run.printTime != "" {
			record.PrintTime = run.printTime
		}
		if run.dimensions != "" {
			dims := run.dimensions
			record.DimensionsMM = &dims
		}
	}

	output, err := r.runSlicer(ctx, gcodeWithout, cfgWithout, stepPath)
	if err != nil {
		return nil, errors.Fatal(stage, base, "slicer failed (without supports)", err)
	}

	run := r.extractRunMetrics(ctx, base, output, gcodeWithout)
	record.ObjectWeightG = run.weightG
	if record.DimensionsMM == nil && run.dimensions != "" {
		dims := run.dimensions
		record.DimensionsMM = &dims
	}
	if !r.supportsEnabled && record.PrintTime == metrics.UnknownPrintTime && run.printTime != "" {
		record.PrintTime = run.printTime
	}

	record.Finalize(r.costPerKG, r.supportsEnabled)

	if r.costPerKG <= 0 {
		r.warn(ctx, base, fmt.Sprintf("invalid filament cost per kg (%v), price set to 0", r.costPerKG), nil)
	}

	if err := record.Save(statsPath); err != nil {
		r.warn(ctx, base, "failed to persist metrics record", err)
	}

	return record, nil
}

// runMetrics is what one slicer invocation yields after extraction.
type runMetrics struct {
	weightG    float64
	printTime  string
	dimensions string
}

func (r *Runner) runSlicer(ctx context.Context, gcodePath, profilePath, stepPath string) (string, error) {
	args := []string{
		"--export-gcode",
		"--output", gcodePath,
		"--load", profilePath,
		"--info",
		stepPath,
	}

	r.logger.Debug(ctx, "Invoking slicer", "command", r.command, "args", strings.Join(args, " "))

	start := time.Now()
	output, err := r.run(ctx, r.command, args...)
	if err != nil {
		r.logger.Error(ctx, err, "Slicer run failed", "duration", time.Since(start).String())
		return string(output), fmt.Errorf("slicer invocation failed: %w", err)
	}

	r.logger.Debug(ctx, "Slicer run completed", "duration", time.Since(start).String())
	return string(output), nil
}

// extractRunMetrics pulls weight and time from the generated G-code and
// dimensions (plus a time fallback) from the console output. Any individual
// miss degrades to a default with a warning.
func (r *Runner) extractRunMetrics(ctx context.Context, part, output, gcodePath string) runMetrics {
	var run runMetrics

	gcodeData, err := os.ReadFile(gcodePath)
	if err != nil {
		r.warn(ctx, part, fmt.Sprintf("failed to read G-code file %s", gcodePath), err)
	} else {
		gcode := string(gcodeData)

		weight, found := ParseWeight(gcode)
		if found {
			run.weightG = weight
		} else {
			r.warn(ctx, part, fmt.Sprintf("weight is zero for %s: 'total filament used [g]' comment not found in G-code", gcodePath), nil)
		}

		if t, ok := ParseDuration(gcode); ok {
			run.printTime = t
		}
	}

	if dims, ok := ParseDimensions(output); ok {
		run.dimensions = dims
	}

	if run.printTime == "" {
		if t, ok := ParseDurationFromOutput(output); ok {
			run.printTime = t
		}
	}

	return run
}

func (r *Runner) cleanupTempConfigs(ctx context.Context, tempDir string, files ...string) {
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			r.warn(ctx, "", fmt.Sprintf("could not remove temp config %s", f), err)
		}
	}
	if err := os.Remove(tempDir); err != nil && !os.IsNotExist(err) {
		r.warn(ctx, "", fmt.Sprintf("could not remove temp config directory %s", tempDir), err)
	}
}

func (r *Runner) warn(ctx context.Context, part, msg string, cause error) {
	r.warnings.Add(errors.Warning(stage, part, msg, cause))
	r.logger.Warn(ctx, cause, msg, "part", part)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func partName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
