package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mkamal/slicebom/internal/config"
	"github.com/mkamal/slicebom/internal/slicer"
)

var sliceProfile string

var sliceCmd = &cobra.Command{
	Use:   "slice <step-file>",
	Short: "Slice a STEP file twice and extract weight, time, and size metrics",
	Long: `Slice runs the slicer on the given STEP file with supports enabled and
again with supports disabled, then derives the support material weight from
the difference. The resulting metrics record is written as
Slicer_Stats/<part>_stats.json beside the input and printed to stdout.

The slicer profile supplies filament cost and support settings; the supports
run is skipped entirely when the profile disables support material.

Examples:
  slicebom slice bracket.step
  slicebom slice bracket.step --profile profiles/petg.ini`,
	Args: cobra.ExactArgs(1),
	RunE: runSlice,
}

func init() {
	rootCmd.AddCommand(sliceCmd)

	sliceCmd.Flags().StringVarP(&sliceProfile, "profile", "p", "", "Slicer profile ini (overrides configuration)")
}

func runSlice(cmd *cobra.Command, args []string) error {
	stepPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve input path: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if sliceProfile != "" {
		cfg.Slicer.Profile = sliceProfile
	}

	profile, err := config.LoadProfile(cfg.Slicer.Profile)
	if err != nil {
		return err
	}

	logger := newLogger()
	runner := slicer.NewRunner(cfg, profile, logger)

	fmt.Printf("🔪 Slicing %s\n", filepath.Base(stepPath))

	record, err := runner.Slice(cmd.Context(), stepPath)
	if err != nil {
		return fmt.Errorf("slicing failed: %w", err)
	}

	for _, warning := range runner.Warnings() {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n", warning.Error())
	}

	out, err := record.JSON()
	if err != nil {
		return fmt.Errorf("failed to render metrics: %w", err)
	}
	fmt.Println(out)

	fmt.Printf("✅ Metrics saved to %s\n", runner.StatsPath(stepPath))
	return nil
}
