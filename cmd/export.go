package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mkamal/slicebom/internal/cad"
	"github.com/mkamal/slicebom/internal/config"
)

var exportCmd = &cobra.Command{
	Use:   "export <part-file>",
	Short: "Export a CAD part marked for 3D printing as a STEP file",
	Long: `Export connects to the CAD application over COM, opens the given part
document, and saves a STEP copy under STEP_Exports/ beside the source file.

Parts are only exported when their user-defined printed property is set; other
parts are skipped without an error so whole folders can be exported blindly.

Only the usage and file-existence pre-checks fail the command. Once the CAD
application is involved, failures are reported but the exit code stays zero so
a batch over many parts keeps going.

Examples:
  slicebom export bracket.ipt
  slicebom export C:\parts\gear.ipt`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	partPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve part path: %w", err)
	}
	if _, err := os.Stat(partPath); err != nil {
		return fmt.Errorf("file not found: %s", partPath)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger()
	ctx := cmd.Context()

	fmt.Printf("📐 Exporting geometry for %s\n", filepath.Base(partPath))

	session := cad.NewSession(cad.OptionsFromConfig(cfg), logger)
	run := logger.StartToolRun(cfg.Export.Application)

	if err := session.Connect(ctx); err != nil {
		run.EndWithError(ctx, err)
		fmt.Fprintf(os.Stderr, "× Export failed: %v\n", err)
		return nil
	}
	defer session.Close()

	stepPath, err := session.ExportSTEP(partPath)
	switch {
	case errors.Is(err, cad.ErrNotPrintable):
		run.End(ctx)
		fmt.Printf("Skipping non-3D-printed part: %s\n", filepath.Base(partPath))
	case err != nil:
		run.EndWithError(ctx, err)
		fmt.Fprintf(os.Stderr, "× Export failed: %v\n", err)
	default:
		run.End(ctx)
		fmt.Printf("✅ Exported to %s\n", stepPath)
	}

	return nil
}
