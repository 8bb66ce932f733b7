package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mkamal/slicebom/internal/bom"
	"github.com/mkamal/slicebom/internal/config"
)

var bomCmd = &cobra.Command{
	Use:   "bom <stats-dir-or-file>",
	Short: "Aggregate metrics records into CSV and PDF bill-of-materials reports",
	Long: `Bom reads the *_stats.json records produced by the slice stage, sorts
them by part name, sums weight and cost, and writes timestamped CSV and PDF
reports into a BOM/ folder beside the input.

Record files that cannot be parsed are skipped with a warning; the command
fails only when no valid record remains.

Examples:
  slicebom bom Slicer_Stats/
  slicebom bom Slicer_Stats/bracket_stats.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBOM,
}

func init() {
	rootCmd.AddCommand(bomCmd)
}

func runBOM(cmd *cobra.Command, args []string) error {
	inputPath, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve input path: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	aggregator := bom.New(cfg, newLogger())

	fmt.Printf("📋 Building bill of materials from %s\n", inputPath)

	result, err := aggregator.Generate(inputPath)
	if err != nil {
		return fmt.Errorf("BOM generation failed: %w", err)
	}

	for _, warning := range aggregator.Warnings() {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n", warning.Error())
	}

	fmt.Printf("✅ CSV report: %s\n", result.CSVPath)
	if result.PDFPath != "" {
		fmt.Printf("✅ PDF report: %s\n", result.PDFPath)
	}
	return nil
}
