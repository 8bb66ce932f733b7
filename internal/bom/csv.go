package bom

import (
	"encoding/csv"
	"fmt"
	"os"
)

var csvHeader = []string{
	"Part Name",
	"Object Weight (g)",
	"Supports Weight (g)",
	"Total Weight (g)",
	"Price (EGP)",
	"Dimensions (mm)",
	"Print Time",
	"Print Settings",
}

// WriteCSV writes the report as a delimited table: one row per item, weights
// to four decimal places and prices to two, closed by a summary row labeled
// with the part count.
func (r *Report) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, item := range r.Items {
		row := []string{
			item.PartName,
			fmt.Sprintf("%.4f", item.ObjectWeightG),
			fmt.Sprintf("%.4f", item.SupportsWeightG),
			fmt.Sprintf("%.4f", item.TotalWeightG),
			fmt.Sprintf("%.2f", item.PriceEGP),
			item.DimensionsMM,
			item.PrintTime,
			item.PrintSettings,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", item.PartName, err)
		}
	}

	summary := []string{
		fmt.Sprintf("TOTAL (%d parts)", len(r.Items)),
		"",
		"",
		fmt.Sprintf("%.4f", r.TotalWeightG),
		fmt.Sprintf("$%.2f", r.TotalCostEGP),
		"",
		"",
		"",
	}
	if err := w.Write(summary); err != nil {
		return fmt.Errorf("failed to write CSV summary row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}

	return nil
}
