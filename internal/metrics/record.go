// Package metrics defines the per-part slicing metrics record that the slice
// stage produces and the bom stage consumes. A record is written once per
// geometry file and never mutated afterwards; aggregation reads it back
// read-only.
package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Record holds the slicing metrics for a single part. Weights are grams,
// the kg fields mirror them for downstream consumers that bill per kilogram.
type Record struct {
	PartName         string  `json:"part_name"`
	DimensionsMM     *string `json:"dimensions_mm"`
	ObjectWeightG    float64 `json:"object_weight_g"`
	SupportsWeightG  float64 `json:"supports_weight_g"`
	TotalWeightG     float64 `json:"total_weight_g"`
	PrintTime        string  `json:"print_time"`
	PriceEGP         float64 `json:"price_egp"`
	PrintSettings    string  `json:"print_settings"`
	ObjectWeightKG   float64 `json:"object_weight_kg"`
	SupportsWeightKG float64 `json:"supports_weight_kg"`
	TotalWeightKG    float64 `json:"total_weight_kg"`
}

// UnknownPrintTime is the sentinel used when no print duration could be
// extracted from the slicer output.
const UnknownPrintTime = "Unknown"

// NewRecord returns a record with safe zero defaults for a part.
func NewRecord(partName, printSettings string) *Record {
	return &Record{
		PartName:      partName,
		PrintTime:     UnknownPrintTime,
		PrintSettings: printSettings,
	}
}

// SupportsWeight derives the support-material weight by subtracting the
// object-only weight from the with-supports total. Measurement noise can
// produce a slightly negative difference; that clamps to zero.
func SupportsWeight(totalG, objectG float64) float64 {
	return math.Max(0, totalG-objectG)
}

// Price computes the filament cost for a weight in grams at the given cost
// per kilogram, rounded to one decimal place. A non-positive cost yields 0.
func Price(totalG, costPerKG float64) float64 {
	if costPerKG <= 0 {
		return 0
	}
	return round1(totalG / 1000.0 * costPerKG)
}

// Finalize applies the record invariants once both slicing runs are in:
// support weight by subtraction (or zeroed when supports are disabled),
// weights rounded to one decimal, kg mirrors, and the price.
func (r *Record) Finalize(costPerKG float64, supportsEnabled bool) {
	if supportsEnabled {
		r.SupportsWeightG = SupportsWeight(r.TotalWeightG, r.ObjectWeightG)
	} else {
		r.TotalWeightG = r.ObjectWeightG
		r.SupportsWeightG = 0
	}

	r.TotalWeightG = round1(r.TotalWeightG)
	r.ObjectWeightG = round1(r.ObjectWeightG)
	r.SupportsWeightG = round1(r.SupportsWeightG)

	r.TotalWeightKG = r.TotalWeightG / 1000.0
	r.ObjectWeightKG = r.ObjectWeightG / 1000.0
	r.SupportsWeightKG = r.SupportsWeightG / 1000.0

	r.PriceEGP = Price(r.TotalWeightG, costPerKG)
}

// Save writes the record as indented JSON to path.
func (r *Record) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics record: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metrics record to %s: %w", path, err)
	}

	return nil
}

// Load reads a record previously written by Save. Missing optional fields
// decode to their zero values.
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics record %s: %w", path, err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse metrics record %s: %w", path, err)
	}

	return &r, nil
}

// JSON returns the indented JSON encoding of the record for console output.
func (r *Record) JSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal metrics record: %w", err)
	}
	return string(data), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
