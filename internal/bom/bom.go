// Package bom aggregates persisted slicing metrics records into a bill of
// materials, emitted as a CSV table and, best-effort, a PDF document.
//
// The input is either a directory scanned for *_stats.json files or a single
// record file. Files that fail to parse or lack the required fields are
// skipped with a warning; the report is only abandoned when nothing valid
// remains.
package bom

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mkamal/slicebom/internal/config"
	"github.com/mkamal/slicebom/internal/errors"
	"github.com/mkamal/slicebom/internal/logging"
)

const stage = "bom"

// ErrNoRecords is returned when no valid metrics records were found across
// all candidate files, or no candidate files exist at all.
var ErrNoRecords = stderrors.New("no valid metrics records found")

// Item is one aggregated row of the report. String fields default to "N/A"
// when the record lacks them; numeric fields default to zero.
type Item struct {
	PartName        string
	ObjectWeightG   float64
	SupportsWeightG float64
	TotalWeightG    float64
	PriceEGP        float64
	DimensionsMM    string
	PrintTime       string
	PrintSettings   string
}

// Report is the aggregated bill of materials, recomputed fresh on every run.
type Report struct {
	GeneratedAt  time.Time
	Items        []Item
	TotalWeightG float64
	TotalCostEGP float64
}

// Result holds the written report artifact paths. PDFPath is empty when
// document generation was skipped or failed.
type Result struct {
	CSVPath string
	PDFPath string
}

// Aggregator scans metrics records and writes BOM reports.
type Aggregator struct {
	bomDirName string
	logger     logging.Logger
	warnings   *errors.Collector
}

// New builds an Aggregator from the tool configuration.
func New(cfg *config.Config, logger logging.Logger) *Aggregator {
	return &Aggregator{
		bomDirName: cfg.Output.BOMDir,
		logger:     logger.WithStage(stage),
		warnings:   errors.NewCollector(),
	}
}

// Warnings returns the warnings collected by the most recent run.
func (a *Aggregator) Warnings() []*errors.PipelineError {
	return a.warnings.Warnings()
}

// Aggregate resolves path to a set of record files, parses them, and returns
// the sorted report with totals. ErrNoRecords is returned when nothing valid
// was found.
func (a *Aggregator) Aggregate(path string) (*Report, error) {
	a.warnings.Clear()

	files, err := a.resolveRecordFiles(path)
	if err != nil {
		return nil, err
	}

	report := &Report{GeneratedAt: time.Now()}

	for _, file := range files {
		item, ok := a.parseRecordFile(file)
		if !ok {
			continue
		}

		report.Items = append(report.Items, item)
		report.TotalCostEGP += item.PriceEGP
		report.TotalWeightG += item.TotalWeightG
	}

	if len(report.Items) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRecords, path)
	}

	// Unnamed parts carry an empty sort key and therefore sort first.
	sort.SliceStable(report.Items, func(i, j int) bool {
		return report.Items[i].PartName < report.Items[j].PartName
	})

	return report, nil
}

// Generate aggregates path and writes the CSV and PDF reports into a BOM
// folder beside the input. PDF generation is best-effort: a failure there is
// a warning and the CSV result still stands.
func (a *Aggregator) Generate(path string) (*Result, error) {
	report, err := a.Aggregate(path)
	if err != nil {
		return nil, err
	}

	bomDir, baseName, err := a.outputLocation(path)
	if err != nil {
		return nil, err
	}

	result := &Result{CSVPath: filepath.Join(bomDir, baseName+".csv")}
	if err := report.WriteCSV(result.CSVPath); err != nil {
		return nil, errors.Fatal(stage, "", "failed to write CSV report", err)
	}

	pdfPath := filepath.Join(bomDir, baseName+".pdf")
	if err := report.WritePDF(pdfPath); err != nil {
		a.warn("", "PDF generation failed, CSV report was still written", err)
	} else {
		result.PDFPath = pdfPath
	}

	return result, nil
}

// resolveRecordFiles expands path into the candidate record files: all
// *_stats.json files for a directory, or the file itself when it is one.
func (a *Aggregator) resolveRecordFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Fatal(stage, "", fmt.Sprintf("input path not found: %s", path), err)
	}

	if info.IsDir() {
		files, err := filepath.Glob(filepath.Join(path, "*_stats.json"))
		if err != nil {
			return nil, errors.Fatal(stage, "", "failed to scan for record files", err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: no *_stats.json files in %s", ErrNoRecords, path)
		}
		sort.Strings(files)
		return files, nil
	}

	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, errors.Fatal(stage, "", fmt.Sprintf("input file is not a JSON record: %s", path), nil)
	}

	return []string{path}, nil
}

// parseRecordFile reads one record file into an Item. Unparseable files and
// files missing the required fields are skipped with a warning; malformed
// numeric fields default to zero rather than aborting the run.
func (a *Aggregator) parseRecordFile(path string) (Item, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		a.warn(path, "skipping unreadable record file", err)
		return Item{}, false
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		a.warn(path, "skipping record file with invalid JSON", err)
		return Item{}, false
	}

	for _, key := range []string{"part_name", "total_weight_g", "price_egp"} {
		if _, ok := raw[key]; !ok {
			a.warn(path, fmt.Sprintf("skipping record file missing required field %q", key), nil)
			return Item{}, false
		}
	}

	return Item{
		PartName:        asString(raw["part_name"], ""),
		ObjectWeightG:   asFloat(raw["object_weight_g"]),
		SupportsWeightG: asFloat(raw["supports_weight_g"]),
		TotalWeightG:    asFloat(raw["total_weight_g"]),
		PriceEGP:        asFloat(raw["price_egp"]),
		DimensionsMM:    asString(raw["dimensions_mm"], "N/A"),
		PrintTime:       asString(raw["print_time"], "N/A"),
		PrintSettings:   asString(raw["print_settings"], "N/A"),
	}, true
}

// outputLocation derives the BOM folder and timestamped base filename for
// the report artifacts.
func (a *Aggregator) outputLocation(inputPath string) (string, string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return "", "", errors.Fatal(stage, "", fmt.Sprintf("input path not found: %s", inputPath), err)
	}

	var baseDir, source string
	if info.IsDir() {
		baseDir = inputPath
		source = filepath.Base(filepath.Clean(inputPath))
	} else {
		baseDir = filepath.Dir(inputPath)
		source = strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		if strings.HasSuffix(strings.ToLower(source), "_stats") {
			source = source[:len(source)-len("_stats")]
		}
	}

	bomDir := filepath.Join(baseDir, a.bomDirName)
	if err := os.MkdirAll(bomDir, 0755); err != nil {
		return "", "", errors.Fatal(stage, "", fmt.Sprintf("failed to create BOM output directory %s", bomDir), err)
	}

	timestamp := time.Now().Format("20060102_150405")
	return bomDir, fmt.Sprintf("BOM_%s_%s", source, timestamp), nil
}

func (a *Aggregator) warn(part, msg string, cause error) {
	a.warnings.Add(errors.Warning(stage, part, msg, cause))
	a.logger.Warn(context.Background(), cause, msg, "file", part)
}

func asFloat(v interface{}) float64 {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return f
}

func asString(v interface{}, def string) string {
	s, ok := v.(string)
	if !ok || s == "" {
		return def
	}
	return s
}
