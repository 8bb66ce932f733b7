// Package internal contains the core implementation packages for slicebom.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the slicebom CLI tool.
//
// # Package Organization
//
// The internal packages are organized by pipeline stage and shared concern:
//
//   - cad: COM automation exporting CAD parts as STEP geometry
//   - slicer: Double slicer invocation and metrics extraction
//   - bom: Record aggregation into CSV and PDF reports
//   - metrics: The per-part metrics record shared between stages
//   - config: Tool configuration and slicer profile handling
//   - watcher: File system monitoring with debouncing
//   - logging: Structured logging with per-stage context
//   - errors: Two-severity pipeline errors and warning collection
//   - version: Build information for the version command
//
// # Inter-Package Communication
//
// Stages communicate only through files on disk: the exporter writes STEP
// files, the slicer writes *_stats.json records under Slicer_Stats/, and the
// aggregator reads those records back. Each stage can therefore run alone,
// from CI, or from the watcher loop without the others in the process.
//
// # Error Handling
//
// Failures are split into two severities. Fatal errors abort the running
// stage and surface through the command's exit code. Warnings are collected
// per run and degrade the affected value to a safe default, so one bad
// record or one missing G-code marker never loses the rest of a batch.
//
// For detailed documentation, see the individual package documentation.
package internal
