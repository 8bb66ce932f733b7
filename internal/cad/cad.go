// Package cad drives the CAD application over COM to export part geometry
// as STEP files. The live automation only exists on Windows; everywhere else
// Connect reports ErrUnsupported so the rest of the pipeline stays usable.
package cad

import (
	stderrors "errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/mkamal/slicebom/internal/config"
)

const stage = "export"

var (
	// ErrNotPrintable marks documents whose printed-property gate is absent
	// or false. Callers skip these without failing the run.
	ErrNotPrintable = stderrors.New("part is not marked for 3D printing")

	// ErrUnsupported is returned by Connect on platforms without COM.
	ErrUnsupported = stderrors.New("CAD automation is only available on Windows")
)

// Options configures a CAD automation session.
type Options struct {
	// Application is the COM ProgID to attach to or launch.
	Application string
	// PrintedProperty is the user-defined property gating export.
	PrintedProperty string
	// StepDirName is the output folder created beside the source document.
	StepDirName string
	// StartupDelay gives a freshly launched instance time to settle.
	StartupDelay time.Duration
}

// OptionsFromConfig maps the tool configuration onto session options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Application:     cfg.Export.Application,
		PrintedProperty: cfg.Export.PrintedProperty,
		StepDirName:     cfg.Output.StepDir,
		StartupDelay:    cfg.Export.StartupDelay,
	}
}

// stepOutputPath derives <dir>/<stepDirName>/<base>.step for a document.
func stepOutputPath(docPath, stepDirName string) string {
	base := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	return filepath.Join(filepath.Dir(docPath), stepDirName, base+".step")
}
