//go:build windows

package cad

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/mkamal/slicebom/internal/errors"
	"github.com/mkamal/slicebom/internal/logging"
)

// Session is an explicit handle on the CAD application. Connect acquires it,
// ExportSTEP uses it for any number of documents, Close releases the COM
// state. All calls must happen on the same goroutine.
type Session struct {
	opts     Options
	logger   logging.Logger
	app      *ole.IDispatch
	launched bool
}

func NewSession(opts Options, logger logging.Logger) *Session {
	return &Session{opts: opts, logger: logger.WithStage(stage)}
}

// Connect attaches to a running CAD instance, or launches a visible one and
// waits for it to settle.
func (s *Session) Connect(ctx context.Context) error {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		return errors.Fatal(stage, "", "failed to initialize COM", err)
	}

	unknown, err := oleutil.GetActiveObject(s.opts.Application)
	if err == nil {
		s.logger.Info(ctx, "connected to running CAD instance",
			"application", s.opts.Application)
	} else {
		s.logger.Info(ctx, "starting new CAD instance",
			"application", s.opts.Application)
		unknown, err = oleutil.CreateObject(s.opts.Application)
		if err != nil {
			ole.CoUninitialize()
			return errors.Fatal(stage, "",
				fmt.Sprintf("failed to start %s", s.opts.Application), err)
		}
		s.launched = true
	}

	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		ole.CoUninitialize()
		return errors.Fatal(stage, "", "failed to obtain CAD dispatch interface", err)
	}
	s.app = app

	if s.launched {
		oleutil.PutProperty(s.app, "Visible", true)
		select {
		case <-time.After(s.opts.StartupDelay):
		case <-ctx.Done():
			s.Close()
			return ctx.Err()
		}
	}
	return nil
}

// ExportSTEP opens docPath, checks the printed-property gate, and saves a
// copy as <base>.step under the STEP output folder beside the source. The
// document is closed without saving in all cases. Returns ErrNotPrintable
// when the gate property is absent or false.
func (s *Session) ExportSTEP(docPath string) (string, error) {
	part := partName(docPath)

	docsVar, err := oleutil.GetProperty(s.app, "Documents")
	if err != nil {
		return "", errors.Fatal(stage, part, "failed to access CAD documents collection", err)
	}
	docs := docsVar.ToIDispatch()
	defer docs.Release()

	docVar, err := oleutil.CallMethod(docs, "Open", docPath)
	if err != nil {
		return "", errors.Fatal(stage, part, fmt.Sprintf("failed to open %s", docPath), err)
	}
	doc := docVar.ToIDispatch()
	defer func() {
		oleutil.CallMethod(doc, "Close", false)
		doc.Release()
	}()

	printable, err := s.printedPropertyValue(doc)
	if err != nil {
		s.logger.Info(context.Background(), "skipping part without printed property",
			"part", part, "property", s.opts.PrintedProperty)
		return "", ErrNotPrintable
	}
	if !printable {
		s.logger.Info(context.Background(), "skipping non-printed part", "part", part)
		return "", ErrNotPrintable
	}

	stepPath := stepOutputPath(docPath, s.opts.StepDirName)
	if err := os.MkdirAll(filepath.Dir(stepPath), 0755); err != nil {
		return "", errors.Fatal(stage, part, "failed to create STEP output directory", err)
	}

	if _, err := oleutil.CallMethod(doc, "SaveAs", stepPath, true); err != nil {
		return "", errors.Fatal(stage, part, fmt.Sprintf("failed to export %s", stepPath), err)
	}

	s.logger.Info(context.Background(), "exported STEP file",
		"part", part, "path", stepPath)
	return stepPath, nil
}

// printedPropertyValue reads the user-defined gate property. An error means
// the property does not exist on this document.
func (s *Session) printedPropertyValue(doc *ole.IDispatch) (bool, error) {
	setsVar, err := oleutil.GetProperty(doc, "PropertySets")
	if err != nil {
		return false, err
	}
	sets := setsVar.ToIDispatch()
	defer sets.Release()

	setVar, err := oleutil.CallMethod(sets, "Item", "Inventor User Defined Properties")
	if err != nil {
		return false, err
	}
	set := setVar.ToIDispatch()
	defer set.Release()

	propVar, err := oleutil.CallMethod(set, "Item", s.opts.PrintedProperty)
	if err != nil {
		return false, err
	}
	prop := propVar.ToIDispatch()
	defer prop.Release()

	valueVar, err := oleutil.GetProperty(prop, "Value")
	if err != nil {
		return false, err
	}
	defer valueVar.Clear()

	value, ok := valueVar.Value().(bool)
	if !ok {
		// Non-boolean markers count as set when truthy-looking.
		return valueVar.Value() != nil && valueVar.Val != 0, nil
	}
	return value, nil
}

// Close releases the application handle and uninitializes COM. Safe to call
// after a failed Connect.
func (s *Session) Close() {
	if s.app != nil {
		s.app.Release()
		s.app = nil
		ole.CoUninitialize()
	}
}

func partName(docPath string) string {
	base := filepath.Base(docPath)
	return base[:len(base)-len(filepath.Ext(base))]
}
