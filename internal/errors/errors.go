// Package errors defines the pipeline's two-severity error model. A warning
// is logged and the affected field falls back to a safe default; a fatal
// error abandons the current record or report and the process exits non-zero.
package errors

import (
	"fmt"
	"sync"
	"time"
)

// Severity represents how a pipeline error is handled
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityFatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// PipelineError carries stage and part context alongside the message
type PipelineError struct {
	Stage     string
	Part      string
	Message   string
	Severity  Severity
	Cause     error
	Timestamp time.Time
}

// Error implements the error interface
func (pe *PipelineError) Error() string {
	prefix := pe.Stage
	if pe.Part != "" {
		prefix = fmt.Sprintf("%s(%s)", pe.Stage, pe.Part)
	}
	if pe.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", prefix, pe.Severity, pe.Message, pe.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", prefix, pe.Severity, pe.Message)
}

// Unwrap returns the underlying cause
func (pe *PipelineError) Unwrap() error {
	return pe.Cause
}

// Warning builds a warning-severity pipeline error
func Warning(stage, part, message string, cause error) *PipelineError {
	return &PipelineError{
		Stage:     stage,
		Part:      part,
		Message:   message,
		Severity:  SeverityWarning,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// Fatal builds a fatal-severity pipeline error
func Fatal(stage, part, message string, cause error) *PipelineError {
	return &PipelineError{
		Stage:     stage,
		Part:      part,
		Message:   message,
		Severity:  SeverityFatal,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// Collector accumulates warnings raised while a stage keeps processing
type Collector struct {
	warnings []*PipelineError
	mutex    sync.RWMutex
}

// NewCollector creates a new warning collector
func NewCollector() *Collector {
	return &Collector{
		warnings: make([]*PipelineError, 0),
	}
}

// Add records a warning. Fatal errors are not collected; they abort the stage.
func (c *Collector) Add(warning *PipelineError) {
	if warning == nil || warning.Severity != SeverityWarning {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.warnings = append(c.warnings, warning)
}

// Warnf records a formatted warning for the given stage and part
func (c *Collector) Warnf(stage, part, format string, args ...interface{}) {
	c.Add(Warning(stage, part, fmt.Sprintf(format, args...), nil))
}

// Warnings returns a copy of the collected warnings
func (c *Collector) Warnings() []*PipelineError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]*PipelineError, len(c.warnings))
	copy(result, c.warnings)
	return result
}

// HasWarnings returns true if any warnings were collected
func (c *Collector) HasWarnings() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.warnings) > 0
}

// Clear drops all collected warnings
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.warnings = c.warnings[:0]
}
