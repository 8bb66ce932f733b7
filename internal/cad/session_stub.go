//go:build !windows

package cad

import (
	"context"

	"github.com/mkamal/slicebom/internal/logging"
)

// Session is the explicit CAD handle. COM automation does not exist on this
// platform, so Connect always reports ErrUnsupported.
type Session struct {
	opts   Options
	logger logging.Logger
}

func NewSession(opts Options, logger logging.Logger) *Session {
	return &Session{opts: opts, logger: logger.WithStage(stage)}
}

func (s *Session) Connect(ctx context.Context) error {
	return ErrUnsupported
}

func (s *Session) ExportSTEP(docPath string) (string, error) {
	return "", ErrUnsupported
}

func (s *Session) Close() {}
