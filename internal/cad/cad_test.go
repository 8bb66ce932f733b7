package cad

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mkamal/slicebom/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestStepOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		docPath string
		want    string
	}{
		{
			name:    "part file",
			docPath: filepath.Join("parts", "bracket.ipt"),
			want:    filepath.Join("parts", "STEP_Exports", "bracket.step"),
		},
		{
			name:    "no extension",
			docPath: filepath.Join("parts", "bracket"),
			want:    filepath.Join("parts", "STEP_Exports", "bracket.step"),
		},
		{
			name:    "dotted base name",
			docPath: filepath.Join("parts", "rev.2.ipt"),
			want:    filepath.Join("parts", "STEP_Exports", "rev.2.step"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stepOutputPath(tt.docPath, "STEP_Exports"))
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "Inventor.Application", opts.Application)
	assert.Equal(t, "3D_PRINTED", opts.PrintedProperty)
	assert.Equal(t, "STEP_Exports", opts.StepDirName)
	assert.Equal(t, 2*time.Second, opts.StartupDelay)
}
