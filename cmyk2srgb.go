// Package cmyk2srgb detects CMYK images and converts them to sRGB JPEG using
// an embedded ICC profile when present, falling back to a configured backstop
// CMYK profile otherwise.  All decoding, colour management, and compression
// is delegated to an imaging backend (see adapters/vips); this package owns
// only the decision logic and the status-code contract.
package cmyk2srgb

import (
	"context"
	"errors"

	"github.com/prepress/cmyk2srgb/config"
	"github.com/prepress/cmyk2srgb/core"
)

// DefaultConfig returns the production defaults.
func DefaultConfig() config.Config { return config.Default() }

// Tool is the primary entry point.
type Tool struct {
	conv *core.Converter
}

// New creates a fully wired Tool.  backend and sink are the external services
// (imaging and artifact storage); see adapters/.
func New(cfg config.Config, backend core.Backend, sink core.Sink) (*Tool, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, errors.New("cmyk2srgb: backend must not be nil")
	}
	if sink == nil {
		return nil, errors.New("cmyk2srgb: sink must not be nil")
	}
	return &Tool{conv: core.NewConverter(cfg, backend, sink)}, nil
}

// SetLogger attaches a structured logger.
func (t *Tool) SetLogger(l core.Logger) { t.conv.SetLogger(l) }

// SetMetrics attaches a metrics collector.
func (t *Tool) SetMetrics(m core.MetricsCollector) { t.conv.SetMetrics(m) }

// AddHook registers an observer for conversion stage events.
func (t *Tool) AddHook(h core.Hook) { t.conv.AddHook(h) }

// Convert runs the full contract on one input file.  The Outcome's Status is
// the exit-code contract; err is non-nil exactly when Status is StatusFatal.
func (t *Tool) Convert(ctx context.Context, inputPath, outputBase string) (*core.Outcome, error) {
	return t.conv.Convert(ctx, inputPath, outputBase)
}

// Identify reports the input's metadata and embedded-profile presence without
// converting anything.
func (t *Tool) Identify(ctx context.Context, inputPath string) (core.Metadata, bool, error) {
	return t.conv.Identify(ctx, inputPath)
}

// NewPool creates a worker pool for batch conversions.
func (t *Tool) NewPool(workers, queueSize int) *core.Pool {
	return core.NewPool(t.conv, workers, queueSize)
}

// Stats returns lightweight counters: conversions, non-CMYK skips, fatals.
func (t *Tool) Stats() (converted, skipped, failed int64) {
	return t.conv.ConvertedCount(), t.conv.SkippedCount(), t.conv.ErrorCount()
}
