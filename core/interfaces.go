package core

import (
	"context"
	"io"
	"time"
)

// Backend is the external imaging service.  The converter treats decoding,
// colour management, and JPEG compression as black boxes behind this
// interface; implementations live in adapters/.
type Backend interface {
	// Open decodes enough of data to expose metadata and returns a handle.
	// The caller owns the handle and must Close it on every exit path.
	Open(ctx context.Context, data []byte) (Image, error)
}

// Image is an opened image handle owned by the converter for the lifetime of
// one conversion.
type Image interface {
	// Metadata reports header-level information without pixel access.
	Metadata() Metadata
	// HasEmbeddedProfile reports whether an ICC profile is embedded in the
	// image file itself.
	HasEmbeddedProfile() bool
	// StripEmbeddedProfile removes the embedded ICC profile so a subsequent
	// transform falls back to the supplied source profile.
	StripEmbeddedProfile() error
	// TransformToSRGB converts the image into the target sRGB profile,
	// preferring the embedded profile over opts.FallbackProfile.
	TransformToSRGB(opts TransformOptions) error
	// ExportJPEG encodes the (transformed) image as JPEG.
	ExportJPEG(opts EncodeOptions) ([]byte, error)
	// Close releases the handle.  Safe to call more than once.
	Close()
}

// Sink persists the output artifact.  Implementations live in adapters/storage/.
type Sink interface {
	Write(ctx context.Context, path string, r io.Reader) error
	Exists(ctx context.Context, path string) (bool, error)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Hook is an optional observer invoked around conversion stages.
type Hook interface {
	BeforeStage(ctx context.Context, stage string, inputPath string)
	AfterStage(ctx context.Context, stage string, inputPath string, d time.Duration, err error)
}

// MetricsCollector receives performance observations from the converter.
type MetricsCollector interface {
	RecordStageTime(stage string, d time.Duration)
	RecordOutcome(status StatusCode)
	RecordThroughput(bytes int64)
	RecordError(stage string)
}
