package core

import (
	"fmt"
	"time"
)

// Format identifies an image codec.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatWebP    Format = "webp"
	FormatTIFF    Format = "tiff"
	FormatUnknown Format = "unknown"
)

// ColorSpace represents the image colour model as reported by the imaging
// service.  The converter branches on exactly one value: ColorSpaceCMYK.
type ColorSpace string

const (
	ColorSpaceSRGB    ColorSpace = "srgb"
	ColorSpaceGray    ColorSpace = "gray"
	ColorSpaceCMYK    ColorSpace = "cmyk"
	ColorSpaceUnknown ColorSpace = "unknown"
)

// Metadata holds extracted image information without touching pixel data.
type Metadata struct {
	Width       int
	Height      int
	Format      Format
	ColorSpace  ColorSpace
	HasAlpha    bool
	Orientation int   // EXIF orientation tag (1-8), 0 when absent
	SizeBytes   int64 // encoded input size
}

// StatusCode is the sole machine-readable result of a conversion.  The values
// are process exit codes and must stay stable.
type StatusCode int

const (
	// StatusNotCMYK: input not detected as CMYK; nothing written.
	StatusNotCMYK StatusCode = 0
	// StatusFatal: bad arguments, open/transform/encode/write failure, or
	// path-length overflow.  Nothing written.
	StatusFatal StatusCode = 1
	// StatusUnusableEmbeddedICC: embedded profile present but unusable; the
	// backstop profile was substituted and the conversion succeeded.
	StatusUnusableEmbeddedICC StatusCode = 2
	// StatusNoEmbeddedICC: no embedded profile found; the backstop profile
	// was substituted and the conversion succeeded.
	StatusNoEmbeddedICC StatusCode = 3
	// StatusEmbeddedICC: embedded profile present and used.
	StatusEmbeddedICC StatusCode = 4
)

// Converted reports whether the status represents a successful conversion
// with an output file on disk.
func (s StatusCode) Converted() bool {
	return s == StatusUnusableEmbeddedICC || s == StatusNoEmbeddedICC || s == StatusEmbeddedICC
}

// ExitCode returns the process exit code for the status.
func (s StatusCode) ExitCode() int { return int(s) }

func (s StatusCode) String() string {
	switch s {
	case StatusNotCMYK:
		return "probably_not_cmyk"
	case StatusFatal:
		return "fatal_error"
	case StatusUnusableEmbeddedICC:
		return "cmyk_with_unusable_icc"
	case StatusNoEmbeddedICC:
		return "cmyk_no_icc"
	case StatusEmbeddedICC:
		return "cmyk_with_usable_icc"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ProfileSource records which source profile drove a successful transform.
type ProfileSource string

const (
	ProfileSourceNone     ProfileSource = "none"
	ProfileSourceEmbedded ProfileSource = "embedded"
	ProfileSourceBackstop ProfileSource = "backstop"
)

// Intent is the rendering intent policy for out-of-gamut colour mapping.
type Intent string

const (
	IntentPerceptual Intent = "perceptual"
	IntentRelative   Intent = "relative"
	IntentSaturation Intent = "saturation"
	IntentAbsolute   Intent = "absolute"
)

// ParseIntent converts an intent name to an Intent value.
func ParseIntent(s string) (Intent, error) {
	switch s {
	case "perceptual":
		return IntentPerceptual, nil
	case "relative":
		return IntentRelative, nil
	case "saturation":
		return IntentSaturation, nil
	case "absolute":
		return IntentAbsolute, nil
	default:
		return "", fmt.Errorf("unknown rendering intent: %q", s)
	}
}

// TransformOptions carries the parameters of the ICC transform call.
type TransformOptions struct {
	// TargetProfile is the path of the sRGB profile converted into.
	TargetProfile string
	// FallbackProfile is the backstop CMYK profile used when no embedded
	// profile is available.
	FallbackProfile string
	// Intent is the requested rendering intent.
	Intent Intent
}

// EncodeOptions carries JPEG encoding parameters.
type EncodeOptions struct {
	Quality       int // 0-100; 0 = backend default
	StripMetadata bool
	Interlaced    bool
}

// Outcome is returned to the caller after a conversion attempt.  Status is
// the contract; everything else is observability.
type Outcome struct {
	Status        StatusCode
	InputPath     string
	OutputPath    string // set only when a write was attempted or performed
	Meta          Metadata
	ProfileSource ProfileSource

	Duration     time.Duration
	StageTimings map[string]time.Duration
}
