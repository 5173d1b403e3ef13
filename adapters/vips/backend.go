// Package vips adapts libvips (via govips) as the imaging backend: decoding,
// colour-interpretation queries, ICC transforms, and JPEG encoding all happen
// inside the library.
package vips

import (
	"context"
	"runtime"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/prepress/cmyk2srgb/core"
	apperrors "github.com/prepress/cmyk2srgb/errors"
)

// BackendConfig configures the libvips runtime.
type BackendConfig struct {
	Concurrency  int
	MaxCacheSize int
	ReportLeaks  bool
}

// Backend is the libvips-powered core.Backend.  Safe for concurrent use
// across goroutines.
type Backend struct {
	cfg    BackendConfig
	logger core.Logger
}

// NewBackend initialises libvips and returns a ready Backend.
// Call Shutdown() when the process exits.
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	govips.Startup(&govips.Config{
		ConcurrencyLevel: cfg.Concurrency,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
		CollectStats:     true,
	})
	return &Backend{cfg: cfg}
}

// Shutdown releases all libvips resources.  Call once at process exit.
func (b *Backend) Shutdown() {
	govips.Shutdown()
}

// SetLogger routes libvips' own log stream into l.  Library warnings (for
// example an intent not supported by a profile) surface as diagnostics and
// never influence status codes.
func (b *Backend) SetLogger(l core.Logger) {
	b.logger = l
	govips.LoggingSettings(func(domain string, level govips.LogLevel, msg string) {
		switch level {
		case govips.LogLevelError, govips.LogLevelCritical:
			l.Error("vips", "domain", domain, "message", msg)
		case govips.LogLevelWarning:
			l.Warn("vips", "domain", domain, "message", msg)
		default:
			l.Debug("vips", "domain", domain, "message", msg)
		}
	}, govips.LogLevelWarning)
}

// Open decodes the image header from buffered bytes and returns a handle.
func (b *Backend) Open(_ context.Context, data []byte) (core.Image, error) {
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "vips.open", apperrors.ErrEmptyInput)
	}
	ref, err := govips.NewImageFromBuffer(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.open", err)
	}
	return &Image{ref: ref, logger: b.logger}, nil
}

// Image wraps a *govips.ImageRef behind core.Image.
type Image struct {
	ref    *govips.ImageRef
	logger core.Logger
	closed bool
}

// Metadata reports header-level information.
func (i *Image) Metadata() core.Metadata {
	return core.Metadata{
		Width:       i.ref.Width(),
		Height:      i.ref.Height(),
		Format:      vipsFormatToCore(i.ref.Format()),
		ColorSpace:  vipsInterpretationToColorSpace(i.ref.Interpretation()),
		HasAlpha:    i.ref.HasAlpha(),
		Orientation: i.ref.Orientation(),
	}
}

// HasEmbeddedProfile reports whether the image carries an ICC profile.
func (i *Image) HasEmbeddedProfile() bool {
	return i.ref.HasICCProfile()
}

// StripEmbeddedProfile removes the embedded ICC profile so the next transform
// uses the fallback source profile.
func (i *Image) StripEmbeddedProfile() error {
	if err := i.ref.RemoveICCProfile(); err != nil {
		return apperrors.Wrap(apperrors.CategoryTransform, "vips.strip_icc", err)
	}
	return nil
}

// TransformToSRGB converts into the target profile, preferring the embedded
// profile over the fallback, via vips_icc_transform.
func (i *Image) TransformToSRGB(opts core.TransformOptions) error {
	if i.logger != nil {
		// govips pins the rendering intent inside its transform helper, so
		// the configured intent is advisory here; libvips reports via its
		// log stream when a profile forces a different intent anyway.
		i.logger.Debug("icc transform",
			"target", opts.TargetProfile,
			"fallback", opts.FallbackProfile,
			"intent", string(opts.Intent),
			"embedded", i.ref.HasICCProfile(),
		)
	}
	if err := i.ref.TransformICCProfileWithFallback(opts.TargetProfile, opts.FallbackProfile); err != nil {
		return apperrors.Wrap(apperrors.CategoryTransform, "vips.icc_transform", err)
	}
	return nil
}

// ExportJPEG encodes the image as JPEG.
func (i *Image) ExportJPEG(opts core.EncodeOptions) ([]byte, error) {
	ep := govips.NewJpegExportParams()
	if opts.Quality > 0 {
		ep.Quality = opts.Quality
	}
	ep.StripMetadata = opts.StripMetadata
	ep.Interlace = opts.Interlaced
	buf, _, err := i.ref.ExportJpeg(ep)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.export_jpeg", err)
	}
	return buf, nil
}

// Close releases the underlying vips image.  Safe to call more than once.
func (i *Image) Close() {
	if i.closed {
		return
	}
	i.closed = true
	i.ref.Close()
}

// ─── helpers ──────────────────────────────────────────────────────────────────

func vipsFormatToCore(f govips.ImageType) core.Format {
	switch f {
	case govips.ImageTypeJPEG:
		return core.FormatJPEG
	case govips.ImageTypePNG:
		return core.FormatPNG
	case govips.ImageTypeWEBP:
		return core.FormatWebP
	case govips.ImageTypeTIFF:
		return core.FormatTIFF
	default:
		return core.FormatUnknown
	}
}

func vipsInterpretationToColorSpace(i govips.Interpretation) core.ColorSpace {
	switch i {
	case govips.InterpretationSRGB, govips.InterpretationRGB, govips.InterpretationRGB16:
		return core.ColorSpaceSRGB
	case govips.InterpretationBW:
		return core.ColorSpaceGray
	case govips.InterpretationCMYK:
		return core.ColorSpaceCMYK
	default:
		return core.ColorSpaceUnknown
	}
}

// compile-time interface checks
var _ core.Backend = (*Backend)(nil)
var _ core.Image = (*Image)(nil)
