package core

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/prepress/cmyk2srgb/config"
	apperrors "github.com/prepress/cmyk2srgb/errors"
	"github.com/prepress/cmyk2srgb/utils"
)

// Stage names, in execution order.
const (
	StageOpen      = "open"
	StageInspect   = "inspect"
	StageTransform = "transform"
	StageEncode    = "encode"
	StageWrite     = "write"
)

// Room reserved beyond the output base name: the separating period, the
// extension, and a vips-style "[Q=100]" save suffix.  Mirrors the headroom
// libvips requires for filenames handed to its savers.
const qualitySpecifierMax = len("[Q=100]") + 1

// Converter is the driver: it opens the input through the imaging backend,
// branches on the detected colour model, runs the ICC transform, and writes
// the sRGB JPEG through the sink.  Safe for concurrent use.
type Converter struct {
	cfg     config.Config
	backend Backend
	sink    Sink
	hooks   []Hook
	logger  Logger
	metrics MetricsCollector

	convertedCount int64
	skippedCount   int64
	errorCount     int64
}

// NewConverter wires a Converter.  backend and sink must not be nil.
func NewConverter(cfg config.Config, backend Backend, sink Sink) *Converter {
	return &Converter{cfg: cfg, backend: backend, sink: sink}
}

// SetLogger attaches a structured logger.
func (c *Converter) SetLogger(l Logger) { c.logger = l }

// SetMetrics attaches a metrics collector.
func (c *Converter) SetMetrics(m MetricsCollector) { c.metrics = m }

// AddHook registers an observer for conversion stage events.
func (c *Converter) AddHook(h Hook) { c.hooks = append(c.hooks, h) }

// Convert runs the full contract on one input file.  The returned Outcome is
// always non-nil; its Status is the exit-code contract.  err is non-nil
// exactly when Status is StatusFatal.  Non-CMYK detection is a normal no-op
// outcome, not an error.
func (c *Converter) Convert(ctx context.Context, inputPath, outputBase string) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{
		Status:        StatusFatal,
		InputPath:     inputPath,
		ProfileSource: ProfileSourceNone,
		StageTimings:  make(map[string]time.Duration, 5),
	}
	defer func() { out.Duration = time.Since(start) }()

	// --- 1. Open ------------------------------------------------------------
	var (
		raw []byte
		img Image
	)
	err := c.stage(ctx, StageOpen, out, func() error {
		var err error
		raw, err = c.readInput(ctx, inputPath)
		if err != nil {
			return err
		}
		img, err = c.backend.Open(ctx, raw)
		return err
	})
	if err != nil {
		return c.fatal(out, err)
	}
	// Release the handle on every exit path.  img is reassigned when the
	// unusable-embedded retry reopens the image.
	defer func() { img.Close() }()

	// --- 2. Inspect ---------------------------------------------------------
	var embedded bool
	_ = c.stage(ctx, StageInspect, out, func() error {
		out.Meta = img.Metadata()
		out.Meta.SizeBytes = int64(len(raw))
		embedded = img.HasEmbeddedProfile()
		return nil
	})

	if out.Meta.ColorSpace != ColorSpaceCMYK {
		// The common do-nothing path.  Not an error.
		out.Status = StatusNotCMYK
		atomic.AddInt64(&c.skippedCount, 1)
		c.observeOutcome(out)
		return out, nil
	}

	intent, err := ParseIntent(c.cfg.Intent)
	if err != nil {
		return c.fatal(out, apperrors.Wrap(apperrors.CategoryConfig, "convert.intent", err))
	}

	outputPath, err := c.composeOutputPath(inputPath, outputBase)
	if err != nil {
		return c.fatal(out, err)
	}
	out.OutputPath = outputPath

	// --- 3. Transform -------------------------------------------------------
	topts := TransformOptions{
		TargetProfile:   c.cfg.SRGBProfile,
		FallbackProfile: c.cfg.BackstopCMYKProfile,
		Intent:          intent,
	}
	status := StatusNoEmbeddedICC
	if embedded {
		status = StatusEmbeddedICC
	}
	err = c.stage(ctx, StageTransform, out, func() error {
		terr := img.TransformToSRGB(topts)
		if terr == nil {
			return nil
		}
		if !embedded {
			return terr
		}
		// The embedded profile was present but unusable.  Reopen the image,
		// strip the profile, and retry so the backstop is substituted.
		if c.logger != nil {
			c.logger.Warn("embedded profile unusable, substituting backstop",
				"input", inputPath, "error", terr.Error())
		}
		retry, rerr := c.backend.Open(ctx, raw)
		if rerr != nil {
			return terr
		}
		if serr := retry.StripEmbeddedProfile(); serr != nil {
			retry.Close()
			return terr
		}
		if rerr = retry.TransformToSRGB(topts); rerr != nil {
			retry.Close()
			return terr
		}
		img.Close()
		img = retry
		status = StatusUnusableEmbeddedICC
		return nil
	})
	if err != nil {
		if !apperrors.IsCategory(err, apperrors.CategoryTransform) {
			err = apperrors.Wrap(apperrors.CategoryTransform, "convert.transform", err)
		}
		return c.fatal(out, err)
	}

	// --- 4. Encode ----------------------------------------------------------
	var encoded []byte
	err = c.stage(ctx, StageEncode, out, func() error {
		var err error
		encoded, err = img.ExportJPEG(EncodeOptions{Quality: c.cfg.Quality})
		return err
	})
	if err != nil {
		if !apperrors.IsCategory(err, apperrors.CategoryEncode) {
			err = apperrors.Wrap(apperrors.CategoryEncode, "convert.encode", err)
		}
		return c.fatal(out, err)
	}

	// --- 5. Write -----------------------------------------------------------
	err = c.stage(ctx, StageWrite, out, func() error {
		return c.sink.Write(ctx, outputPath, bytes.NewReader(encoded))
	})
	if err != nil {
		if !apperrors.IsCategory(err, apperrors.CategoryStorage) {
			err = apperrors.Wrap(apperrors.CategoryStorage, "convert.write", err)
		}
		return c.fatal(out, err)
	}

	out.Status = status
	switch status {
	case StatusEmbeddedICC:
		out.ProfileSource = ProfileSourceEmbedded
	default:
		out.ProfileSource = ProfileSourceBackstop
	}
	atomic.AddInt64(&c.convertedCount, 1)
	c.observeOutcome(out)
	if c.metrics != nil {
		c.metrics.RecordThroughput(int64(len(encoded)))
	}
	return out, nil
}

// Identify opens the input and reports its metadata and embedded-profile
// presence without converting anything.
func (c *Converter) Identify(ctx context.Context, inputPath string) (Metadata, bool, error) {
	raw, err := c.readInput(ctx, inputPath)
	if err != nil {
		return Metadata{}, false, err
	}
	img, err := c.backend.Open(ctx, raw)
	if err != nil {
		return Metadata{}, false, err
	}
	defer img.Close()

	meta := img.Metadata()
	meta.SizeBytes = int64(len(raw))
	return meta, img.HasEmbeddedProfile(), nil
}

// readInput streams the input file into memory, honouring the configured
// size limit.
func (c *Converter) readInput(ctx context.Context, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryInput, "convert.open", err)
	}
	defer f.Close()

	var r io.Reader = f
	if c.cfg.MaxImageBytes > 0 {
		r = &utils.LimitedReader{R: f, Max: c.cfg.MaxImageBytes}
	}
	buf, err := utils.DrainReader(ctx, r, c.cfg.ChunkSize)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryInput, "convert.read", err)
	}
	raw := utils.CloneBytes(buf.Bytes())
	utils.ReleaseBuffer(buf)
	if len(raw) == 0 {
		return nil, apperrors.New(apperrors.CategoryInput, "convert.read", apperrors.ErrEmptyInput)
	}
	return raw, nil
}

// composeOutputPath validates and assembles <base>.<extension>.  The length
// check runs before anything touches the filesystem, and the output must not
// resolve to the input.
func (c *Converter) composeOutputPath(inputPath, outputBase string) (string, error) {
	ext := c.cfg.Extension
	if len(outputBase) > c.cfg.MaxPathLength-(len(ext)+qualitySpecifierMax) {
		return "", apperrors.New(apperrors.CategoryInput, "convert.path", apperrors.ErrPathTooLong)
	}
	outputPath := outputBase + "." + ext

	absIn, errIn := filepath.Abs(filepath.Clean(inputPath))
	absOut, errOut := filepath.Abs(filepath.Clean(outputPath))
	if errIn == nil && errOut == nil && absIn == absOut {
		return "", apperrors.New(apperrors.CategoryInput, "convert.path", apperrors.ErrOutputIsInput)
	}
	return outputPath, nil
}

// stage runs fn with hook notifications and timing capture.
func (c *Converter) stage(ctx context.Context, name string, out *Outcome, fn func() error) error {
	for _, h := range c.hooks {
		h.BeforeStage(ctx, name, out.InputPath)
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	out.StageTimings[name] = elapsed
	for _, h := range c.hooks {
		h.AfterStage(ctx, name, out.InputPath, elapsed, err)
	}
	return err
}

func (c *Converter) fatal(out *Outcome, err error) (*Outcome, error) {
	out.Status = StatusFatal
	atomic.AddInt64(&c.errorCount, 1)
	if c.logger != nil {
		c.logger.Error("conversion failed", "input", out.InputPath, "error", err.Error())
	}
	c.observeOutcome(out)
	return out, err
}

func (c *Converter) observeOutcome(out *Outcome) {
	if c.metrics != nil {
		c.metrics.RecordOutcome(out.Status)
	}
	if c.logger != nil && out.Status != StatusFatal {
		c.logger.Info("conversion finished",
			"input", out.InputPath,
			"status", out.Status.String(),
			"output", out.OutputPath,
			"profile_source", string(out.ProfileSource),
		)
	}
}

// ConvertedCount returns the total number of successful conversions.
func (c *Converter) ConvertedCount() int64 { return atomic.LoadInt64(&c.convertedCount) }

// SkippedCount returns the total number of non-CMYK no-op outcomes.
func (c *Converter) SkippedCount() int64 { return atomic.LoadInt64(&c.skippedCount) }

// ErrorCount returns the total number of fatal outcomes.
func (c *Converter) ErrorCount() int64 { return atomic.LoadInt64(&c.errorCount) }
