package main

import (
	"context"
	"fmt"
	"os"

	"log/slog"

	"github.com/spf13/cobra"

	cmyk2srgb "github.com/prepress/cmyk2srgb"
	"github.com/prepress/cmyk2srgb/adapters/storage"
	"github.com/prepress/cmyk2srgb/adapters/vips"
	"github.com/prepress/cmyk2srgb/config"
	"github.com/prepress/cmyk2srgb/hooks"
)

func init() {
	defaults := config.Default()
	pf := rootCmd.PersistentFlags()
	pf.String("backstop-icc", "", "path of the backstop CMYK ICC profile (env CMYK2SRGB_BACKSTOP_ICC)")
	pf.String("srgb-icc", "", "path of the target sRGB profile (env CMYK2SRGB_SRGB_ICC)")
	pf.String("extension", defaults.Extension, "output file extension")
	pf.Int("quality", defaults.Quality, "JPEG quality (0-100)")
	pf.String("intent", defaults.Intent, "rendering intent (perceptual, relative, saturation, absolute)")
	pf.Int("max-path-length", defaults.MaxPathLength, "limit for the composed output path")
	pf.Int64("max-bytes", 0, "maximum input size in bytes (0 = no limit)")
	pf.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
}

// buildConfig layers defaults, environment, and changed flags.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	pf := cmd.Flags()
	if pf.Changed("backstop-icc") {
		cfg.BackstopCMYKProfile, _ = pf.GetString("backstop-icc")
	}
	if pf.Changed("srgb-icc") {
		cfg.SRGBProfile, _ = pf.GetString("srgb-icc")
	}
	if pf.Changed("extension") {
		cfg.Extension, _ = pf.GetString("extension")
	}
	if pf.Changed("quality") {
		cfg.Quality, _ = pf.GetInt("quality")
	}
	if pf.Changed("intent") {
		cfg.Intent, _ = pf.GetString("intent")
	}
	if pf.Changed("max-path-length") {
		cfg.MaxPathLength, _ = pf.GetInt("max-path-length")
	}
	if pf.Changed("max-bytes") {
		cfg.MaxImageBytes, _ = pf.GetInt64("max-bytes")
	}
	if pf.Changed("log-level") {
		cfg.LogLevel, _ = pf.GetString("log-level")
	}

	return cfg, config.Validate(cfg)
}

func newLogger(level string) *hooks.SlogLogger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	// Diagnostics go to stderr only; stdout and the exit code stay clean.
	return hooks.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// setup wires the tool with the libvips backend and a local sink.  The caller
// must call backend.Shutdown before exiting.
func setup(cmd *cobra.Command) (*cmyk2srgb.Tool, *vips.Backend, *hooks.SlogLogger, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := newLogger(cfg.LogLevel)
	backend := vips.NewBackend(vips.BackendConfig{
		Concurrency:  cfg.VipsConcurrency,
		MaxCacheSize: cfg.VipsMaxCacheSize,
		ReportLeaks:  cfg.ReportLeaks,
	})
	backend.SetLogger(logger)

	tool, err := cmyk2srgb.New(cfg, backend, storage.NewLocal(0))
	if err != nil {
		backend.Shutdown()
		return nil, nil, nil, err
	}
	tool.SetLogger(logger)
	tool.AddHook(hooks.NewLoggingHook(logger))
	return tool, backend, logger, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	tool, backend, _, err := setup(cmd)
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	defer backend.Shutdown()

	outcome, err := tool.Convert(context.Background(), args[0], args[1])
	exitCode = outcome.Status.ExitCode()
	if err != nil {
		// Diagnostics were logged already; the exit code is the contract.
		return err
	}
	return nil
}
