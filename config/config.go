package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the top-level configuration struct.  All fields have safe defaults
// so callers can start with Default() and override only what they need, via
// flags, environment, or direct assignment.
type Config struct {
	// Colour management.
	BackstopCMYKProfile string // CMYK ICC used when no embedded profile is usable
	SRGBProfile         string // target sRGB profile handed to the transform
	Intent              string // rendering intent name; see core.ParseIntent

	// Output artifact.
	Extension     string // appended to the output base name; default "jpg"
	Quality       int    // JPEG quality 0-100; default 99
	MaxPathLength int    // limit for the composed output path; default 4096

	// Input limits / streaming.
	MaxImageBytes int64 // 0 = no limit
	ChunkSize     int   // streaming chunk size in bytes; default 32 KiB

	// Batch worker pool.
	WorkerCount int // default: runtime.NumCPU()
	QueueSize   int // max queued jobs before backpressure; default 256
	JobTimeout  time.Duration

	// libvips runtime.
	VipsConcurrency  int
	VipsMaxCacheSize int
	ReportLeaks      bool

	// Logging.
	LogLevel string // "debug", "info", "warn", "error"
}

// Default returns a Config populated with production defaults.
func Default() Config {
	return Config{
		Intent:        "relative",
		Extension:     "jpg",
		Quality:       99,
		MaxPathLength: 4096, // VIPS_PATH_MAX
		ChunkSize:     32 * 1024,
		QueueSize:     256,
		JobTimeout:    60 * time.Second,
		LogLevel:      "info",
	}
}

// envPrefix is the namespace for environment overrides.
const envPrefix = "CMYK2SRGB_"

// ApplyEnv overlays CMYK2SRGB_* environment variables onto c.  Unset
// variables leave the corresponding field untouched; malformed numeric values
// are reported rather than ignored.
func ApplyEnv(c *Config) error {
	if v := os.Getenv(envPrefix + "BACKSTOP_ICC"); v != "" {
		c.BackstopCMYKProfile = v
	}
	if v := os.Getenv(envPrefix + "SRGB_ICC"); v != "" {
		c.SRGBProfile = v
	}
	if v := os.Getenv(envPrefix + "INTENT"); v != "" {
		c.Intent = v
	}
	if v := os.Getenv(envPrefix + "EXTENSION"); v != "" {
		c.Extension = v
	}
	if v := os.Getenv(envPrefix + "QUALITY"); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sQUALITY: %w", envPrefix, err)
		}
		c.Quality = q
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate returns an error if the configuration is inconsistent.
func Validate(c Config) error {
	if c.Quality < 0 || c.Quality > 100 {
		return errors.New("config: Quality must be between 0 and 100")
	}
	if c.Extension == "" {
		return errors.New("config: Extension must not be empty")
	}
	if c.MaxPathLength <= 0 {
		return errors.New("config: MaxPathLength must be positive")
	}
	if c.ChunkSize <= 0 {
		return errors.New("config: ChunkSize must be positive")
	}
	switch c.Intent {
	case "perceptual", "relative", "saturation", "absolute":
	default:
		return fmt.Errorf("config: unknown rendering intent %q", c.Intent)
	}
	return nil
}
