package errors

import (
	"errors"
	"fmt"
)

// Category classifies error types for targeted handling and diagnostics.
// Every category collapses to the same fatal exit status; the category only
// shapes the human-readable error stream.
type Category string

const (
	CategoryInput     Category = "input"
	CategoryDecode    Category = "decode"
	CategoryTransform Category = "transform"
	CategoryEncode    Category = "encode"
	CategoryStorage   Category = "storage"
	CategoryConfig    Category = "config"
)

// ConversionError is the structured error type used throughout the module.
type ConversionError struct {
	Category Category
	Op       string // operation name
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// New creates a ConversionError.
func New(category Category, op string, err error) *ConversionError {
	return &ConversionError{Category: category, Op: op, Err: err}
}

// Wrap wraps an existing error with context.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(category, op, err)
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Category == cat
	}
	return false
}

// Sentinel errors for common failure modes.
var (
	ErrEmptyInput     = errors.New("empty input")
	ErrPathTooLong    = errors.New("composed output path exceeds the path length limit")
	ErrOutputIsInput  = errors.New("output path resolves to the input path")
	ErrWorkerPoolFull = errors.New("worker pool queue full")
)
