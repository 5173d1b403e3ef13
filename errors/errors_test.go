package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestConversionError_Error(t *testing.T) {
	err := New(CategoryTransform, "convert.transform", stderrors.New("boom"))
	msg := err.Error()
	for _, want := range []string{"transform", "convert.transform", "boom"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestConversionError_Unwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(CategoryStorage, "sink.write", cause)
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestWrap_NilPassthrough(t *testing.T) {
	if err := Wrap(CategoryInput, "noop", nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestIsCategory(t *testing.T) {
	err := New(CategoryInput, "convert.read", ErrEmptyInput)
	if !IsCategory(err, CategoryInput) {
		t.Error("input category not detected")
	}
	if IsCategory(err, CategoryEncode) {
		t.Error("wrong category matched")
	}
	if IsCategory(stderrors.New("plain"), CategoryInput) {
		t.Error("plain error matched a category")
	}
}

func TestIsCategory_WrappedDeep(t *testing.T) {
	inner := New(CategoryDecode, "backend.open", stderrors.New("bad magic"))
	outer := Wrap(CategoryInput, "convert.open", inner)
	// errors.As finds the outermost ConversionError first.
	if !IsCategory(outer, CategoryInput) {
		t.Error("outer category not detected")
	}
}

func TestSentinels(t *testing.T) {
	err := New(CategoryInput, "convert.path", ErrPathTooLong)
	if !stderrors.Is(err, ErrPathTooLong) {
		t.Error("ErrPathTooLong not reachable through ConversionError")
	}
}
