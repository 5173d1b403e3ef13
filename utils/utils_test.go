package utils

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}, formatJPEG},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, formatPNG},
		{"tiff little endian", []byte{'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00}, formatTIFF},
		{"tiff big endian", []byte{'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08}, formatTIFF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), formatWebP},
		{"text", []byte("hello, world"), formatUnknown},
		{"short", []byte{0xFF, 0xD8}, formatUnknown},
		{"empty", nil, formatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data); got != tt.want {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.data, got, tt.want)
			}
		})
	}
}

func TestDrainReader(t *testing.T) {
	payload := strings.Repeat("abcdefgh", 1000)
	buf, err := DrainReader(context.Background(), strings.NewReader(payload), 64)
	if err != nil {
		t.Fatalf("DrainReader: %v", err)
	}
	defer ReleaseBuffer(buf)
	if buf.String() != payload {
		t.Errorf("drained %d bytes, want %d", buf.Len(), len(payload))
	}
}

func TestDrainReader_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := DrainReader(ctx, strings.NewReader("data"), 4); err == nil {
		t.Error("expected context error")
	}
}

func TestDrainReader_DefaultChunkSize(t *testing.T) {
	buf, err := DrainReader(context.Background(), strings.NewReader("x"), 0)
	if err != nil {
		t.Fatalf("DrainReader: %v", err)
	}
	defer ReleaseBuffer(buf)
	if buf.String() != "x" {
		t.Errorf("got %q, want %q", buf.String(), "x")
	}
}

func TestLimitedReader(t *testing.T) {
	lr := &LimitedReader{R: strings.NewReader("0123456789"), Max: 4}
	got, err := io.ReadAll(lr)
	if err != io.ErrUnexpectedEOF {
		t.Errorf("error: got %v, want io.ErrUnexpectedEOF", err)
	}
	if string(got) != "0123" {
		t.Errorf("read %q, want %q", got, "0123")
	}
}

func TestLimitedReader_NoLimit(t *testing.T) {
	lr := &LimitedReader{R: strings.NewReader("0123456789"), Max: 0}
	got, err := io.ReadAll(lr)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "0123456789" {
		t.Errorf("read %q, want full payload", got)
	}
}

func TestCloneBytes(t *testing.T) {
	src := []byte("original")
	dup := CloneBytes(src)
	if !bytes.Equal(src, dup) {
		t.Fatalf("clone differs: %q vs %q", src, dup)
	}
	src[0] = 'X'
	if dup[0] == 'X' {
		t.Error("clone shares backing array with source")
	}
}

func TestBufferPool_LargeBufferNotPooled(t *testing.T) {
	b := AcquireBuffer()
	b.Grow(9 * 1024 * 1024)
	ReleaseBuffer(b) // must not panic, buffer is simply dropped

	b2 := AcquireBuffer()
	if b2.Len() != 0 {
		t.Errorf("acquired buffer not reset: len=%d", b2.Len())
	}
	ReleaseBuffer(b2)
}
