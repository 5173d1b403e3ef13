package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	apperrors "github.com/prepress/cmyk2srgb/errors"
)

type fakeS3Client struct {
	objects map[string][]byte
	putErr  error
	headErr error
}

func newFakeS3Client() *fakeS3Client {
	return &fakeS3Client{objects: make(map[string][]byte)}
}

func (c *fakeS3Client) PutObject(_ context.Context, bucket, key string, body io.Reader) error {
	if c.putErr != nil {
		return c.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	c.objects[bucket+"/"+key] = data
	return nil
}

func (c *fakeS3Client) HeadObject(_ context.Context, bucket, key string) (bool, error) {
	if c.headErr != nil {
		return false, c.headErr
	}
	_, ok := c.objects[bucket+"/"+key]
	return ok, nil
}

func TestNewS3_Validation(t *testing.T) {
	if _, err := NewS3(nil, "bucket"); err == nil {
		t.Error("nil client accepted")
	}
	if _, err := NewS3(newFakeS3Client(), ""); err == nil {
		t.Error("empty bucket accepted")
	}
	if _, err := NewS3(newFakeS3Client(), "bucket"); err != nil {
		t.Errorf("valid arguments rejected: %v", err)
	}
}

func TestS3_WriteAndExists(t *testing.T) {
	client := newFakeS3Client()
	sink, err := NewS3(client, "prepress-output")
	if err != nil {
		t.Fatalf("NewS3: %v", err)
	}

	payload := []byte("jpeg-bytes")
	if err := sink.Write(context.Background(), "photos/out.jpg", bytes.NewReader(payload)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := client.objects["prepress-output/photos/out.jpg"]; !bytes.Equal(got, payload) {
		t.Errorf("stored object: got %q, want %q", got, payload)
	}

	ok, err := sink.Exists(context.Background(), "photos/out.jpg")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Error("Exists reported false for a stored object")
	}

	ok, err = sink.Exists(context.Background(), "photos/missing.jpg")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("Exists reported true for a missing object")
	}
}

func TestS3_WriteError(t *testing.T) {
	client := newFakeS3Client()
	client.putErr = errors.New("access denied")
	sink, _ := NewS3(client, "bucket")

	err := sink.Write(context.Background(), "key", bytes.NewReader([]byte("x")))
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsCategory(err, apperrors.CategoryStorage) {
		t.Errorf("error category: got %v, want storage", err)
	}
}

func TestS3_CancelledContext(t *testing.T) {
	sink, _ := NewS3(newFakeS3Client(), "bucket")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sink.Write(ctx, "key", bytes.NewReader([]byte("x"))); err == nil {
		t.Error("Write accepted a cancelled context")
	}
	if _, err := sink.Exists(ctx, "key"); err == nil {
		t.Error("Exists accepted a cancelled context")
	}
}
