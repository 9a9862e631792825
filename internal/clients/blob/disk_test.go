package blob

import (
	"bytes"
	"context"
	"testing"

	"github.com/studybuddy/studybuddy-backend/internal/platform/logger"
)

func newTestDiskStore(t *testing.T) Store {
	t.Helper()
	t.Setenv("STORAGE_LOCAL_DIR", t.TempDir())

	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	s, err := NewDiskStore(log)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	return s
}

func TestDiskStoreRoundTrip(t *testing.T) {
	s := newTestDiskStore(t)
	ctx := context.Background()

	key := "documents/abc/notes.pdf"
	payload := []byte("%PDF-1.4 fake")

	if err := s.Upload(ctx, key, bytes.NewReader(payload)); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	got, err := s.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Download = %q, want %q", got, payload)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Download(ctx, key); err == nil {
		t.Fatalf("Download after delete: want error, got nil")
	}

	// deleting a missing key is not an error
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	s := newTestDiskStore(t)
	ctx := context.Background()

	for _, key := range []string{"../escape.txt", "/abs/path.txt", "."} {
		if err := s.Upload(ctx, key, bytes.NewReader([]byte("x"))); err == nil {
			t.Fatalf("Upload(%q): want error, got nil", key)
		}
	}
}
