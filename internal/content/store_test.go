package content

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cirrus/internal/domain"
)

func newTestStore(t *testing.T, compression string) *FilesystemStore {
	t.Helper()
	s, err := NewFilesystemStore(t.TempDir(), compression, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewFilesystemStore: %v", err)
	}
	return s
}

func TestStoreFetchRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("cirrus "), 4096)

	for _, compression := range []string{CompressionNone, CompressionZstd} {
		t.Run(compression, func(t *testing.T) {
			s := newTestStore(t, compression)
			ctx := context.Background()

			ref, size, err := s.Store(ctx, bytes.NewReader(payload))
			if err != nil {
				t.Fatalf("Store: %v", err)
			}
			if size != int64(len(payload)) {
				t.Errorf("size = %d, want %d", size, len(payload))
			}

			rc, err := s.Fetch(ctx, ref)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			defer rc.Close()

			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("content mismatch: got %d bytes", len(got))
			}

			stat, err := os.Stat(s.path(ref))
			if err != nil {
				t.Fatalf("Stat: %v", err)
			}
			if compression == CompressionZstd && stat.Size() >= int64(len(payload)) {
				t.Errorf("expected compressed object, got %d bytes on disk", stat.Size())
			}
		})
	}
}

func TestFetchMissing(t *testing.T) {
	s := newTestStore(t, CompressionNone)

	tests := []struct {
		name string
		ref  string
	}{
		{"unknown uuid", "0b6f3b62-5a0e-4a3c-9d39-6a8f0c6b2e11"},
		{"not a uuid", "../../etc/passwd"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Fetch(context.Background(), tt.ref); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t, CompressionNone)
	ctx := context.Background()

	ref, _, err := s.Store(ctx, strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := s.Delete(ctx, ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, ref); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, err := s.Fetch(ctx, ref); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRelease(t *testing.T) {
	s := newTestStore(t, CompressionNone)
	ctx := context.Background()

	var refs []string
	for i := 0; i < 3; i++ {
		ref, _, err := s.Store(ctx, strings.NewReader("x"))
		if err != nil {
			t.Fatalf("Store: %v", err)
		}
		refs = append(refs, ref)
	}

	if err := s.Release(ctx, append(refs, "missing")); err != nil {
		t.Fatalf("Release: %v", err)
	}
	for _, ref := range refs {
		if _, err := os.Stat(s.path(ref)); !os.IsNotExist(err) {
			t.Errorf("ref %s still on disk", ref)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStoreFailureLeavesNoTempFile(t *testing.T) {
	s := newTestStore(t, CompressionNone)

	_, _, err := s.Store(context.Background(), io.MultiReader(strings.NewReader("partial"), failingReader{}))
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(s.root, tmpDirName))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %d", len(entries))
	}
}

func TestStoreCancelled(t *testing.T) {
	s := newTestStore(t, CompressionNone)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := s.Store(ctx, strings.NewReader("data")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestUnknownCompression(t *testing.T) {
	if _, err := NewFilesystemStore(t.TempDir(), "lz4", slog.Default()); err == nil {
		t.Fatal("expected error for unknown compression")
	}
}
