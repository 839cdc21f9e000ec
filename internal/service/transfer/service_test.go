package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"cirrus/internal/config"
	"cirrus/internal/content"
	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/namespace"
	nsSvc "cirrus/internal/domain/services/namespace"
)

// mockManager implements the parts of the namespace manager used by uploads
type mockManager struct {
	nsSvc.Manager

	mu          sync.Mutex
	checkErr    error
	registerErr error
	files       map[uuid.UUID]*models.File
}

func newMockManager() *mockManager {
	return &mockManager{files: map[uuid.UUID]*models.File{}}
}

func (m *mockManager) CheckFileName(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID, filename string) (string, error) {
	if m.checkErr != nil {
		return "", m.checkErr
	}
	return filepath.Base(filename), nil
}

func (m *mockManager) RegisterFile(ctx context.Context, ownerID uuid.UUID, req *nsSvc.RegisterFileRequest) (*models.File, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	file := &models.File{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		Filename:     req.Filename,
		FolderID:     req.FolderID,
		Size:         req.Size,
		LastModified: req.LastModified,
		ContentRef:   req.ContentRef,
	}
	m.files[file.ID] = file
	return file, nil
}

func (m *mockManager) GetFile(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	file, ok := m.files[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return file, nil
}

func newTestService(t *testing.T, mgr nsSvc.Manager, maxUpload int64) (nsSvc.TransferService, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := t.TempDir()
	store, err := content.NewFilesystemStore(root, content.CompressionZstd, logger)
	if err != nil {
		t.Fatalf("NewFilesystemStore: %v", err)
	}
	limits := config.DefaultLimits()
	if maxUpload > 0 {
		limits.MaxUploadSize = maxUpload
	}
	return NewService(mgr, store, limits, logger), root
}

// blobCount counts committed objects under root
func blobCount(t *testing.T, root string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(filepath.Join(root, "blobs"), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return count
}

var owner = uuid.MustParse(config.PlaceholderOwnerID)

func TestUploadDownload(t *testing.T) {
	mgr := newMockManager()
	svc, root := newTestService(t, mgr, 0)
	ctx := context.Background()
	payload := []byte("hello, cirrus")

	file, err := svc.Upload(ctx, owner, nil, "dir/hello.txt", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if file.Filename != "hello.txt" || file.Size != int64(len(payload)) {
		t.Errorf("file = %+v", file)
	}
	if n := blobCount(t, root); n != 1 {
		t.Errorf("blob count = %d, want 1", n)
	}

	got, rc, err := svc.Download(ctx, owner, file.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if got.ID != file.ID || !bytes.Equal(data, payload) {
		t.Errorf("download mismatch: %q", data)
	}
}

func TestUploadCheckFailsBeforeStoring(t *testing.T) {
	mgr := newMockManager()
	mgr.checkErr = &domain.ConflictError{Message: "exists", ResourceType: "file"}
	svc, root := newTestService(t, mgr, 0)

	_, err := svc.Upload(context.Background(), owner, nil, "a.txt", strings.NewReader("data"))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if n := blobCount(t, root); n != 0 {
		t.Errorf("content stored despite failed check: %d blobs", n)
	}
}

func TestUploadRegisterFailureRemovesContent(t *testing.T) {
	mgr := newMockManager()
	mgr.registerErr = &domain.ConflictError{Message: "lost the race", ResourceType: "file"}
	svc, root := newTestService(t, mgr, 0)

	_, err := svc.Upload(context.Background(), owner, nil, "a.txt", strings.NewReader("data"))
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if n := blobCount(t, root); n != 0 {
		t.Errorf("orphaned content left behind: %d blobs", n)
	}
}

func TestUploadTooLarge(t *testing.T) {
	mgr := newMockManager()
	svc, root := newTestService(t, mgr, 8)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, owner, nil, "exact.bin", strings.NewReader("12345678")); err != nil {
		t.Fatalf("upload at limit: %v", err)
	}

	_, err := svc.Upload(ctx, owner, nil, "big.bin", strings.NewReader("123456789"))
	if !errors.Is(err, domain.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if n := blobCount(t, root); n != 1 {
		t.Errorf("blob count = %d, want 1", n)
	}
}

func TestDownloadMissing(t *testing.T) {
	mgr := newMockManager()
	svc, _ := newTestService(t, mgr, 0)
	ctx := context.Background()

	if _, _, err := svc.Download(ctx, owner, uuid.New()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// metadata pointing at content that does not exist
	dangling := &models.File{ID: uuid.New(), Filename: "x", ContentRef: uuid.NewString()}
	mgr.files[dangling.ID] = dangling
	if _, _, err := svc.Download(ctx, owner, dangling.ID); !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestLimitedReader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   int64
		wantErr bool
	}{
		{"under", "abc", 5, false},
		{"exact", "abcde", 5, false},
		{"over", "abcdef", 5, true},
		{"empty", "", 0, false},
		{"zero limit", "a", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := io.ReadAll(&limitedReader{r: strings.NewReader(tt.input), remaining: tt.limit})
			if gotErr := errors.Is(err, domain.ErrTooLarge); gotErr != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
