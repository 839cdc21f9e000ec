package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"cirrus/internal/domain"
	models "cirrus/internal/domain/models/namespace"
	"cirrus/internal/domain/repositories"
	nsRepo "cirrus/internal/domain/repositories/namespace"
)

// These tests need a disposable database:
//
//	CIRRUS_TEST_DATABASE_URL=postgres://... go test ./internal/repository/postgres
type testStore struct {
	folders nsRepo.FolderRepository
	files   nsRepo.FileRepository
	tx      repositories.TransactionManager
	owner   uuid.UUID
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	url := os.Getenv("CIRRUS_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CIRRUS_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := CreateConnectionPool(ctx, url)
	if err != nil {
		t.Fatalf("CreateConnectionPool: %v", err)
	}
	t.Cleanup(pool.Close)

	tables := NewTableNames("test_")
	if err := EnsureSchema(ctx, pool, tables); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	// each test gets its own owner so runs never see each other's rows
	owner := uuid.New()
	t.Cleanup(func() { _ = ClearOwner(context.Background(), pool, tables, owner) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
	return &testStore{
		folders: NewFolderRepository(cfg),
		files:   NewFileRepository(cfg),
		tx:      NewTransactionManager(pool, logger),
		owner:   owner,
	}
}

func (s *testStore) mkdir(t *testing.T, name string, parent *uuid.UUID) *models.Folder {
	t.Helper()
	now := time.Now().UTC()
	f := &models.Folder{
		ID:        uuid.New(),
		OwnerID:   s.owner,
		ParentID:  parent,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folders.Create(context.Background(), f); err != nil {
		t.Fatalf("create folder %q: %v", name, err)
	}
	return f
}

func TestFolderSiblingConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	existing := s.mkdir(t, "docs", nil)

	dup := &models.Folder{ID: uuid.New(), OwnerID: s.owner, Name: "docs", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	err := s.folders.Create(ctx, dup)

	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.ResourceID != existing.ID.String() {
		t.Errorf("ResourceID = %s, want %s", conflict.ResourceID, existing.ID)
	}

	// same name under a different parent is fine
	s.mkdir(t, "docs", &existing.ID)
}

func TestFolderMissingParent(t *testing.T) {
	s := newTestStore(t)
	missing := uuid.New()

	f := &models.Folder{ID: uuid.New(), OwnerID: s.owner, ParentID: &missing, Name: "x", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := s.folders.Create(context.Background(), f); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClosureAndAncestors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := s.mkdir(t, "a", nil)
	b := s.mkdir(t, "b", &a.ID)
	c := s.mkdir(t, "c", &b.ID)
	other := s.mkdir(t, "other", nil)

	closure, err := s.folders.Closure(ctx, s.owner, a.ID)
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	assertIDs(t, closure, a.ID, b.ID, c.ID)

	ancestors, err := s.folders.Ancestors(ctx, s.owner, c.ID)
	if err != nil {
		t.Fatalf("Ancestors: %v", err)
	}
	assertIDs(t, ancestors, a.ID, b.ID, c.ID)

	ancestors, err = s.folders.Ancestors(ctx, s.owner, other.ID)
	if err != nil {
		t.Fatalf("Ancestors: %v", err)
	}
	assertIDs(t, ancestors, other.ID)

	// another owner sees nothing
	closure, err = s.folders.Closure(ctx, uuid.New(), a.ID)
	if err != nil {
		t.Fatalf("Closure: %v", err)
	}
	assertIDs(t, closure)
}

func TestDeleteSubtreeInTransaction(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := s.mkdir(t, "a", nil)
	b := s.mkdir(t, "b", &a.ID)
	file := &models.File{
		ID: uuid.New(), OwnerID: s.owner, Filename: "f.txt", FolderID: &b.ID,
		Size: 1, LastModified: time.Now(), ContentRef: uuid.NewString(),
	}
	if err := s.files.Create(ctx, file); err != nil {
		t.Fatalf("create file: %v", err)
	}

	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		ids, err := s.folders.Closure(ctx, s.owner, a.ID)
		if err != nil {
			return err
		}
		if err := s.folders.Lock(ctx, s.owner, ids); err != nil {
			return err
		}
		refs, err := s.files.ContentRefsByFolders(ctx, s.owner, ids)
		if err != nil {
			return err
		}
		if len(refs) != 1 || refs[0] != file.ContentRef {
			t.Errorf("refs = %v", refs)
		}
		if _, err := s.files.DeleteByFolders(ctx, s.owner, ids); err != nil {
			return err
		}
		n, err := s.folders.DeleteMany(ctx, s.owner, ids)
		if err != nil {
			return err
		}
		if n != 2 {
			t.Errorf("deleted %d folders, want 2", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ExecTx: %v", err)
	}

	if _, err := s.folders.GetByID(ctx, s.owner, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected child gone, got %v", err)
	}
	if _, err := s.files.GetByID(ctx, s.owner, file.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected file gone, got %v", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var created *models.Folder
	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		created = &models.Folder{ID: uuid.New(), OwnerID: s.owner, Name: "tmp", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := s.folders.Create(ctx, created); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := s.folders.GetByID(ctx, s.owner, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected rollback, got %v", err)
	}
}

func assertIDs(t *testing.T, got []uuid.UUID, want ...uuid.UUID) {
	t.Helper()
	g := make([]string, len(got))
	for i, id := range got {
		g[i] = id.String()
	}
	w := make([]string, len(want))
	for i, id := range want {
		w[i] = id.String()
	}
	sort.Strings(g)
	sort.Strings(w)
	if len(g) != len(w) {
		t.Fatalf("ids = %v, want %v", g, w)
	}
	for i := range g {
		if g[i] != w[i] {
			t.Fatalf("ids = %v, want %v", g, w)
		}
	}
}
