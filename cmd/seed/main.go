package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"cirrus/internal/config"
	"cirrus/internal/content"
	"cirrus/internal/domain"
	nsSvc "cirrus/internal/domain/services/namespace"
	"cirrus/internal/repository"
	"cirrus/internal/service/namespace"
	"cirrus/internal/service/transfer"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed folders and files")
	clearData := flag.Bool("clear-data", false, "Clear all folders and files of the owner (keep schema)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ownerID, err := uuid.Parse(cfg.OwnerID)
	if err != nil {
		log.Fatalf("Invalid OWNER_ID %q: %v", cfg.OwnerID, err)
	}

	if *clearData {
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding %s store (environment: %s, prefix: %s)", cfg.DatabaseDriver, cfg.Environment, cfg.TablePrefix)
	}

	ctx := context.Background()
	store, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := store.DropTables(ctx); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Rows only; blobs of a cleared owner are left for the content store
	// directory to be wiped alongside.
	log.Println("🧹 Clearing existing folders and files...")
	if err := store.ClearOwner(ctx, ownerID); err != nil {
		log.Fatalf("Failed to clear data: %v", err)
	}
	if *clearData {
		log.Println("✅ Data cleared successfully")
		return
	}

	limits, err := config.LoadLimits(cfg.LimitsFile)
	if err != nil {
		log.Fatalf("Failed to load limits: %v", err)
	}
	contentStore, err := content.NewFilesystemStore(cfg.UploadDir, cfg.ContentCompression, logger)
	if err != nil {
		log.Fatalf("Failed to create content store: %v", err)
	}
	manager := namespace.NewManager(store.Folders, store.Files, store.TxManager, contentStore, limits, logger)
	transferService := transfer.NewService(manager, contentStore, limits, logger)

	log.Println("📝 Seeding folders and files...")
	s := &seeder{ctx: ctx, owner: ownerID, manager: manager, transfer: transferService, folders: map[string]*uuid.UUID{}}
	for i, entry := range seedEntries {
		if err := s.add(entry); err != nil {
			log.Printf("❌ Failed to create %s: %v", entry.path, err)
			continue
		}
		log.Printf("✅ Created %d/%d: %s", i+1, len(seedEntries), entry.path)
	}

	log.Println("🎉 Seeding complete!")
}

type seedEntry struct {
	path    string // folders end with "/"
	content string
}

var seedEntries = []seedEntry{
	{path: "Documents/"},
	{path: "Documents/Taxes/"},
	{path: "Documents/Taxes/2025/"},
	{path: "Documents/readme.txt", content: "Personal documents. Keep tidy.\n"},
	{path: "Documents/Taxes/2025/summary.csv", content: "category,amount\nincome,52000\ndeductions,4100\n"},
	{path: "Photos/"},
	{path: "Photos/Holidays/"},
	{path: "Photos/Holidays/notes.md", content: "# Holidays\n\n- Lisbon, June\n- Alps, December\n"},
	{path: "Projects/"},
	{path: "Projects/cirrus/"},
	{path: "Projects/cirrus/todo.md", content: "- share links\n- trash bin\n"},
	{path: "welcome.txt", content: "Welcome to your personal cloud.\n"},
}

// seeder resolves "a/b/c" paths against folders it has already created
type seeder struct {
	ctx      context.Context
	owner    uuid.UUID
	manager  nsSvc.Manager
	transfer nsSvc.TransferService
	folders  map[string]*uuid.UUID
}

func (s *seeder) add(e seedEntry) error {
	path := strings.TrimSuffix(e.path, "/")
	parentPath, name := "", path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		parentPath, name = path[:i], path[i+1:]
	}

	parentID, ok := s.folders[parentPath]
	if parentPath != "" && !ok {
		return errors.New("parent folder was not seeded")
	}

	if strings.HasSuffix(e.path, "/") {
		folder, err := s.manager.CreateFolder(s.ctx, s.owner, &nsSvc.CreateFolderRequest{
			ParentID: parentID,
			Name:     name,
		})
		if err != nil {
			return err
		}
		s.folders[path] = &folder.ID
		return nil
	}

	_, err := s.transfer.Upload(s.ctx, s.owner, parentID, name, strings.NewReader(e.content))
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	return err
}
