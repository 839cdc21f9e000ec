package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENVIRONMENT", "DATABASE_DRIVER", "OWNER_ID", "AUTO_MIGRATE", "LOG_MAX_FILES"} {
		t.Setenv(key, "")
	}
	unsetTablePrefix(t)

	cfg := Load()
	if cfg.Environment != "dev" {
		t.Errorf("Environment = %q, want dev", cfg.Environment)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Errorf("DatabaseDriver = %q, want postgres", cfg.DatabaseDriver)
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("TablePrefix = %q, want dev_", cfg.TablePrefix)
	}
	if cfg.OwnerID != PlaceholderOwnerID {
		t.Errorf("OwnerID = %q, want placeholder", cfg.OwnerID)
	}
	if !cfg.AutoMigrate {
		t.Error("AutoMigrate should default to true outside prod")
	}
	if cfg.LogMaxFiles != 10 {
		t.Errorf("LogMaxFiles = %d, want 10", cfg.LogMaxFiles)
	}
}

func TestLoadTablePrefix(t *testing.T) {
	tests := []struct {
		env        string
		override   *string
		wantPrefix string
		wantAuto   bool
	}{
		{env: "prod", wantPrefix: "prod_", wantAuto: false},
		{env: "test", wantPrefix: "test_", wantAuto: true},
		{env: "staging", wantPrefix: "dev_", wantAuto: true},
		{env: "prod", override: ptr(""), wantPrefix: "", wantAuto: false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", tt.env)
			t.Setenv("AUTO_MIGRATE", "")
			if tt.override != nil {
				t.Setenv("TABLE_PREFIX", *tt.override)
			} else {
				unsetTablePrefix(t)
			}

			cfg := Load()
			if cfg.TablePrefix != tt.wantPrefix {
				t.Errorf("TablePrefix = %q, want %q", cfg.TablePrefix, tt.wantPrefix)
			}
			if cfg.AutoMigrate != tt.wantAuto {
				t.Errorf("AutoMigrate = %v, want %v", cfg.AutoMigrate, tt.wantAuto)
			}
		})
	}
}

func TestLoadLimits(t *testing.T) {
	defaults, err := LoadLimits("")
	if err != nil {
		t.Fatalf("LoadLimits(\"\"): %v", err)
	}
	if defaults.MaxFolderNameLength != 255 || defaults.MaxTreeDepth != 512 {
		t.Errorf("unexpected defaults: %+v", defaults)
	}

	dir := t.TempDir()
	override := filepath.Join(dir, "limits.yaml")
	if err := os.WriteFile(override, []byte("max_tree_depth: 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := LoadLimits(override)
	if err != nil {
		t.Fatalf("LoadLimits: %v", err)
	}
	if l.MaxTreeDepth != 16 {
		t.Errorf("MaxTreeDepth = %d, want 16", l.MaxTreeDepth)
	}
	if l.MaxUploadSize != defaults.MaxUploadSize {
		t.Errorf("MaxUploadSize should keep its default, got %d", l.MaxUploadSize)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("max_tree_depth: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLimits(bad); err == nil {
		t.Error("expected error for non-positive limit")
	}

	if _, err := LoadLimits(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"server-2026-01-01T00-00-00.000.log",
		"server-2026-01-02T00-00-00.000.log",
		"server-2026-01-03T00-00-00.000.log",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if err := cleanupOldLogs(dir, 2); err != nil {
		t.Fatalf("cleanupOldLogs: %v", err)
	}

	left, _ := filepath.Glob(filepath.Join(dir, "server-*.log"))
	if len(left) != 2 {
		t.Fatalf("expected 2 logs left, got %d", len(left))
	}
	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Error("oldest log should have been removed")
	}
}

// unsetTablePrefix removes TABLE_PREFIX for the test and restores it after
func unsetTablePrefix(t *testing.T) {
	t.Helper()
	t.Setenv("TABLE_PREFIX", "")
	os.Unsetenv("TABLE_PREFIX")
}

func ptr(s string) *string { return &s }
