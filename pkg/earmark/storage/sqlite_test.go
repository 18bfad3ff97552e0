//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"os"
	"path/filepath"
	"testing"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) (*DBClient, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_earmark.sqlite3")
	t.Setenv("EARMARK_DB_PATH", dbPath)

	client, err := NewDBClient()
	if err != nil {
		t.Fatalf("Failed to create test DB client: %v", err)
	}

	t.Cleanup(func() {
		client.Close()
	})

	return client, dbPath
}

func TestSQLiteLibrary(t *testing.T) {
	runLibraryContract(t, func(t *testing.T) library {
		client, _ := setupTestDB(t)
		return client
	})
}

// TestNewDBClient tests database initialization
func TestNewDBClient(t *testing.T) {
	client, dbPath := setupTestDB(t)

	if client.DB == nil {
		t.Fatal("Expected non-nil GORM DB handle")
	}
	if client.db == nil {
		t.Fatal("Expected non-nil sql.DB handle")
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
	if client.Path() != dbPath {
		t.Errorf("Expected Path %s, got %s", dbPath, client.Path())
	}

	if !client.DB.Migrator().HasTable("sounds") {
		t.Error("Expected table 'sounds' to exist")
	}
	if !client.DB.Migrator().HasIndex(&Sound{}, "idx_owner") {
		t.Error("Expected owner index to exist")
	}
}

// TestNewDBClientWithCustomPath tests database creation in a nested directory
func TestNewDBClientWithCustomPath(t *testing.T) {
	customPath := filepath.Join(t.TempDir(), "subdir", "custom.db")

	client, err := NewDBClientWithPath(customPath)
	if err != nil {
		t.Fatalf("Failed to create DB with custom path: %v", err)
	}
	defer client.Close()

	if _, err := os.Stat(customPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at custom path %s", customPath)
	}
}

func TestSQLiteFrameCount(t *testing.T) {
	client, _ := setupTestDB(t)
	entry := sampleEntry("bell", "u1", 0)
	if err := client.Put(entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var row Sound
	if err := client.DB.First(&row, "id = ?", "bell").Error; err != nil {
		t.Fatalf("Failed to read row: %v", err)
	}
	if row.FrameCount != len(entry.Fingerprint) {
		t.Errorf("Expected frame_count %d, got %d", len(entry.Fingerprint), row.FrameCount)
	}

	count, err := client.Count()
	if err != nil || count != 1 {
		t.Errorf("Expected Count 1, got %d (%v)", count, err)
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.sqlite3")

	client, err := NewDBClientWithPath(dbPath)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	client.Put(sampleEntry("bell", "u1", 0))
	client.Close()

	reopened, err := NewDBClientWithPath(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("bell")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if len(got.Fingerprint) == 0 {
		t.Error("Expected fingerprint frames after reopen")
	}
}

func TestNilClient(t *testing.T) {
	var c *DBClient
	if err := c.Put(sampleEntry("x", "u1", 0)); err == nil {
		t.Error("Expected error from nil client")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Expected nil from closing nil client, got %v", err)
	}
}
