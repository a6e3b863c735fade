package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestAtomicWrite(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		data     string
	}{
		{name: "creates new file", data: `{"a":1}`},
		{name: "replaces existing file", existing: "old", data: "new"},
		{name: "writes empty content", existing: "old", data: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "nested", "config.json")

			if tt.existing != "" {
				if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
					t.Fatal(err)
				}
				if err := os.WriteFile(path, []byte(tt.existing), 0600); err != nil {
					t.Fatal(err)
				}
			}

			if err := AtomicWrite(path, []byte(tt.data), 0600); err != nil {
				t.Fatalf("AtomicWrite() unexpected error: %v", err)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if string(got) != tt.data {
				t.Errorf("content = %q, want %q", got, tt.data)
			}

			assertNoTempFiles(t, filepath.Dir(path))
		})
	}
}

func TestAtomicWritePreservesPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on Windows")
	}

	path := filepath.Join(t.TempDir(), "rc")
	if err := os.WriteFile(path, []byte("x"), 0640); err != nil {
		t.Fatal(err)
	}

	if err := AtomicWrite(path, []byte("y"), 0600); err != nil {
		t.Fatalf("AtomicWrite() unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0640 {
		t.Errorf("mode = %v, want %v", info.Mode().Perm(), os.FileMode(0640))
	}
}

func TestAtomicWriteRenameFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("original"), 0600); err != nil {
		t.Fatal(err)
	}

	origRename, origAtomic := rename, RenameIsAtomic
	defer func() { rename, RenameIsAtomic = origRename, origAtomic }()
	RenameIsAtomic = true

	var staged string
	rename = func(oldpath, newpath string) error {
		data, err := os.ReadFile(oldpath)
		if err != nil {
			t.Errorf("temporary file missing before rename: %v", err)
		}
		staged = string(data)
		return errors.New("interrupted")
	}

	err := AtomicWrite(path, []byte("replacement"), 0600)
	var writeErr *WriteError
	if !errors.As(err, &writeErr) || writeErr.Op != "rename temporary file to" {
		t.Fatalf("AtomicWrite() error = %v, want a rename WriteError", err)
	}
	if staged != "replacement" {
		t.Errorf("staged content = %q, want replacement", staged)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Errorf("content = %q, want original content untouched", got)
	}
	assertNoTempFiles(t, dir)
}

func TestAtomicWriteFailureKeepsOriginal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions are not enforced on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("original"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(dir, 0500); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0755)

	err := AtomicWrite(path, []byte("replacement"), 0600)
	if err == nil {
		t.Fatal("AtomicWrite() expected error for read-only directory")
	}

	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("error type = %T, want *WriteError", err)
	}
	if !strings.HasPrefix(writeErr.Path, dir) {
		t.Errorf("WriteError.Path = %q, want a path under %q", writeErr.Path, dir)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "original" {
		t.Errorf("content = %q, want original content untouched", got)
	}
	assertNoTempFiles(t, dir)
}

func TestAtomicFileUpdateWithBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".zshrc")
	if err := os.WriteFile(path, []byte("export A=1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := AtomicFileUpdate(path, "export A=2\n", true); err != nil {
		t.Fatalf("AtomicFileUpdate() unexpected error: %v", err)
	}

	backups, err := NewBackupManager(0).ListBackups(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("backups = %d, want 1", len(backups))
	}
	old, _ := os.ReadFile(backups[0])
	if string(old) != "export A=1\n" {
		t.Errorf("backup content = %q", old)
	}
}

func TestCleanupOldBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bashrc")
	if err := os.WriteFile(path, []byte("v0"), 0644); err != nil {
		t.Fatal(err)
	}

	bm := NewBackupManager(2)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		bm.now = func() time.Time { return at }
		backup, err := bm.CreateBackup(path)
		if err != nil {
			t.Fatalf("CreateBackup() error: %v", err)
		}
		if err := os.Chtimes(backup, at, at); err != nil {
			t.Fatal(err)
		}
	}

	if err := bm.CleanupOldBackups(path); err != nil {
		t.Fatalf("CleanupOldBackups() error: %v", err)
	}

	backups, _ := bm.ListBackups(path)
	if len(backups) != 2 {
		t.Fatalf("backups after cleanup = %d, want 2", len(backups))
	}
	if !strings.Contains(backups[1], "20250101000300") {
		t.Errorf("newest backup = %s, want the 00:03 copy", backups[1])
	}
}

func TestRestoreFromLatestBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".zshrc")
	if err := os.WriteFile(path, []byte("good"), 0644); err != nil {
		t.Fatal(err)
	}
	bm := NewBackupManager(0)
	if _, err := bm.CreateBackup(path); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("broken"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := bm.RestoreFromLatestBackup(path); err != nil {
		t.Fatalf("RestoreFromLatestBackup() error: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "good" {
		t.Errorf("restored content = %q, want %q", got, "good")
	}

	if err := bm.RestoreFromLatestBackup(filepath.Join(t.TempDir(), "none")); err == nil {
		t.Error("RestoreFromLatestBackup() expected error when no backups exist")
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp.") {
			t.Errorf("leftover temporary file %s", e.Name())
		}
	}
}
