package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// RenameIsAtomic reports whether AtomicWrite replaces the target in a single
// rename. On Windows the destination has to be removed first, so a crash in
// between leaves no file at the target path.
var RenameIsAtomic = runtime.GOOS != "windows"

var rename = os.Rename

// WriteError describes a failed step of an atomic write
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// AtomicWrite replaces path with data. The content is written to a sibling
// temporary file, synced, and renamed over the target. If the target already
// exists its permission bits are kept, otherwise perm is used.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &WriteError{Op: "create directory", Path: dir, Err: err}
	}

	mode := perm
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpPath := fmt.Sprintf("%s.tmp.%d", path, time.Now().UnixNano())
	tmpFile, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return &WriteError{Op: "create temporary file", Path: tmpPath, Err: err}
	}

	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return &WriteError{Op: "write temporary file", Path: tmpPath, Err: err}
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return &WriteError{Op: "sync temporary file", Path: tmpPath, Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &WriteError{Op: "close temporary file", Path: tmpPath, Err: err}
	}

	// OpenFile applies the umask, so set the mode explicitly.
	if err := os.Chmod(tmpPath, mode); err != nil {
		return &WriteError{Op: "set permissions on", Path: tmpPath, Err: err}
	}

	if !RenameIsAtomic {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return &WriteError{Op: "remove", Path: path, Err: err}
		}
	}

	if err := rename(tmpPath, path); err != nil {
		return &WriteError{Op: "rename temporary file to", Path: path, Err: err}
	}
	committed = true
	return nil
}

// AtomicFileUpdate writes newContent to filePath through AtomicWrite. When
// createBackup is set and the file exists, a timestamped copy is taken first
// and old copies beyond the retention limit are pruned afterwards.
func AtomicFileUpdate(filePath string, newContent string, createBackup bool) error {
	bm := NewBackupManager(DefaultBackupRetention)
	if createBackup && FileExists(filePath) {
		if _, err := bm.CreateBackup(filePath); err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
	}

	if err := AtomicWrite(filePath, []byte(newContent), 0644); err != nil {
		return err
	}

	if createBackup {
		// Non-fatal, the update itself succeeded
		_ = bm.CleanupOldBackups(filePath)
	}
	return nil
}
