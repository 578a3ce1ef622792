// Package output provides the destination file of a run: locked against
// concurrent runs and written atomically, so a failed run never leaves a file
// that looks complete.
package output

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run holds the output lock.
var ErrLocked = errors.New("output file is locked by another run")

// File is a pending output file. Writes go to a temporary file in the target
// directory; Commit renames it into place, Abort discards it.
type File struct {
	path     string
	tempPath string
	temp     *os.File
	buf      *bufio.Writer
	lock     *flock.Flock
	done     bool
}

// LockPath returns the lock file guarding the output at path.
func LockPath(path string) string {
	return path + ".lock"
}

// Create locks path and opens a temporary file next to it.
// The lock file stays on disk after the run so every run locks the same inode.
func Create(path string) (*File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	lock := flock.New(LockPath(path))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	// Create the temp file in the same directory so the rename stays atomic.
	temp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	return &File{
		path:     path,
		tempPath: temp.Name(),
		temp:     temp,
		buf:      bufio.NewWriter(temp),
		lock:     lock,
	}, nil
}

// Path returns the final output path.
func (f *File) Path() string {
	return f.path
}

// TempPath returns the path of the temporary file.
func (f *File) TempPath() string {
	return f.tempPath
}

// LockPath returns the path of the lock file.
func (f *File) LockPath() string {
	return f.lock.Path()
}

// Write buffers p into the temporary file.
func (f *File) Write(p []byte) (int, error) {
	if f.done {
		return 0, os.ErrClosed
	}
	return f.buf.Write(p)
}

// Commit flushes, syncs and renames the temporary file onto the output path.
// On failure the temporary file is removed.
func (f *File) Commit() error {
	if f.done {
		return os.ErrClosed
	}
	f.done = true
	defer f.release()

	if err := f.buf.Flush(); err != nil {
		f.discard()
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := f.temp.Sync(); err != nil {
		f.discard()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := f.temp.Close(); err != nil {
		_ = os.Remove(f.tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(f.tempPath, 0o644); err != nil {
		_ = os.Remove(f.tempPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(f.tempPath, f.path); err != nil {
		_ = os.Remove(f.tempPath)
		return fmt.Errorf("failed to rename temp file to %s: %w", f.path, err)
	}
	return nil
}

// Abort discards everything written. It is safe to call after Commit.
func (f *File) Abort() {
	if f.done {
		return
	}
	f.done = true
	f.discard()
	f.release()
}

func (f *File) discard() {
	_ = f.temp.Close()
	_ = os.Remove(f.tempPath)
}

func (f *File) release() {
	_ = f.lock.Unlock()
}
