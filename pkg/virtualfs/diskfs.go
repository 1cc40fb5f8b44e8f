package virtualfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// DiskFS keeps program files in one host directory.
type DiskFS struct {
	dir string
}

// NewDiskFS uses dir, creating it when needed.
func NewDiskFS(dir string) (*DiskFS, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create program directory: %w", err)
	}
	return &DiskFS{dir: dir}, nil
}

// List returns the regular files of the directory in name order.
func (d *DiskFS) List() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Open opens a file for reading.
func (d *DiskFS) Open(name string) (io.ReadCloser, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(d.dir, name))
}

// Create creates a file that must not exist yet.
func (d *DiskFS) Create(name string) (io.WriteCloser, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(d.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}
	return &diskWriter{f: f}, nil
}

// diskWriter removes the file again when a write failed.
type diskWriter struct {
	f      *os.File
	failed error
}

func (w *diskWriter) Write(p []byte) (int, error) {
	if w.failed != nil {
		return 0, w.failed
	}
	n, err := w.f.Write(p)
	if err != nil {
		w.failed = err
	}
	return n, err
}

func (w *diskWriter) Close() error {
	err := w.f.Close()
	if w.failed != nil {
		os.Remove(w.f.Name())
		return w.failed
	}
	return err
}

// Close does nothing; it completes the Store interface.
func (d *DiskFS) Close() error {
	return nil
}
