// Package virtualfs stores BASIC program files, either as rows of an SQLite
// database (VFS) or as plain files in a host directory (DiskFS).
package virtualfs

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/logger"
)

// Helper function for VFS debug logging that respects configuration
func vfsDebugLog(format string, args ...interface{}) {
	logger.Debug(logger.AreaFileSystem, format, args...)
}

// ErrFileTooLarge is returned when a file grows past the configured size limit.
var ErrFileTooLarge = errors.New("file too large")

// ErrInvalidName is returned for names that are empty or contain path separators.
var ErrInvalidName = errors.New("invalid file name")

// Store is a flat namespace of program files.
type Store interface {
	List() ([]string, error)
	Open(name string) (io.ReadCloser, error)
	Create(name string) (io.WriteCloser, error)
	Close() error
}

// VFS keeps files in the virtual_files table, one volume per interpreter.
type VFS struct {
	db      *sql.DB
	volume  string
	maxSize int
}

// New creates a VFS on an open database. CreateTables must have run.
func New(db *sql.DB, volume string) *VFS {
	return &VFS{
		db:      db,
		volume:  volume,
		maxSize: configuration.GetInt("Storage", "max_file_size_kb", 64) * 1024,
	}
}

// validateName rejects names that could escape the flat namespace.
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// List returns the file names of the volume in name order.
func (vfs *VFS) List() ([]string, error) {
	rows, err := vfs.db.Query("SELECT name FROM virtual_files WHERE volume = ? ORDER BY name", vfs.volume)
	if err != nil {
		return nil, fmt.Errorf("list volume %s: %w", vfs.volume, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list volume %s: %w", vfs.volume, err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Open returns the content of a file. Missing files report fs.ErrNotExist.
func (vfs *VFS) Open(name string) (io.ReadCloser, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	var content []byte
	err := vfs.db.QueryRow("SELECT content FROM virtual_files WHERE volume = ? AND name = ?", vfs.volume, name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	vfsDebugLog("Open %s/%s: %d bytes", vfs.volume, name, len(content))
	return io.NopCloser(bytes.NewReader(content)), nil
}

// Create starts a new file. It fails with fs.ErrExist when the name is taken;
// the content is stored when the writer is closed.
func (vfs *VFS) Create(name string) (io.WriteCloser, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	exists, err := vfs.exists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrExist}
	}
	return &vfsWriter{vfs: vfs, name: name}, nil
}

func (vfs *VFS) exists(name string) (bool, error) {
	var count int
	err := vfs.db.QueryRow("SELECT COUNT(*) FROM virtual_files WHERE volume = ? AND name = ?", vfs.volume, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
	return count > 0, nil
}

// insert stores a new row. A row created since Create was called wins.
func (vfs *VFS) insert(name string, content []byte) error {
	result, err := vfs.db.Exec(
		`INSERT INTO virtual_files (volume, name, content, mod_time) VALUES (?, ?, ?, ?)
		 ON CONFLICT(volume, name) DO NOTHING`,
		vfs.volume, name, content, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return &fs.PathError{Op: "create", Path: name, Err: fs.ErrExist}
	}
	vfsDebugLog("Stored %s/%s: %d bytes", vfs.volume, name, len(content))
	return nil
}

// Close closes the database.
func (vfs *VFS) Close() error {
	return vfs.db.Close()
}

type vfsWriter struct {
	vfs    *VFS
	name   string
	buf    bytes.Buffer
	closed bool
	failed error // first write error; Close then stores nothing
}

func (w *vfsWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fs.ErrClosed
	}
	if w.failed != nil {
		return 0, w.failed
	}
	if w.vfs.maxSize > 0 && w.buf.Len()+len(p) > w.vfs.maxSize {
		w.failed = fmt.Errorf("%s: %w (limit %d bytes)", w.name, ErrFileTooLarge, w.vfs.maxSize)
		return 0, w.failed
	}
	return w.buf.Write(p)
}

func (w *vfsWriter) Close() error {
	if w.closed {
		return fs.ErrClosed
	}
	w.closed = true
	if w.failed != nil {
		vfsDebugLog("Discarded %s/%s after failed write", w.vfs.volume, w.name)
		return w.failed
	}
	return w.vfs.insert(w.name, w.buf.Bytes())
}
