package tinybasic

import (
	"io"
	"strings"
)

// Storage is the persistent storage collaborator used by DIR, LOAD and SAVE.
type Storage interface {
	// List returns the stored file names.
	List() ([]string, error)
	// Open opens a file for reading. Missing files report fs.ErrNotExist.
	Open(name string) (io.ReadCloser, error)
	// Create creates a new file. Existing files report fs.ErrExist.
	Create(name string) (io.WriteCloser, error)
}

// programExtension is appended to the base name given to LOAD and SAVE.
const programExtension = ".BAS"

// programFileName returns the storage name for a program base name.
func programFileName(base string) string {
	return strings.TrimSpace(base) + programExtension
}
