package filestorage

import (
	"io"
	"os"
)

// FileStorage defines the directory-tree operations the repositories rely on.
// Every path argument is a single directory entry below the base path.
type FileStorage interface {
	// EnsureBaseDir creates the base directory if it does not exist
	EnsureBaseDir() error

	// MakeDir creates a directory directly below the base path; it fails with
	// os.ErrExist if the directory is already there
	MakeDir(dir string) error

	// RemoveDir deletes a directory below the base path with everything in it
	RemoveDir(dir string) error

	// ListDir lists a directory below the base path ("" lists the base path itself)
	ListDir(dir string) ([]os.DirEntry, error)

	// SaveFileWithPath copies src into dir/filename, failing with os.ErrExist if
	// the file already exists
	SaveFileWithPath(src io.Reader, dir, filename string) (string, error)

	// WriteJSON replaces dir/filename with the JSON encoding of v
	WriteJSON(dir, filename string, v interface{}) error

	// ReadJSON decodes dir/filename into v
	ReadJSON(dir, filename string, v interface{}) error

	// Stat returns file info for dir/filename
	Stat(dir, filename string) (os.FileInfo, error)

	// GetFullPath returns the filesystem path for dir/filename
	GetFullPath(dir, filename string) (string, error)
}
