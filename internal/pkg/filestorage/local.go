package filestorage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/maayosgrader/internal/pkg/validation"
)

// ErrUnsafePath is returned when a path segment would escape the base directory
var ErrUnsafePath = errors.New("unsafe path segment")

// LocalStorage keeps the workspace tree on the local filesystem.
type LocalStorage struct {
	basePath string // The root collection directory
	logger   zerolog.Logger
}

var _ FileStorage = (*LocalStorage)(nil)

// NewLocalStorage creates a new LocalStorage rooted at basePath and makes sure
// the directory exists.
func NewLocalStorage(basePath string, lgr zerolog.Logger) (*LocalStorage, error) {
	ls := &LocalStorage{
		basePath: filepath.Clean(basePath),
		logger:   lgr.With().Str("component", "filestorage").Logger(),
	}

	if err := ls.EnsureBaseDir(); err != nil {
		return nil, err
	}
	ls.logger.Info().Str("path", ls.basePath).Msg("Local storage directory ensured")

	return ls, nil
}

// BasePath returns the root collection directory
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// EnsureBaseDir idempotently creates the base directory
func (ls *LocalStorage) EnsureBaseDir() error {
	if err := os.MkdirAll(ls.basePath, 0o755); err != nil {
		ls.logger.Error().Err(err).Str("path", ls.basePath).Msg("Failed to create storage directory")
		return fmt.Errorf("failed to create storage directory %s: %w", ls.basePath, err)
	}
	return nil
}

// GetFullPath returns the filesystem path for dir/filename. Either part may be
// empty; non-empty parts must be single, safe path segments.
func (ls *LocalStorage) GetFullPath(dir, filename string) (string, error) {
	parts := []string{ls.basePath}
	for _, p := range []string{dir, filename} {
		if p == "" {
			continue
		}
		if !validation.IsSafePathSegment(p) {
			return "", fmt.Errorf("%w: %q", ErrUnsafePath, p)
		}
		parts = append(parts, p)
	}
	return filepath.Join(parts...), nil
}

// MakeDir creates dir below the base path. The intermediate base directory is
// created when missing; dir itself must not exist yet.
func (ls *LocalStorage) MakeDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: empty directory name", ErrUnsafePath)
	}
	fullPath, err := ls.GetFullPath(dir, "")
	if err != nil {
		return err
	}
	if err := ls.EnsureBaseDir(); err != nil {
		return err
	}

	if err := os.Mkdir(fullPath, 0o755); err != nil {
		if !errors.Is(err, os.ErrExist) {
			ls.logger.Error().Err(err).Str("path", fullPath).Msg("Failed to create directory")
		}
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// RemoveDir deletes dir and its contents. A missing directory is not an error.
func (ls *LocalStorage) RemoveDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%w: empty directory name", ErrUnsafePath)
	}
	fullPath, err := ls.GetFullPath(dir, "")
	if err != nil {
		return err
	}

	if err := os.RemoveAll(fullPath); err != nil {
		ls.logger.Error().Err(err).Str("path", fullPath).Msg("Failed to remove directory")
		return fmt.Errorf("failed to remove directory %s: %w", dir, err)
	}
	return nil
}

// ListDir returns the entries of dir in file name order
func (ls *LocalStorage) ListDir(dir string) ([]os.DirEntry, error) {
	fullPath, err := ls.GetFullPath(dir, "")
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", fullPath, err)
	}
	return entries, nil
}

// Stat returns file info for dir/filename
func (ls *LocalStorage) Stat(dir, filename string) (os.FileInfo, error) {
	fullPath, err := ls.GetFullPath(dir, filename)
	if err != nil {
		return nil, err
	}
	return os.Stat(fullPath)
}

// SaveFileWithPath copies src into dir/filename and returns the full path.
// The destination is created exclusively; a partially written file is removed.
func (ls *LocalStorage) SaveFileWithPath(src io.Reader, dir, filename string) (string, error) {
	if src == nil {
		return "", fmt.Errorf("no source to save")
	}

	dstPath, err := ls.GetFullPath(dir, filename)
	if err != nil {
		return "", err
	}

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if !errors.Is(err, os.ErrExist) {
			ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		}
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	ls.logger.Debug().Str("path", dstPath).Int64("bytes", written).Msg("File saved")
	return dstPath, nil
}

// WriteJSON replaces dir/filename with the JSON encoding of v. The data is
// written to a temporary file in the same directory and renamed into place.
func (ls *LocalStorage) WriteJSON(dir, filename string, v interface{}) error {
	dstPath, err := ls.GetFullPath(dir, filename)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}

	tmpPath := filepath.Join(filepath.Dir(dstPath), "."+filename+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		ls.logger.Error().Err(err).Str("path", tmpPath).Msg("Failed to write temporary file")
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to move file into place")
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}
	return nil
}

// ReadJSON decodes dir/filename into v. A missing file is reported with an
// error wrapping os.ErrNotExist.
func (ls *LocalStorage) ReadJSON(dir, filename string, v interface{}) error {
	fullPath, err := ls.GetFullPath(dir, filename)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", fullPath, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", fullPath, err)
	}
	return nil
}
