package share

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/yigit/maayosgrader/internal/pkg/validation"
)

// LocalSharer writes exports into a directory on the local filesystem
type LocalSharer struct {
	dir    string
	logger zerolog.Logger
}

var _ Sharer = (*LocalSharer)(nil)

// NewLocalSharer creates a LocalSharer and makes sure dir exists
func NewLocalSharer(dir string, lgr zerolog.Logger) (*LocalSharer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}
	return &LocalSharer{
		dir:    filepath.Clean(dir),
		logger: lgr.With().Str("component", "local_sharer").Logger(),
	}, nil
}

// Share writes body to dir/name, replacing an earlier export of the same name
func (s *LocalSharer) Share(ctx context.Context, name, contentType string, body []byte) (string, error) {
	if !validation.IsSafePathSegment(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to write export")
		return "", fmt.Errorf("failed to write export: %w", err)
	}

	s.logger.Info().Str("path", path).Str("contentType", contentType).Int("bytes", len(body)).Msg("Export written")
	return path, nil
}
