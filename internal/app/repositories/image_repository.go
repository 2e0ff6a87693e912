package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/yigit/maayosgrader/internal/app/models"
	"github.com/yigit/maayosgrader/internal/pkg/apperrors"
	"github.com/yigit/maayosgrader/internal/pkg/filestorage"
	"github.com/yigit/maayosgrader/internal/pkg/helpers"
	"github.com/yigit/maayosgrader/internal/pkg/validation"
)

// ImageRepository handles captured answer sheet images inside workspaces
type ImageRepository struct {
	storage filestorage.FileStorage
	now     helpers.Clock
}

// NewImageRepository creates a new ImageRepository
func NewImageRepository(storage filestorage.FileStorage, clock helpers.Clock) *ImageRepository {
	return &ImageRepository{storage: storage, now: clock}
}

// CaptureFileName returns the file name used for an image captured at t
func CaptureFileName(t time.Time) string {
	return fmt.Sprintf("scan_%d.jpg", t.UnixMilli())
}

// Save copies src into the workspace as scan_{epochMillis}.jpg
func (r *ImageRepository) Save(ctx context.Context, workspaceID string, src io.Reader) (models.ImageRef, error) {
	if err := checkWorkspace(r.storage, workspaceID); err != nil {
		return "", err
	}

	capturedAt := r.now()
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		name := CaptureFileName(capturedAt)
		_, err := r.storage.SaveFileWithPath(src, workspaceID, name)
		if err == nil {
			return models.ImageRef(name), nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("error saving captured image: %w", err)
		}
		capturedAt = capturedAt.Add(time.Millisecond)
	}

	return "", fmt.Errorf("error saving captured image: %w", apperrors.ErrResourceAlreadyExists)
}

// List returns the workspace's images, newest first. Directory listings come
// back in file name order and scan_<millis> names sort chronologically, so the
// reversed listing is newest first.
func (r *ImageRepository) List(ctx context.Context, workspaceID string) ([]models.ImageRef, error) {
	if err := checkWorkspace(r.storage, workspaceID); err != nil {
		return nil, err
	}

	entries, err := r.storage.ListDir(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("error listing images: %w", err)
	}

	images := make([]models.ImageRef, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if entry.IsDir() || !validation.IsImageFile(entry.Name()) {
			continue
		}
		images = append(images, models.ImageRef(entry.Name()))
	}

	return images, nil
}

// CheckWorkspace reports ErrInvalidWorkspaceID or ErrWorkspaceNotFound for
// anything but an existing workspace
func (r *ImageRepository) CheckWorkspace(ctx context.Context, workspaceID string) error {
	return checkWorkspace(r.storage, workspaceID)
}

// Path returns the filesystem path of an image after checking it exists
func (r *ImageRepository) Path(ctx context.Context, workspaceID string, ref models.ImageRef) (string, error) {
	if err := checkWorkspace(r.storage, workspaceID); err != nil {
		return "", err
	}

	name := string(ref)
	if !validation.IsSafePathSegment(name) || !validation.IsImageFile(name) {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidImageRef, name)
	}

	info, err := r.storage.Stat(workspaceID, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", apperrors.ErrImageNotFound, name)
		}
		return "", fmt.Errorf("error checking image: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", apperrors.ErrImageNotFound, name)
	}

	return r.storage.GetFullPath(workspaceID, name)
}
