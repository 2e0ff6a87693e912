package repositories

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/yigit/maayosgrader/internal/pkg/apperrors"
	"github.com/yigit/maayosgrader/internal/pkg/filestorage"
	"github.com/yigit/maayosgrader/internal/pkg/helpers"
	"github.com/yigit/maayosgrader/internal/pkg/validation"
)

// Fixed file names inside a workspace directory
const (
	MetadataFile = "metadata.json"
	ResultsFile  = "results.json"
)

// maxCreateAttempts bounds the timestamp bumping done when two workspaces or
// images are created within the same millisecond
const maxCreateAttempts = 1000

// Repositories holds all the repository instances
type Repositories struct {
	WorkspaceRepository *WorkspaceRepository
	ImageRepository     *ImageRepository
	ResultRepository    *ResultRepository
}

// NewRepositories initializes all repositories over one storage tree
func NewRepositories(storage filestorage.FileStorage, clock helpers.Clock, lgr zerolog.Logger) *Repositories {
	if clock == nil {
		clock = helpers.SystemClock
	}
	return &Repositories{
		WorkspaceRepository: NewWorkspaceRepository(storage, clock, lgr),
		ImageRepository:     NewImageRepository(storage, clock),
		ResultRepository:    NewResultRepository(storage),
	}
}

// checkWorkspace verifies that id names an existing workspace directory
func checkWorkspace(storage filestorage.FileStorage, id string) error {
	if !validation.IsSafePathSegment(id) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidWorkspaceID, id)
	}

	info, err := storage.Stat(id, "")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", apperrors.ErrWorkspaceNotFound, id)
		}
		return fmt.Errorf("error checking workspace %s: %w", id, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", apperrors.ErrWorkspaceNotFound, id)
	}
	return nil
}
