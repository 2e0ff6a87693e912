package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/maayosgrader/internal/app/models"
	"github.com/yigit/maayosgrader/internal/pkg/apperrors"
	"github.com/yigit/maayosgrader/internal/pkg/filestorage"
	"github.com/yigit/maayosgrader/internal/pkg/helpers"
	"github.com/yigit/maayosgrader/internal/pkg/validation"
)

// MaxWorkspaceIDBytes is the longest folder name most filesystems accept
const MaxWorkspaceIDBytes = 255

// WorkspaceRepository handles exam folders and their metadata records
type WorkspaceRepository struct {
	storage filestorage.FileStorage
	now     helpers.Clock
	logger  zerolog.Logger
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(storage filestorage.FileStorage, clock helpers.Clock, lgr zerolog.Logger) *WorkspaceRepository {
	return &WorkspaceRepository{
		storage: storage,
		now:     clock,
		logger:  lgr.With().Str("component", "workspace_repository").Logger(),
	}
}

// BuildWorkspaceID composes the folder name of a workspace:
// {schoolYear}_{sanitizedSection}_{sanitizedSubject}_{epochMillis}
func BuildWorkspaceID(schoolYear, section, subject string, createdAt time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%d",
		schoolYear,
		validation.SanitizeSegment(section),
		validation.SanitizeSegment(subject),
		createdAt.UnixMilli(),
	)
}

// Create creates the workspace directory and its metadata record. ID and
// CreatedAt of the input are ignored and filled in.
func (r *WorkspaceRepository) Create(ctx context.Context, input models.Workspace) (*models.Workspace, error) {
	if err := r.storage.EnsureBaseDir(); err != nil {
		return nil, err
	}

	createdAt := time.UnixMilli(r.now().UnixMilli()).UTC()

	// Millis stay 13 digits until 2286, so bumping keeps the length
	if id := BuildWorkspaceID(input.SchoolYear, input.Section, input.Subject, createdAt); len(id) > MaxWorkspaceIDBytes {
		return nil, apperrors.NewValidationError("validation failed", map[string]interface{}{
			"id": fmt.Sprintf("folder name is %d bytes, at most %d allowed", len(id), MaxWorkspaceIDBytes),
		})
	}

	var id string
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt == maxCreateAttempts {
			return nil, fmt.Errorf("error creating workspace: %w", apperrors.ErrResourceAlreadyExists)
		}

		id = BuildWorkspaceID(input.SchoolYear, input.Section, input.Subject, createdAt)
		if !validation.IsSafePathSegment(id) {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidWorkspaceID, id)
		}

		err := r.storage.MakeDir(id)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("error creating workspace: %w", err)
		}
		// Same folder name within one millisecond; move to the next one
		createdAt = createdAt.Add(time.Millisecond)
	}

	workspace := input
	workspace.ID = id
	workspace.CreatedAt = createdAt

	if err := r.storage.WriteJSON(id, MetadataFile, &workspace); err != nil {
		if rmErr := r.storage.RemoveDir(id); rmErr != nil {
			r.logger.Error().Err(rmErr).Str("workspace", id).Msg("Workspace directory left without metadata")
		}
		return nil, fmt.Errorf("error writing workspace metadata: %w", err)
	}

	r.logger.Info().Str("workspace", id).Msg("Workspace created")
	return &workspace, nil
}

// List returns every workspace with readable metadata, most recent first.
// A folder with corrupt metadata is logged and skipped.
func (r *WorkspaceRepository) List(ctx context.Context) ([]models.Workspace, error) {
	if err := r.storage.EnsureBaseDir(); err != nil {
		return nil, err
	}

	entries, err := r.storage.ListDir("")
	if err != nil {
		return nil, fmt.Errorf("error listing workspaces: %w", err)
	}

	workspaces := make([]models.Workspace, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || !validation.IsSafePathSegment(entry.Name()) {
			continue
		}

		var ws models.Workspace
		if err := r.storage.ReadJSON(entry.Name(), MetadataFile, &ws); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				r.logger.Warn().Err(err).Str("workspace", entry.Name()).Msg("Skipping workspace with unreadable metadata")
			}
			continue
		}
		workspaces = append(workspaces, ws)
	}

	sort.SliceStable(workspaces, func(i, j int) bool {
		return workspaces[i].CreatedAt.After(workspaces[j].CreatedAt)
	})

	return workspaces, nil
}

// GetByID loads the metadata record of a workspace
func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	if err := checkWorkspace(r.storage, id); err != nil {
		return nil, err
	}

	var ws models.Workspace
	if err := r.storage.ReadJSON(id, MetadataFile, &ws); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrWorkspaceNotFound, id)
		}
		return nil, fmt.Errorf("error reading workspace metadata: %w", err)
	}

	return &ws, nil
}
