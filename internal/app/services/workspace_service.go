package services

import (
	"context"
	"fmt"
	"io"

	"github.com/yigit/maayosgrader/internal/app/models"
	"github.com/yigit/maayosgrader/internal/app/models/dto"
	"github.com/yigit/maayosgrader/internal/app/repositories"
	"github.com/yigit/maayosgrader/internal/pkg/apperrors"
)

// WorkspaceService defines the interface for exam folder operations
type WorkspaceService interface {
	CreateWorkspace(ctx context.Context, req *dto.CreateWorkspaceRequest) (*models.Workspace, error)
	ListWorkspaces(ctx context.Context) ([]models.Workspace, error)
	GetWorkspace(ctx context.Context, id string) (*dto.WorkspaceDetailResponse, error)
	CaptureImage(ctx context.Context, id string, src io.Reader) (models.ImageRef, error)
	ListImages(ctx context.Context, id string) (*dto.ImageListResponse, error)
	ImagePath(ctx context.Context, id string, ref models.ImageRef) (string, error)
}

// workspaceServiceImpl implements WorkspaceService
type workspaceServiceImpl struct {
	workspaceRepo *repositories.WorkspaceRepository
	imageRepo     *repositories.ImageRepository
	resultRepo    *repositories.ResultRepository
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(
	workspaceRepo *repositories.WorkspaceRepository,
	imageRepo *repositories.ImageRepository,
	resultRepo *repositories.ResultRepository,
) WorkspaceService {
	return &workspaceServiceImpl{
		workspaceRepo: workspaceRepo,
		imageRepo:     imageRepo,
		resultRepo:    resultRepo,
	}
}

// CreateWorkspace validates the form and creates the exam folder.
// Identical section/subject pairs are allowed; the timestamp keeps ids unique.
func (s *workspaceServiceImpl) CreateWorkspace(ctx context.Context, req *dto.CreateWorkspaceRequest) (*models.Workspace, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", apperrors.ErrValidationFailed)
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	blank := map[string]interface{}{}
	if isBlank(req.SchoolYear) {
		blank["SchoolYear"] = "SchoolYear is required"
	}
	if isBlank(req.Section) {
		blank["Section"] = "Section is required"
	}
	if isBlank(req.Subject) {
		blank["Subject"] = "Subject is required"
	}
	if len(blank) > 0 {
		return nil, apperrors.NewValidationError("validation failed", blank)
	}

	ws, err := s.workspaceRepo.Create(ctx, models.Workspace{
		SchoolYear: req.SchoolYear,
		Section:    req.Section,
		Subject:    req.Subject,
		KeyMode:    req.KeyMode,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating workspace: %w", err)
	}
	return ws, nil
}

// ListWorkspaces returns all workspaces, most recent first
func (s *workspaceServiceImpl) ListWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	workspaces, err := s.workspaceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing workspaces: %w", err)
	}
	return workspaces, nil
}

// GetWorkspace returns a workspace and its image/result counters
func (s *workspaceServiceImpl) GetWorkspace(ctx context.Context, id string) (*dto.WorkspaceDetailResponse, error) {
	ws, err := s.workspaceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images, err := s.imageRepo.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error listing images: %w", err)
	}
	results, err := s.resultRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reading results: %w", err)
	}

	return &dto.WorkspaceDetailResponse{
		Workspace: *ws,
		Summary:   models.Summarize(images, results),
	}, nil
}

// CaptureImage stores a captured answer sheet in the workspace
func (s *workspaceServiceImpl) CaptureImage(ctx context.Context, id string, src io.Reader) (models.ImageRef, error) {
	if src == nil {
		return "", apperrors.ErrEmptyImageUpload
	}
	ref, err := s.imageRepo.Save(ctx, id, src)
	if err != nil {
		return "", fmt.Errorf("error capturing image: %w", err)
	}
	return ref, nil
}

// ListImages returns the workspace's images newest first with their scan state
func (s *workspaceServiceImpl) ListImages(ctx context.Context, id string) (*dto.ImageListResponse, error) {
	images, err := s.imageRepo.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error listing images: %w", err)
	}
	results, err := s.resultRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reading results: %w", err)
	}

	scanned := models.ScannedSet(results)
	resp := &dto.ImageListResponse{Images: make([]dto.ImageResponse, 0, len(images))}
	for _, img := range images {
		_, ok := scanned[img]
		if !ok {
			resp.Pending++
		}
		resp.Images = append(resp.Images, dto.ImageResponse{ID: img, Scanned: ok})
	}
	return resp, nil
}

// ImagePath resolves an image reference to the file to serve
func (s *workspaceServiceImpl) ImagePath(ctx context.Context, id string, ref models.ImageRef) (string, error) {
	return s.imageRepo.Path(ctx, id, ref)
}
