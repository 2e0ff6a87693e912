package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/maayosgrader/internal/app/models"
	"github.com/yigit/maayosgrader/internal/app/models/dto"
	"github.com/yigit/maayosgrader/internal/app/services"
	"github.com/yigit/maayosgrader/internal/middleware"
	"github.com/yigit/maayosgrader/internal/pkg/apperrors"
)

// ImageFormField is the multipart field holding a captured image
const ImageFormField = "image"

// WorkspaceController handles exam folders and their captured images
type WorkspaceController struct {
	workspaceService services.WorkspaceService
	maxUploadBytes   int64
}

// NewWorkspaceController creates a new WorkspaceController
func NewWorkspaceController(workspaceService services.WorkspaceService, maxUploadBytes int64) *WorkspaceController {
	return &WorkspaceController{
		workspaceService: workspaceService,
		maxUploadBytes:   maxUploadBytes,
	}
}

// CreateWorkspace handles exam folder creation
// @Summary Create an exam folder
// @Tags workspaces
// @Accept json
// @Produce json
// @Param request body dto.CreateWorkspaceRequest true "Exam folder setup"
// @Success 201 {object} dto.APIResponse{data=models.Workspace}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /workspaces [post]
func (c *WorkspaceController) CreateWorkspace(ctx *gin.Context) {
	var req dto.CreateWorkspaceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	workspace, err := c.workspaceService.CreateWorkspace(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(workspace, "Exam folder created"))
}

// ListWorkspaces lists exam folders, most recent first
// @Summary List exam folders
// @Tags workspaces
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Workspace}
// @Router /workspaces [get]
func (c *WorkspaceController) ListWorkspaces(ctx *gin.Context) {
	workspaces, err := c.workspaceService.ListWorkspaces(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(workspaces))
}

// GetWorkspace returns an exam folder with its counters
// @Summary Get exam folder
// @Tags workspaces
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} dto.APIResponse{data=dto.WorkspaceDetailResponse}
// @Failure 404 {object} dto.ErrorResponse "Workspace not found"
// @Router /workspaces/{id} [get]
func (c *WorkspaceController) GetWorkspace(ctx *gin.Context) {
	detail, err := c.workspaceService.GetWorkspace(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail))
}

// CaptureImage stores an uploaded answer sheet photo
// @Summary Capture an image
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Workspace ID"
// @Param image formData file true "Answer sheet photo"
// @Success 201 {object} dto.APIResponse{data=dto.ImageResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing image"
// @Failure 404 {object} dto.ErrorResponse "Workspace not found"
// @Router /workspaces/{id}/images [post]
func (c *WorkspaceController) CaptureImage(ctx *gin.Context) {
	if c.maxUploadBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadBytes)
	}

	fileHeader, err := ctx.FormFile(ImageFormField)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Image file is required").
			WithField(ImageFormField).
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	if fileHeader.Size == 0 {
		middleware.HandleAPIError(ctx, apperrors.ErrEmptyImageUpload)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("failed to open uploaded image"))
		return
	}
	defer file.Close()

	ref, err := c.workspaceService.CaptureImage(ctx.Request.Context(), ctx.Param("id"), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewMessageResponse(dto.ImageResponse{ID: ref}, "Image saved to exam folder"))
}

// ListImages lists captured images newest first
// @Summary List images
// @Tags images
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} dto.APIResponse{data=dto.ImageListResponse}
// @Failure 404 {object} dto.ErrorResponse "Workspace not found"
// @Router /workspaces/{id}/images [get]
func (c *WorkspaceController) ListImages(ctx *gin.Context) {
	images, err := c.workspaceService.ListImages(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(images))
}

// GetImage serves the bytes of a captured image
// @Summary Download an image
// @Tags images
// @Produce image/jpeg
// @Param id path string true "Workspace ID"
// @Param image path string true "Image ID"
// @Router /workspaces/{id}/images/{image} [get]
func (c *WorkspaceController) GetImage(ctx *gin.Context) {
	path, err := c.workspaceService.ImagePath(ctx.Request.Context(), ctx.Param("id"), models.ImageRef(ctx.Param("image")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.File(path)
}
