package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/maayosgrader/internal/app/models/dto"
	"github.com/yigit/maayosgrader/internal/app/services"
	"github.com/yigit/maayosgrader/internal/middleware"
)

// ScanController handles grading of captured images
type ScanController struct {
	scanService services.ScanService
}

// NewScanController creates a new ScanController
func NewScanController(scanService services.ScanService) *ScanController {
	return &ScanController{scanService: scanService}
}

// GetResults lists the scan results of a workspace
// @Summary List scan results
// @Tags results
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} dto.APIResponse{data=[]models.ScanResult}
// @Router /workspaces/{id}/results [get]
func (c *ScanController) GetResults(ctx *gin.Context) {
	results, err := c.scanService.GetResults(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(results))
}

// ProcessImage grades a single image, replacing an earlier result for it
// @Summary Scan one paper
// @Tags results
// @Accept json
// @Produce json
// @Param id path string true "Workspace ID"
// @Param request body dto.ProcessImageRequest true "Image to scan"
// @Success 200 {object} dto.APIResponse{data=models.ScanResult}
// @Failure 409 {object} dto.ErrorResponse "Processing already in progress"
// @Router /workspaces/{id}/results/scan [post]
func (c *ScanController) ProcessImage(ctx *gin.Context) {
	var req dto.ProcessImageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	result, err := c.scanService.ProcessImage(ctx.Request.Context(), ctx.Param("id"), req.ImageID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse(result, fmt.Sprintf("Score: %d/%d", result.Score, result.Total)))
}

// ProcessBatch grades every image without a result. The run is bound to the
// request; if the client goes away the batch stops and keeps its progress.
// @Summary Process all pending papers
// @Tags results
// @Produce json
// @Param id path string true "Workspace ID"
// @Success 200 {object} dto.APIResponse{data=dto.BatchProcessResponse}
// @Failure 409 {object} dto.ErrorResponse "Processing already in progress"
// @Router /workspaces/{id}/results/batch [post]
func (c *ScanController) ProcessBatch(ctx *gin.Context) {
	outcome, err := c.scanService.ProcessBatch(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := fmt.Sprintf("Processed %d papers.", outcome.Processed)
	if outcome.Processed == 0 {
		message = "No new images to scan."
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse(outcome, message))
}
