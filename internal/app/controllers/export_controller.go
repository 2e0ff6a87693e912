package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/maayosgrader/internal/app/models/dto"
	"github.com/yigit/maayosgrader/internal/app/services"
	"github.com/yigit/maayosgrader/internal/middleware"
)

// ExportController handles CSV exports of scan results
type ExportController struct {
	exportService         services.ExportService
	defaultIncludeImageID bool
}

// NewExportController creates a new ExportController
func NewExportController(exportService services.ExportService, includeImageID bool) *ExportController {
	return &ExportController{
		exportService:         exportService,
		defaultIncludeImageID: includeImageID,
	}
}

// includeImageID reads the optional imageId query flag
func (c *ExportController) includeImageID(ctx *gin.Context) (bool, error) {
	raw, ok := ctx.GetQuery("imageId")
	if !ok || raw == "" {
		return c.defaultIncludeImageID, nil
	}
	return strconv.ParseBool(raw)
}

// DownloadCSV streams the results as a CSV attachment
// @Summary Export results as CSV
// @Tags export
// @Produce text/csv
// @Param id path string true "Workspace ID"
// @Param imageId query bool false "Include the ImageID column"
// @Failure 404 {object} dto.ErrorResponse "No results yet"
// @Router /workspaces/{id}/export [get]
func (c *ExportController) DownloadCSV(ctx *gin.Context) {
	include, err := c.includeImageID(ctx)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid imageId flag").WithField("imageId")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	export, err := c.exportService.ExportCSV(ctx.Request.Context(), ctx.Param("id"), include)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	ctx.Data(http.StatusOK, services.CSVContentType+"; charset=utf-8", export.Content)
}

// ShareCSV publishes the CSV through the configured share target
// @Summary Share results CSV
// @Tags export
// @Produce json
// @Param id path string true "Workspace ID"
// @Param imageId query bool false "Include the ImageID column"
// @Success 200 {object} dto.APIResponse{data=dto.ShareExportResponse}
// @Failure 502 {object} dto.ErrorResponse "Share target failed"
// @Router /workspaces/{id}/export/share [post]
func (c *ExportController) ShareCSV(ctx *gin.Context) {
	include, err := c.includeImageID(ctx)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid imageId flag").WithField("imageId")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	shared, err := c.exportService.ShareCSV(ctx.Request.Context(), ctx.Param("id"), include)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewMessageResponse(shared, "Export shared"))
}
