package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/maayosgrader/internal/app/controllers"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	workspaceController *controllers.WorkspaceController,
	scanController *controllers.ScanController,
	exportController *controllers.ExportController,
) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	// API version group
	v1 := router.Group("/api/v1")

	workspaces := v1.Group("/workspaces")
	{
		workspaces.POST("", workspaceController.CreateWorkspace)
		workspaces.GET("", workspaceController.ListWorkspaces)
		workspaces.GET("/:id", workspaceController.GetWorkspace)

		// Captured images
		workspaces.POST("/:id/images", workspaceController.CaptureImage)
		workspaces.GET("/:id/images", workspaceController.ListImages)
		workspaces.GET("/:id/images/:image", workspaceController.GetImage)

		// Scan results
		workspaces.GET("/:id/results", scanController.GetResults)
		workspaces.POST("/:id/results/scan", scanController.ProcessImage)
		workspaces.POST("/:id/results/batch", scanController.ProcessBatch)

		// Export
		workspaces.GET("/:id/export", exportController.DownloadCSV)
		workspaces.POST("/:id/export/share", exportController.ShareCSV)
	}
}
