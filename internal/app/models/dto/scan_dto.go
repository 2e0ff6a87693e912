package dto

import "github.com/yigit/maayosgrader/internal/app/models"

// ProcessImageRequest asks for a single image to be graded
type ProcessImageRequest struct {
	ImageID models.ImageRef `json:"imageId" binding:"required" example:"scan_1718000000000.jpg"`
}

// BatchProcessResponse reports the outcome of a batch run
type BatchProcessResponse struct {
	Processed int                 `json:"processed"`
	Results   []models.ScanResult `json:"results"`
}

// CSVExport is a rendered results export
type CSVExport struct {
	FileName string
	Content  []byte
	Rows     int
}

// ShareExportResponse tells where a shared export can be fetched
type ShareExportResponse struct {
	FileName string `json:"fileName" example:"results_2024-2025_Grade_10___Rizal_Mathematics_1718000000000.csv"`
	Location string `json:"location"`
	Rows     int    `json:"rows"`
}
