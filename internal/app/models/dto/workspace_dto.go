package dto

import "github.com/yigit/maayosgrader/internal/app/models"

// CreateWorkspaceRequest is the body of the create exam folder form
type CreateWorkspaceRequest struct {
	SchoolYear string         `json:"schoolYear" binding:"required,max=20,excludesall=/\\" example:"2024-2025"`
	Section    string         `json:"section" binding:"required,max=100" example:"Grade 10 - Rizal"`
	Subject    string         `json:"subject" binding:"required,max=100" example:"Mathematics"`
	KeyMode    models.KeyMode `json:"keyMode" binding:"required,oneof=scan manual" example:"scan"`
}

// WorkspaceDetailResponse is a workspace together with its counters
type WorkspaceDetailResponse struct {
	models.Workspace
	Summary models.WorkspaceSummary `json:"summary"`
}

// ImageResponse describes one captured image
type ImageResponse struct {
	ID      models.ImageRef `json:"id" example:"scan_1718000000000.jpg"`
	Scanned bool            `json:"scanned"`
}

// ImageListResponse lists a workspace's images newest first
type ImageListResponse struct {
	Images  []ImageResponse `json:"images"`
	Pending int             `json:"pending"`
}
