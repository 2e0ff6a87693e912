package middleware

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/maayosgrader/internal/app/models/dto"
	"github.com/yigit/maayosgrader/internal/pkg/apperrors"
	"github.com/yigit/maayosgrader/internal/pkg/logger"
)

// errorMapping binds an application error to its HTTP status and error code
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// errorMappings is checked in order; the first match wins
var errorMappings = []errorMapping{
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrInvalidWorkspaceID, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Invalid workspace ID"},
	{apperrors.ErrInvalidImageRef, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Invalid image reference"},
	{apperrors.ErrEmptyImageUpload, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Image upload is empty"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},
	{apperrors.ErrWorkspaceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Workspace not found"},
	{apperrors.ErrImageNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Image not found"},
	{apperrors.ErrNoResults, http.StatusNotFound, dto.ErrorCodeNoResults, "No results yet, scan some papers first"},
	{apperrors.ErrProcessingInProgress, http.StatusConflict, dto.ErrorCodeProcessingInProgress, "Processing already in progress"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrGradingFailed, http.StatusBadGateway, dto.ErrorCodeGradingFailed, "Processing failed"},
	{context.Canceled, http.StatusRequestTimeout, dto.ErrorCodeRequestCancelled, "Request cancelled"},
	{context.DeadlineExceeded, http.StatusRequestTimeout, dto.ErrorCodeRequestCancelled, "Request timed out"},
}

// HandleAPIError translates an error into the matching JSON error response
func HandleAPIError(c *gin.Context, err error) {
	status, detail := resolveError(err)

	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("Request rejected")
	}

	c.AbortWithStatusJSON(status, dto.APIResponse{
		Success:   false,
		Error:     detail,
		Timestamp: time.Now(),
	})
}

// resolveError picks the status code and error detail for err
func resolveError(err error) (int, *dto.ErrorDetail) {
	status, detail := matchError(err)
	return status, detail.WithSeverity(severityFor(status))
}

func matchError(err error) (int, *dto.ErrorDetail) {
	var custom *apperrors.CustomError
	hasCustom := errors.As(err, &custom)

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		detail := dto.NewErrorDetail(m.code, m.message)
		if hasCustom && custom.Details != nil {
			detail = detail.WithDetails(custom.Details)
		}
		return m.status, detail
	}

	if hasCustom && custom.Code == string(dto.ErrorCodeExternalServiceError) {
		return http.StatusBadGateway, dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, custom.Error())
	}

	// Filesystem failures below the workspace tree
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeStorageError, "Storage error")
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// severityFor classifies a response status: client mistakes are warnings,
// a cancelled request is informational
func severityFor(status int) dto.ErrorSeverity {
	switch {
	case status == http.StatusRequestTimeout:
		return dto.ErrorSeverityInfo
	case status >= http.StatusInternalServerError:
		return dto.ErrorSeverityError
	default:
		return dto.ErrorSeverityWarning
	}
}
