package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/maayosgrader/internal/app/models/dto"
	"github.com/yigit/maayosgrader/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResolveError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"validation", apperrors.NewValidationError("validation failed", map[string]interface{}{"Section": "Section is required"}), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"invalid workspace id", fmt.Errorf("%w: %q", apperrors.ErrInvalidWorkspaceID, ".."), http.StatusBadRequest, dto.ErrorCodeResourceInvalid},
		{"empty upload", apperrors.ErrEmptyImageUpload, http.StatusBadRequest, dto.ErrorCodeBadRequest},
		{"workspace not found", fmt.Errorf("error reading results: %w", apperrors.ErrWorkspaceNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"image not found", apperrors.ErrImageNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"no results", apperrors.ErrNoResults, http.StatusNotFound, dto.ErrorCodeNoResults},
		{"in progress", fmt.Errorf("%w: ws", apperrors.ErrProcessingInProgress), http.StatusConflict, dto.ErrorCodeProcessingInProgress},
		{"name exhausted", fmt.Errorf("error creating workspace: %w", apperrors.ErrResourceAlreadyExists), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists},
		{"storage", fmt.Errorf("error reading results: %w", &fs.PathError{Op: "open", Path: "results.json", Err: fs.ErrPermission}), http.StatusInternalServerError, dto.ErrorCodeStorageError},
		{"grading failed", fmt.Errorf("%w: scan_1.jpg: timeout", apperrors.ErrGradingFailed), http.StatusBadGateway, dto.ErrorCodeGradingFailed},
		{"cancelled", fmt.Errorf("batch interrupted after 1 of 3 images: %w", context.Canceled), http.StatusRequestTimeout, dto.ErrorCodeRequestCancelled},
		{"share failed", apperrors.NewCustomError(errors.New("s3 down"), "failed to share export").WithCode(string(dto.ErrorCodeExternalServiceError)), http.StatusBadGateway, dto.ErrorCodeExternalServiceError},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := resolveError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
		})
	}
}

func TestResolveErrorKeepsValidationDetails(t *testing.T) {
	details := map[string]interface{}{"Section": "Section is required"}
	_, detail := resolveError(apperrors.NewValidationError("validation failed", details))
	assert.Equal(t, details, detail.Details)
}

func TestResolveErrorSeverity(t *testing.T) {
	_, detail := resolveError(apperrors.ErrWorkspaceNotFound)
	assert.Equal(t, dto.ErrorSeverityWarning, detail.Severity)

	_, detail = resolveError(context.Canceled)
	assert.Equal(t, dto.ErrorSeverityInfo, detail.Severity)

	_, detail = resolveError(errors.New("disk on fire"))
	assert.Equal(t, dto.ErrorSeverityError, detail.Severity)
}

func TestHandleAPIErrorWritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/missing", nil)

	HandleAPIError(c, apperrors.ErrWorkspaceNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, c.IsAborted())

	var body dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, body.Error.Code)
	assert.Equal(t, "Workspace not found", body.Error.Message)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger(zerolog.Nop()))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("requestID"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	router.ServeHTTP(w, req)
	assert.Equal(t, "client-supplied", w.Header().Get(RequestIDHeader))
}
