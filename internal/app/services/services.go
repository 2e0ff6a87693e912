package services

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/maayosgrader/internal/app/models/dto"
	"github.com/yigit/maayosgrader/internal/pkg/apperrors"
)

// Services defined in this package:
// - WorkspaceService: exam folders and captured images
// - ScanService: grading of captured images and the results record
// - ExportService: CSV export and sharing of results

// validate evaluates the same `binding` tags gin checks on requests, so callers
// outside the HTTP layer get identical rules.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// validateStruct runs the binding rules on obj and converts failures into
// apperrors.ErrValidationFailed with per-field messages
func validateStruct(obj interface{}) error {
	if err := validate.Struct(obj); err != nil {
		return apperrors.NewValidationError("validation failed", dto.ValidationMessages(err))
	}
	return nil
}

// isBlank reports whether s holds only whitespace
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
