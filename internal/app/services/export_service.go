package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/yigit/maayosgrader/internal/app/models"
	"github.com/yigit/maayosgrader/internal/app/models/dto"
	"github.com/yigit/maayosgrader/internal/app/repositories"
	"github.com/yigit/maayosgrader/internal/pkg/apperrors"
	"github.com/yigit/maayosgrader/internal/pkg/share"
)

// CSVContentType is the content type of results exports
const CSVContentType = "text/csv"

// ExportService defines the interface for exporting results
type ExportService interface {
	ExportCSV(ctx context.Context, id string, includeImageID bool) (*dto.CSVExport, error)
	ShareCSV(ctx context.Context, id string, includeImageID bool) (*dto.ShareExportResponse, error)
}

// exportServiceImpl implements ExportService
type exportServiceImpl struct {
	resultRepo *repositories.ResultRepository
	sharer     share.Sharer
}

// NewExportService creates a new ExportService
func NewExportService(resultRepo *repositories.ResultRepository, sharer share.Sharer) ExportService {
	return &exportServiceImpl{
		resultRepo: resultRepo,
		sharer:     sharer,
	}
}

// ExportFileName returns the name of a workspace's CSV export
func ExportFileName(id string) string {
	return fmt.Sprintf("results_%s.csv", id)
}

// WriteResultsCSV writes the header and one row per result in stored order.
// Plain values are written verbatim; values holding a comma, quote or line
// break are quoted.
func WriteResultsCSV(w io.Writer, results []models.ScanResult, includeImageID bool) error {
	cw := csv.NewWriter(w)

	header := []string{"Student Name", "Score", "Total", "Status"}
	if includeImageID {
		header = append(header, "ImageID")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}

	for _, r := range results {
		row := []string{
			r.StudentName,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Total),
			string(r.Status),
		}
		if includeImageID {
			row = append(row, path.Base(string(r.ID)))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("error writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportCSV renders the workspace's results as CSV
func (s *exportServiceImpl) ExportCSV(ctx context.Context, id string, includeImageID bool) (*dto.CSVExport, error) {
	results, err := s.resultRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reading results: %w", err)
	}
	if len(results) == 0 {
		return nil, apperrors.ErrNoResults
	}

	var buf bytes.Buffer
	if err := WriteResultsCSV(&buf, results, includeImageID); err != nil {
		return nil, err
	}

	return &dto.CSVExport{
		FileName: ExportFileName(id),
		Content:  buf.Bytes(),
		Rows:     len(results),
	}, nil
}

// ShareCSV renders the export and publishes it through the configured sharer
func (s *exportServiceImpl) ShareCSV(ctx context.Context, id string, includeImageID bool) (*dto.ShareExportResponse, error) {
	export, err := s.ExportCSV(ctx, id, includeImageID)
	if err != nil {
		return nil, err
	}

	location, err := s.sharer.Share(ctx, export.FileName, CSVContentType, export.Content)
	if err != nil {
		return nil, apperrors.NewCustomError(err, "failed to share export").WithCode(string(dto.ErrorCodeExternalServiceError))
	}

	return &dto.ShareExportResponse{
		FileName: export.FileName,
		Location: location,
		Rows:     export.Rows,
	}, nil
}
