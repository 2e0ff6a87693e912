package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/maayosgrader/internal/app/models"
	"github.com/yigit/maayosgrader/internal/app/models/dto"
	"github.com/yigit/maayosgrader/internal/app/repositories"
	"github.com/yigit/maayosgrader/internal/pkg/apperrors"
	"github.com/yigit/maayosgrader/internal/pkg/grader"
)

// ScanService defines the interface for grading captured images
type ScanService interface {
	GetResults(ctx context.Context, id string) ([]models.ScanResult, error)
	ProcessImage(ctx context.Context, id string, ref models.ImageRef) (*models.ScanResult, error)
	ProcessBatch(ctx context.Context, id string) (*dto.BatchProcessResponse, error)
}

// scanServiceImpl implements ScanService
type scanServiceImpl struct {
	imageRepo  *repositories.ImageRepository
	resultRepo *repositories.ResultRepository
	grader     grader.Grader
	logger     zerolog.Logger

	// one result-mutating operation per workspace at a time
	locks sync.Map // workspace id -> *sync.Mutex
}

// NewScanService creates a new ScanService
func NewScanService(
	imageRepo *repositories.ImageRepository,
	resultRepo *repositories.ResultRepository,
	g grader.Grader,
	lgr zerolog.Logger,
) ScanService {
	return &scanServiceImpl{
		imageRepo:  imageRepo,
		resultRepo: resultRepo,
		grader:     g,
		logger:     lgr.With().Str("component", "scan_service").Logger(),
	}
}

// acquire takes the workspace's processing guard or fails with
// ErrProcessingInProgress when another operation holds it. Guards are only
// created for existing workspaces.
func (s *scanServiceImpl) acquire(ctx context.Context, id string) (func(), error) {
	if err := s.imageRepo.CheckWorkspace(ctx, id); err != nil {
		return nil, err
	}

	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	if !mu.TryLock() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrProcessingInProgress, id)
	}
	return mu.Unlock, nil
}

// GetResults returns the stored results of a workspace
func (s *scanServiceImpl) GetResults(ctx context.Context, id string) ([]models.ScanResult, error) {
	results, err := s.resultRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reading results: %w", err)
	}
	return results, nil
}

// ProcessImage grades one image and upserts its result at the top of the list
func (s *scanServiceImpl) ProcessImage(ctx context.Context, id string, ref models.ImageRef) (*models.ScanResult, error) {
	unlock, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.imageRepo.Path(ctx, id, ref); err != nil {
		return nil, err
	}

	results, err := s.resultRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reading results: %w", err)
	}

	result, err := s.grade(ctx, ref)
	if err != nil {
		return nil, err
	}

	merged := make([]models.ScanResult, 0, len(results)+1)
	merged = append(merged, *result)
	for _, r := range results {
		if r.ID != ref {
			merged = append(merged, r)
		}
	}

	if err := s.resultRepo.Save(ctx, id, merged); err != nil {
		return nil, fmt.Errorf("error saving results: %w", err)
	}

	s.logger.Info().Str("workspace", id).Str("image", string(ref)).Int("score", result.Score).Msg("Image processed")
	return result, nil
}

// ProcessBatch grades every image that has no result yet, one at a time,
// prepending each new result. The merged list is saved once at the end. When
// the batch stops early (cancellation or a grading failure) the results
// produced so far are saved before returning, so a rerun only picks up the
// remaining images.
func (s *scanServiceImpl) ProcessBatch(ctx context.Context, id string) (*dto.BatchProcessResponse, error) {
	unlock, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	images, err := s.imageRepo.List(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error listing images: %w", err)
	}
	results, err := s.resultRepo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error reading results: %w", err)
	}

	scanned := models.ScannedSet(results)
	pending := make([]models.ImageRef, 0, len(images))
	for _, img := range images {
		if _, ok := scanned[img]; !ok {
			pending = append(pending, img)
		}
	}

	if len(pending) == 0 {
		return &dto.BatchProcessResponse{Processed: 0, Results: results}, nil
	}

	merged := append([]models.ScanResult(nil), results...)
	processed := 0
	for _, img := range pending {
		result, err := s.grade(ctx, img)
		if err != nil {
			s.savePartial(ctx, id, merged, processed)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("batch interrupted after %d of %d images: %w", processed, len(pending), ctxErr)
			}
			return nil, err
		}
		merged = append([]models.ScanResult{*result}, merged...)
		processed++
	}

	if err := s.resultRepo.Save(ctx, id, merged); err != nil {
		return nil, fmt.Errorf("error saving results: %w", err)
	}

	s.logger.Info().Str("workspace", id).Int("processed", processed).Msg("Batch processed")
	return &dto.BatchProcessResponse{Processed: processed, Results: merged}, nil
}

// savePartial persists the progress of an interrupted batch
func (s *scanServiceImpl) savePartial(ctx context.Context, id string, merged []models.ScanResult, processed int) {
	if processed == 0 {
		return
	}
	if err := s.resultRepo.Save(context.WithoutCancel(ctx), id, merged); err != nil {
		s.logger.Error().Err(err).Str("workspace", id).Int("processed", processed).Msg("Failed to save partial batch results")
		return
	}
	s.logger.Warn().Str("workspace", id).Int("processed", processed).Msg("Batch stopped early, partial results saved")
}

// grade calls the grader and normalizes its failures
func (s *scanServiceImpl) grade(ctx context.Context, ref models.ImageRef) (*models.ScanResult, error) {
	result, err := s.grader.Grade(ctx, ref)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrGradingFailed, ref, err)
	}
	if result == nil {
		return nil, fmt.Errorf("%w: %s: empty result", apperrors.ErrGradingFailed, ref)
	}
	// The result is always bound to the image it was computed for
	result.ID = ref
	return result, nil
}
