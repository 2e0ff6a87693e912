package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yigit/maayosgrader/internal/app/models"
	"github.com/yigit/maayosgrader/internal/pkg/filestorage"
)

// ResultRepository handles the results.json record of each workspace
type ResultRepository struct {
	storage filestorage.FileStorage
}

// NewResultRepository creates a new ResultRepository
func NewResultRepository(storage filestorage.FileStorage) *ResultRepository {
	return &ResultRepository{storage: storage}
}

// Get returns the stored results in order. A workspace without a results
// record yet has no results; that is not an error.
func (r *ResultRepository) Get(ctx context.Context, workspaceID string) ([]models.ScanResult, error) {
	if err := checkWorkspace(r.storage, workspaceID); err != nil {
		return nil, err
	}

	var results []models.ScanResult
	if err := r.storage.ReadJSON(workspaceID, ResultsFile, &results); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.ScanResult{}, nil
		}
		return nil, fmt.Errorf("error reading results: %w", err)
	}

	if results == nil {
		results = []models.ScanResult{}
	}
	return results, nil
}

// Save replaces the whole results record. Merging is up to the caller. It does
// not observe ctx cancellation so partial batch progress can still be written.
func (r *ResultRepository) Save(ctx context.Context, workspaceID string, results []models.ScanResult) error {
	if err := checkWorkspace(r.storage, workspaceID); err != nil {
		return err
	}
	if results == nil {
		results = []models.ScanResult{}
	}

	if err := r.storage.WriteJSON(workspaceID, ResultsFile, results); err != nil {
		return fmt.Errorf("error saving results: %w", err)
	}
	return nil
}
