package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/maayosgrader/internal/app/models"
	"github.com/yigit/maayosgrader/internal/app/repositories"
	"github.com/yigit/maayosgrader/internal/pkg/apperrors"
	"github.com/yigit/maayosgrader/internal/pkg/filestorage"
	"github.com/yigit/maayosgrader/internal/pkg/grader"
	"github.com/yigit/maayosgrader/internal/pkg/helpers"
)

func countLocks(s *scanServiceImpl) int {
	n := 0
	s.locks.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func TestProcessingGuardsOnlyExistingWorkspaces(t *testing.T) {
	storage, err := filestorage.NewLocalStorage(filepath.Join(t.TempDir(), "MaayosGrader"), zerolog.Nop())
	require.NoError(t, err)
	repos := repositories.NewRepositories(storage, helpers.SystemClock, zerolog.Nop())
	svc := NewScanService(repos.ImageRepository, repos.ResultRepository, grader.NewMockGrader(grader.MockConfig{Total: 50, Seed: 1}), zerolog.Nop()).(*scanServiceImpl)
	ctx := context.Background()

	_, err = svc.ProcessBatch(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrWorkspaceNotFound)
	_, err = svc.ProcessBatch(ctx, "..")
	assert.ErrorIs(t, err, apperrors.ErrInvalidWorkspaceID)
	_, err = svc.ProcessImage(ctx, "ghost", models.ImageRef("scan_1.jpg"))
	assert.ErrorIs(t, err, apperrors.ErrWorkspaceNotFound)
	assert.Equal(t, 0, countLocks(svc))

	ws, err := repos.WorkspaceRepository.Create(ctx, models.Workspace{
		SchoolYear: "2024-2025",
		Section:    "Grade 10 - Rizal",
		Subject:    "Mathematics",
		KeyMode:    models.KeyModeScan,
	})
	require.NoError(t, err)

	_, err = svc.ProcessBatch(ctx, ws.ID)
	require.NoError(t, err)
	_, err = svc.ProcessBatch(ctx, ws.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, countLocks(svc))
}
