package services_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/maayosgrader/internal/app/models"
	"github.com/yigit/maayosgrader/internal/app/models/dto"
	"github.com/yigit/maayosgrader/internal/app/repositories"
	"github.com/yigit/maayosgrader/internal/app/services"
	"github.com/yigit/maayosgrader/internal/pkg/filestorage"
	"github.com/yigit/maayosgrader/internal/pkg/grader"
	"github.com/yigit/maayosgrader/internal/pkg/helpers"
)

// scriptedGrader hands out results with predetermined scores
type scriptedGrader struct {
	mu     sync.Mutex
	calls  int
	scores []int
	// failAt makes the n-th call (1-based) fail
	failAt int
	// cancelAfter cancels the context once that many calls succeeded
	cancelAfter int
	cancel      context.CancelFunc
}

func (g *scriptedGrader) Grade(ctx context.Context, image models.ImageRef) (*models.ScanResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancelAfter > 0 && g.calls >= g.cancelAfter && g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.calls++
	if g.failAt == g.calls {
		return nil, errors.New("camera frame unreadable")
	}

	score := 40
	if len(g.scores) > 0 {
		score = g.scores[(g.calls-1)%len(g.scores)]
	}
	status := models.StatusSuccess
	if score < 20 {
		status = models.StatusReview
	}
	return &models.ScanResult{
		ID:          "ignored",
		StudentName: fmt.Sprintf("Student %d", 100+g.calls),
		Score:       score,
		Total:       50,
		Status:      status,
	}, nil
}

func (g *scriptedGrader) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// blockingGrader waits for release before returning
type blockingGrader struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *blockingGrader) Grade(ctx context.Context, image models.ImageRef) (*models.ScanResult, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &models.ScanResult{ID: image, StudentName: "Student 100", Score: 35, Total: 50, Status: models.StatusSuccess}, nil
}

type testEnv struct {
	repos      *repositories.Repositories
	workspaces services.WorkspaceService
	scans      services.ScanService
	exports    services.ExportService
	sharer     *recordingSharer
}

type recordingSharer struct {
	name string
	body []byte
	err  error
}

func (s *recordingSharer) Share(ctx context.Context, name, contentType string, body []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.name = name
	s.body = body
	return "memory://" + name, nil
}

func newTestEnv(t *testing.T, g grader.Grader) *testEnv {
	t.Helper()
	storage, err := filestorage.NewLocalStorage(filepath.Join(t.TempDir(), "MaayosGrader"), zerolog.Nop())
	require.NoError(t, err)

	repos := repositories.NewRepositories(storage, helpers.FixedClock(time.UnixMilli(1718000000000), time.Millisecond), zerolog.Nop())
	sharer := &recordingSharer{}
	return &testEnv{
		repos:      repos,
		workspaces: services.NewWorkspaceService(repos.WorkspaceRepository, repos.ImageRepository, repos.ResultRepository),
		scans:      services.NewScanService(repos.ImageRepository, repos.ResultRepository, g, zerolog.Nop()),
		exports:    services.NewExportService(repos.ResultRepository, sharer),
		sharer:     sharer,
	}
}

func (e *testEnv) createWorkspace(t *testing.T) *models.Workspace {
	t.Helper()
	ws, err := e.workspaces.CreateWorkspace(context.Background(), &dto.CreateWorkspaceRequest{
		SchoolYear: "2024-2025",
		Section:    "Grade 10 - Rizal",
		Subject:    "Mathematics",
		KeyMode:    models.KeyModeScan,
	})
	require.NoError(t, err)
	return ws
}

func (e *testEnv) capture(t *testing.T, id string, n int) []models.ImageRef {
	t.Helper()
	refs := make([]models.ImageRef, 0, n)
	for i := 0; i < n; i++ {
		ref, err := e.workspaces.CaptureImage(context.Background(), id, strings.NewReader("jpeg"))
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	return refs
}

func resultIDs(results []models.ScanResult) []models.ImageRef {
	ids := make([]models.ImageRef, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return ids
}
