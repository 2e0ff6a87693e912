package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/maayosgrader/internal/app/models"
	"github.com/yigit/maayosgrader/internal/app/models/dto"
	"github.com/yigit/maayosgrader/internal/bootstrap"
	"github.com/yigit/maayosgrader/internal/config"
)

// stallingGrader grades the first image at once and then waits for the
// request to be cancelled
type stallingGrader struct {
	mu      sync.Mutex
	calls   int
	stalled chan struct{}
	once    sync.Once
}

func (g *stallingGrader) Grade(ctx context.Context, image models.ImageRef) (*models.ScanResult, error) {
	g.mu.Lock()
	g.calls++
	n := g.calls
	g.mu.Unlock()

	if n == 1 {
		return &models.ScanResult{ID: image, StudentName: "Student 101", Score: 40, Total: 50, Status: models.StatusSuccess}, nil
	}

	g.once.Do(func() { close(g.stalled) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestShutdownKeepsBatchProgress(t *testing.T) {
	root := t.TempDir()
	cfg := &config.Config{}
	cfg.Server.Port = "0"
	cfg.Server.Mode = "test"
	cfg.Server.StoragePath = filepath.Join(root, "MaayosGrader")
	cfg.Server.MaxUploadMB = 1
	cfg.Grader.TotalScore = 50
	cfg.Export.Target = config.ExportTargetLocal
	cfg.Export.Dir = filepath.Join(root, "exports")

	g := &stallingGrader{stalled: make(chan struct{})}
	deps, err := bootstrap.BuildDependencies(context.Background(), cfg, zerolog.Nop(), nil, g)
	require.NoError(t, err)

	ctx := context.Background()
	ws, err := deps.WorkspaceService.CreateWorkspace(ctx, &dto.CreateWorkspaceRequest{
		SchoolYear: "2024-2025",
		Section:    "Grade 10 - Rizal",
		Subject:    "Mathematics",
		KeyMode:    models.KeyModeScan,
	})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := deps.WorkspaceService.CaptureImage(ctx, ws.ID, strings.NewReader("jpeg"))
		require.NoError(t, err)
	}

	srv := New(cfg, bootstrap.SetupRouter(cfg, deps, zerolog.Nop()), zerolog.Nop())
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- srv.Serve(l) }()

	type reply struct {
		status int
		err    error
	}
	replies := make(chan reply, 1)
	go func() {
		resp, err := http.Post("http://"+l.Addr().String()+"/api/v1/workspaces/"+ws.ID+"/results/batch", "application/json", nil)
		if err != nil {
			replies <- reply{err: err}
			return
		}
		resp.Body.Close()
		replies <- reply{status: resp.StatusCode}
	}()

	select {
	case <-g.stalled:
	case <-time.After(5 * time.Second):
		t.Fatal("batch never reached the second image")
	}

	start := time.Now()
	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Less(t, time.Since(start), 5*time.Second)

	r := <-replies
	require.NoError(t, r.err)
	assert.Equal(t, http.StatusRequestTimeout, r.status)
	assert.True(t, errors.Is(<-served, http.ErrServerClosed))

	results, err := deps.ScanService.GetResults(ctx, ws.ID)
	require.NoError(t, err)
	assert.Len(t, results, 1, "the graded image must be persisted")
}
