package grader

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/yigit/maayosgrader/internal/app/models"
)

// Grader turns a captured answer sheet into a scan result.
type Grader interface {
	Grade(ctx context.Context, image models.ImageRef) (*models.ScanResult, error)
}

// Mock score bands. The low band yields results that need manual review.
const (
	lowBandMin    = 0
	lowBandSize   = 20
	normalBandMin = 30
	normalBandLen = 20

	studentNumberMin  = 100
	studentNumberSpan = 900
)

// MockConfig configures MockGrader
type MockConfig struct {
	// Delay simulates the latency of a real grading backend
	Delay time.Duration
	// Total is the maximum possible score
	Total int
	// LowScoreProbability is the chance of drawing from the low band
	LowScoreProbability float64
	// Seed seeds the random source; 0 picks a time based seed
	Seed int64
}

// DefaultMockConfig returns the placeholder settings of the mobile app
func DefaultMockConfig() MockConfig {
	return MockConfig{
		Delay:               800 * time.Millisecond,
		Total:               50,
		LowScoreProbability: 0.3,
	}
}

// MockGrader produces pseudo-random results without looking at the image.
// It stands in for an OCR / answer key matching backend.
type MockGrader struct {
	cfg MockConfig

	mu  sync.Mutex
	rng *rand.Rand
}

var _ Grader = (*MockGrader)(nil)

// NewMockGrader creates a MockGrader
func NewMockGrader(cfg MockConfig) *MockGrader {
	if cfg.Total <= 0 {
		cfg.Total = DefaultMockConfig().Total
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockGrader{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// Grade waits for the configured delay and returns a random result for image
func (g *MockGrader) Grade(ctx context.Context, image models.ImageRef) (*models.ScanResult, error) {
	if image == "" {
		return nil, fmt.Errorf("grade: empty image reference")
	}

	if g.cfg.Delay > 0 {
		timer := time.NewTimer(g.cfg.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	low := g.rng.Float64() < g.cfg.LowScoreProbability
	result := &models.ScanResult{
		ID:          image,
		StudentName: fmt.Sprintf("Student %d", studentNumberMin+g.rng.Intn(studentNumberSpan)),
		Total:       g.cfg.Total,
	}
	if low {
		result.Score = lowBandMin + g.rng.Intn(lowBandSize)
		result.Status = models.StatusReview
	} else {
		result.Score = normalBandMin + g.rng.Intn(normalBandLen)
		result.Status = models.StatusSuccess
	}

	return result, nil
}
