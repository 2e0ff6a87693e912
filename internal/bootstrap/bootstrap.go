package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/maayosgrader/internal/app/controllers"
	appRepos "github.com/yigit/maayosgrader/internal/app/repositories"
	appRoutes "github.com/yigit/maayosgrader/internal/app/routes"
	appServices "github.com/yigit/maayosgrader/internal/app/services"
	"github.com/yigit/maayosgrader/internal/config"
	appMiddleware "github.com/yigit/maayosgrader/internal/middleware"
	"github.com/yigit/maayosgrader/internal/pkg/filestorage"
	"github.com/yigit/maayosgrader/internal/pkg/grader"
	"github.com/yigit/maayosgrader/internal/pkg/helpers"
	"github.com/yigit/maayosgrader/internal/pkg/logger"
	"github.com/yigit/maayosgrader/internal/pkg/share"
)

// ConfigPathEnv overrides the default config file location
const ConfigPathEnv = "CONFIG_PATH"

// Dependencies holds all the application dependencies
type Dependencies struct {
	WorkspaceService    appServices.WorkspaceService
	ScanService         appServices.ScanService
	ExportService       appServices.ExportService
	WorkspaceController *appControllers.WorkspaceController
	ScanController      *appControllers.ScanController
	ExportController    *appControllers.ExportController
	Repos               *appRepos.Repositories
	FileStorage         *filestorage.LocalStorage
	Grader              grader.Grader
	Sharer              share.Sharer
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv(ConfigPathEnv, filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// BuildSharer picks the export share target from the configuration
func BuildSharer(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (share.Sharer, error) {
	switch strings.ToLower(cfg.Export.Target) {
	case config.ExportTargetS3:
		return share.NewS3Sharer(ctx, share.S3Config{
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Prefix:        cfg.S3.Prefix,
			PresignExpiry: helpers.ParseDuration(cfg.S3.PresignExpiry, 15*time.Minute),
		}, lgr)
	default:
		return share.NewLocalSharer(cfg.Export.Dir, lgr)
	}
}

// BuildDependencies initializes storage, repositories, services, and controllers.
// A nil clock means the wall clock; a nil grader means the configured mock grader.
func BuildDependencies(ctx context.Context, cfg *config.Config, lgr zerolog.Logger, clock helpers.Clock, g grader.Grader) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(deps.FileStorage, clock, lgr)

	if g == nil {
		g = grader.NewMockGrader(grader.MockConfig{
			Delay:               helpers.ParseDuration(cfg.Grader.Delay, 800*time.Millisecond),
			Total:               cfg.Grader.TotalScore,
			LowScoreProbability: cfg.Grader.LowScoreProbability,
			Seed:                cfg.Grader.Seed,
		})
	}
	deps.Grader = g

	deps.Sharer, err = BuildSharer(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Str("target", cfg.Export.Target).Msg("Failed to initialize export sharer")
		return nil, fmt.Errorf("failed to initialize export sharer: %w", err)
	}

	deps.WorkspaceService = appServices.NewWorkspaceService(
		deps.Repos.WorkspaceRepository,
		deps.Repos.ImageRepository,
		deps.Repos.ResultRepository,
	)
	deps.ScanService = appServices.NewScanService(
		deps.Repos.ImageRepository,
		deps.Repos.ResultRepository,
		deps.Grader,
		lgr,
	)
	deps.ExportService = appServices.NewExportService(deps.Repos.ResultRepository, deps.Sharer)

	deps.WorkspaceController = appControllers.NewWorkspaceController(deps.WorkspaceService, cfg.MaxUploadBytes())
	deps.ScanController = appControllers.NewScanController(deps.ScanService)
	deps.ExportController = appControllers.NewExportController(deps.ExportService, cfg.Export.IncludeImageID)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode set")

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	appRoutes.SetupRouter(router,
		deps.WorkspaceController,
		deps.ScanController,
		deps.ExportController,
	)

	return router
}
