package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./data/MaayosGrader", cfg.Server.StoragePath)
	assert.Equal(t, "800ms", cfg.Grader.Delay)
	assert.Equal(t, 50, cfg.Grader.TotalScore)
	assert.InDelta(t, 0.3, cfg.Grader.LowScoreProbability, 1e-9)
	assert.Equal(t, ExportTargetLocal, cfg.Export.Target)
	assert.True(t, cfg.Export.IncludeImageID)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes())
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: "9090"
  storage_path: /tmp/grader
grader:
  delay: 0s
  total_score: 60
export:
  include_image_id: true
logging:
  level: debug
`)
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("GRADER_LOW_SCORE_PROBABILITY", "0.5")
	t.Setenv("GRADER_SEED", "42")
	t.Setenv("EXPORT_INCLUDE_IMAGE_ID", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "/tmp/grader", cfg.Server.StoragePath)
	assert.Equal(t, "0s", cfg.Grader.Delay)
	assert.Equal(t, 60, cfg.Grader.TotalScore)
	assert.InDelta(t, 0.5, cfg.Grader.LowScoreProbability, 1e-9)
	assert.Equal(t, int64(42), cfg.Grader.Seed)
	assert.False(t, cfg.Export.IncludeImageID)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "total below mock bands", yaml: "grader:\n  total_score: 40\n"},
		{name: "bad delay", yaml: "grader:\n  delay: soon\n"},
		{name: "probability out of range", yaml: "grader:\n  low_score_probability: 1.5\n"},
		{name: "s3 without bucket", yaml: "export:\n  target: s3\ns3:\n  region: ap-southeast-1\n"},
		{name: "unknown target", yaml: "export:\n  target: ftp\n"},
		{name: "malformed yaml", yaml: "server: [\n"},
		{name: "non numeric env", env: map[string]string{"SERVER_MAX_UPLOAD_MB": "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "missing.yaml")
			if tt.yaml != "" {
				path = writeConfigFile(t, tt.yaml)
			}

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigS3Target(t *testing.T) {
	t.Setenv("EXPORT_TARGET", "s3")
	t.Setenv("AWS_S3_BUCKET", "grader-exports")
	t.Setenv("AWS_S3_REGION", "ap-southeast-1")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "grader-exports", cfg.S3.Bucket)
	assert.Equal(t, "15m", cfg.S3.PresignExpiry)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("MAAYOS_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("MAAYOS_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("MAAYOS_TEST_UNSET_VALUE", "fallback"))
}
