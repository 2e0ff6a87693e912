package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Export targets
const (
	ExportTargetLocal = "local"
	ExportTargetS3    = "s3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		StoragePath string `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		MaxUploadMB int    `yaml:"max_upload_mb" env:"SERVER_MAX_UPLOAD_MB"`
	} `yaml:"server"`

	Grader struct {
		Delay               string  `yaml:"delay" env:"GRADER_DELAY"`
		TotalScore          int     `yaml:"total_score" env:"GRADER_TOTAL_SCORE"`
		LowScoreProbability float64 `yaml:"low_score_probability" env:"GRADER_LOW_SCORE_PROBABILITY"`
		Seed                int64   `yaml:"seed" env:"GRADER_SEED"`
	} `yaml:"grader"`

	Export struct {
		Target         string `yaml:"target" env:"EXPORT_TARGET"`
		Dir            string `yaml:"dir" env:"EXPORT_DIR"`
		IncludeImageID bool   `yaml:"include_image_id" env:"EXPORT_INCLUDE_IMAGE_ID"`
	} `yaml:"export"`

	S3 struct {
		Bucket        string `yaml:"bucket" env:"AWS_S3_BUCKET"`
		Region        string `yaml:"region" env:"AWS_S3_REGION"`
		AccessKey     string `yaml:"access_key" env:"AWS_ACCESS_KEY"`
		SecretKey     string `yaml:"secret_key" env:"AWS_SECRET_KEY"`
		Prefix        string `yaml:"prefix" env:"AWS_S3_PREFIX"`
		PresignExpiry string `yaml:"presign_expiry" env:"AWS_S3_PRESIGN_EXPIRY"`
	} `yaml:"s3"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// The file is optional; defaults and env vars are enough to run
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "./data/MaayosGrader"
	config.Server.MaxUploadMB = 20

	// Grader defaults match the placeholder behaviour of the mobile app
	config.Grader.Delay = "800ms"
	config.Grader.TotalScore = 50
	config.Grader.LowScoreProbability = 0.3

	// Export defaults
	config.Export.Target = ExportTargetLocal
	config.Export.Dir = "./data/exports"
	config.Export.IncludeImageID = true

	config.S3.PresignExpiry = "15m"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Server.StoragePath) == "" {
		return fmt.Errorf("storage path is required")
	}

	if config.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	if _, err := time.ParseDuration(config.Grader.Delay); err != nil {
		return fmt.Errorf("invalid grader delay format: %w", err)
	}

	// Both score bands of the mock grader must fit below the total
	if config.Grader.TotalScore < 50 {
		return fmt.Errorf("grader total score must be at least 50")
	}

	if config.Grader.LowScoreProbability < 0 || config.Grader.LowScoreProbability > 1 {
		return fmt.Errorf("grader low score probability must be between 0 and 1")
	}

	switch strings.ToLower(config.Export.Target) {
	case ExportTargetLocal:
		if strings.TrimSpace(config.Export.Dir) == "" {
			return fmt.Errorf("export dir is required for local export")
		}
	case ExportTargetS3:
		if config.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required for s3 export")
		}
		if config.S3.Region == "" {
			return fmt.Errorf("S3 region is required for s3 export")
		}
		if _, err := time.ParseDuration(config.S3.PresignExpiry); err != nil {
			return fmt.Errorf("invalid S3 presign expiry format: %w", err)
		}
	default:
		return fmt.Errorf("unknown export target %q", config.Export.Target)
	}

	return nil
}

// MaxUploadBytes returns the multipart memory limit for image uploads
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
