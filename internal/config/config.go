package config

import (
	"errors"
	"fmt"
	"os"

	"image-watermarker/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Batch     Batch     `yaml:"batch"`
	Watermark Watermark `yaml:"watermark"`
	Log       Log       `yaml:"log"`
	Metrics   Metrics   `yaml:"metrics"`
}

type Batch struct {
	MaxConcurrent int    `yaml:"max_concurrent" env:"BATCH_MAX_CONCURRENT" env-default:"4" validate:"min=1"`
	FailurePolicy string `yaml:"failure_policy" env:"BATCH_FAILURE_POLICY" env-default:"fail-fast" validate:"oneof=fail-fast collect-all"`
	JPEGQuality   int    `yaml:"jpeg_quality" env:"BATCH_JPEG_QUALITY" env-default:"80" validate:"min=1,max=100"`
}

// Watermark holds defaults for the job fields the caller leaves unset.
type Watermark struct {
	Text             string `yaml:"text" env:"WATERMARK_TEXT" env-default:"© Watermark"`
	FontSize         int    `yaml:"font_size" env:"WATERMARK_FONT_SIZE" env-default:"24"`
	Opacity          int    `yaml:"opacity" env:"WATERMARK_OPACITY" env-default:"50"`
	PaddingTopBottom int    `yaml:"padding_top_bottom" env:"WATERMARK_PADDING_TOP_BOTTOM" env-default:"50"`
	PaddingLeftRight int    `yaml:"padding_left_right" env:"WATERMARK_PADDING_LEFT_RIGHT" env-default:"50"`
	Crop             bool   `yaml:"crop" env:"WATERMARK_CROP" env-default:"false"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
}

type Metrics struct {
	Textfile string `yaml:"textfile" env:"METRICS_TEXTFILE"`
}

// MustLoad reads .env if present, then the YAML file named by CONFIG_PATH,
// falling back to environment variables and defaults when it is unset.
func MustLoad() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Load(os.Getenv("CONFIG_PATH"))
}

// Load reads path when it is non-empty, otherwise the environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) FailurePolicy() domain.FailurePolicy {
	return domain.FailurePolicy(c.Batch.FailurePolicy)
}

// JobConfig builds a job for the given directories from the watermark defaults.
func (c *Config) JobConfig(inputDir, outputDir string) domain.WatermarkJobConfig {
	return domain.WatermarkJobConfig{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		WatermarkText:    c.Watermark.Text,
		FontSize:         c.Watermark.FontSize,
		Opacity:          c.Watermark.Opacity,
		PaddingTopBottom: c.Watermark.PaddingTopBottom,
		PaddingLeftRight: c.Watermark.PaddingLeftRight,
		Crop:             c.Watermark.Crop,
	}
}
