// Package config loads run settings from an optional YAML file and the
// environment. Command line flags are applied by the caller on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dvloznov/nutrition-ranker/internal/pipeline"
	"github.com/dvloznov/nutrition-ranker/internal/ranking"
	"github.com/dvloznov/nutrition-ranker/internal/report"
	"github.com/dvloznov/nutrition-ranker/internal/source"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds the settings of one run.
type Config struct {
	Source      string `yaml:"source" validate:"required"`
	TopN        int    `yaml:"top_n" validate:"gte=1,lte=100"`
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	MetricsFile string `yaml:"metrics_file"`

	Chart ChartConfig `yaml:"chart"`
	GCS   GCSConfig   `yaml:"gcs"`
	S3    S3Config    `yaml:"s3"`
}

// ChartConfig configures the PNG bar chart.
type ChartConfig struct {
	Output   string `yaml:"output"`
	FontPath string `yaml:"font_path"`
	Width    int    `yaml:"width" validate:"gte=300,lte=4000"`
	Upload   string `yaml:"upload" validate:"omitempty,startswith=gs://"`
}

// GCSConfig configures Google Cloud Storage access.
type GCSConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// S3Config configures Amazon S3 (or compatible) access.
type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Source:   pipeline.DefaultSourceURI,
		TopN:     ranking.DefaultTopN,
		LogLevel: "info",
		Chart: ChartConfig{
			Width: report.DefaultChartWidth,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and environment overrides. It does not validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("Load: reading %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("Load: parsing %q: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Source = envString("NUTRITION_SOURCE", c.Source)
	c.TopN = envInt("NUTRITION_TOP_N", c.TopN)
	c.LogLevel = envString("NUTRITION_LOG_LEVEL", c.LogLevel)
	c.MetricsFile = envString("NUTRITION_METRICS_FILE", c.MetricsFile)
	c.Chart.FontPath = envString("NUTRITION_FONT", c.Chart.FontPath)

	c.GCS.CredentialsFile = envString("GOOGLE_APPLICATION_CREDENTIALS", c.GCS.CredentialsFile)

	c.S3.Region = envString("AWS_REGION", c.S3.Region)
	c.S3.Endpoint = envString("S3_ENDPOINT", c.S3.Endpoint)
	c.S3.AccessKeyID = envString("AWS_ACCESS_KEY_ID", c.S3.AccessKeyID)
	c.S3.SecretAccessKey = envString("AWS_SECRET_ACCESS_KEY", c.S3.SecretAccessKey)
}

var validate = validator.New()

// Validate checks field constraints. Errors wrap ErrInvalid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// SourceOptions converts the remote storage settings for the source opener.
func (c *Config) SourceOptions() source.Options {
	return source.Options{
		GCSCredentialsFile: c.GCS.CredentialsFile,
		S3Region:           c.S3.Region,
		S3Endpoint:         c.S3.Endpoint,
		S3AccessKeyID:      c.S3.AccessKeyID,
		S3SecretAccessKey:  c.S3.SecretAccessKey,
	}
}

func envString(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
