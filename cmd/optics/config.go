package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/optics"
	"github.com/hupe1980/optics/codec"
	"github.com/hupe1980/optics/dataset"
	"github.com/hupe1980/optics/distance"
)

// Config is the command configuration, read from YAML and overridden by
// flags.
type Config struct {
	Log         LogConfig     `yaml:"log"`
	Store       StoreConfig   `yaml:"store"`
	Dataset     DatasetConfig `yaml:"dataset"`
	Metric      string        `yaml:"metric" validate:"metric"`
	Codec       string        `yaml:"codec" validate:"codec"`
	Concurrency int           `yaml:"concurrency" validate:"min=0"`
	MemoryLimit int64         `yaml:"memory_limit" validate:"min=0"`
	Reports     string        `yaml:"reports"`
	MetricsAddr string        `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	Progress    time.Duration `yaml:"progress_interval" validate:"min=0"`
	Runs        []RunConfig   `yaml:"runs" validate:"required,min=1,dive"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// StoreConfig selects the blob store holding datasets and reports.
type StoreConfig struct {
	Kind      string `yaml:"kind" validate:"oneof=local s3 minio"`
	Root      string `yaml:"root" validate:"required_if=Kind local"`
	Bucket    string `yaml:"bucket" validate:"required_unless=Kind local"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint" validate:"required_if=Kind minio"`
	PathStyle bool   `yaml:"path_style"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Secure    bool   `yaml:"secure"`
}

// DatasetConfig names the dataset blob.
type DatasetConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Format   string `yaml:"format" validate:"omitempty,oneof=auto csv json jsonl ndjson"`
	IDColumn string `yaml:"id_column"`
}

// RunConfig is one parameter set.
type RunConfig struct {
	Name        string  `yaml:"name"`
	MaxDistance float64 `yaml:"max_distance" validate:"gt=0"`
	MinPoints   int     `yaml:"min_points" validate:"min=1"`
	Xi          float64 `yaml:"xi" validate:"gt=0,lt=1"`
}

// Params converts the run to clustering parameters.
func (r RunConfig) Params() optics.Params {
	return optics.Params{MaxDistance: r.MaxDistance, MinPoints: r.MinPoints, Xi: r.Xi}
}

func defaultConfig() Config {
	return Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Store:    StoreConfig{Kind: "local", Root: "."},
		Dataset:  DatasetConfig{Format: "auto", IDColumn: "id"},
		Metric:   distance.MetricL2.String(),
		Codec:    codec.Default.Name(),
		Reports:  "reports",
		Progress: 2 * time.Second,
	}
}

// LoadConfig reads a YAML configuration on top of the defaults. Unknown
// keys are rejected. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("metric", func(fl validator.FieldLevel) bool {
		_, err := distance.ParseMetric(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("codec", func(fl validator.FieldLevel) bool {
		_, ok := codec.ByName(fl.Field().String())
		return ok
	})
	return v
}

// Validate checks the configuration and reports every failing field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldError(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldError(e validator.FieldError) string {
	field := strings.TrimPrefix(e.Namespace(), "Config.")

	switch e.Tag() {
	case "required", "required_if", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "metric":
		return fmt.Sprintf("%s: unknown distance metric %q", field, e.Value())
	case "codec":
		return fmt.Sprintf("%s: unknown codec %q", field, e.Value())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// LogLevel parses the configured level.
func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Logger builds the configured logger.
func (c Config) Logger() *optics.Logger {
	if c.Log.Format == "json" {
		return optics.NewJSONLogger(c.LogLevel())
	}
	return optics.NewTextLogger(c.LogLevel())
}

// DatasetOptions converts the dataset section to loader options.
func (c Config) DatasetOptions() ([]dataset.Option, error) {
	format, err := dataset.ParseFormat(c.Dataset.Format)
	if err != nil {
		return nil, err
	}
	cd, _ := codec.ByName(c.Codec)

	opts := []dataset.Option{dataset.WithFormat(format), dataset.WithCodec(cd)}
	if c.Dataset.IDColumn != "" {
		opts = append(opts, dataset.WithIDColumn(c.Dataset.IDColumn))
	}
	return opts, nil
}
