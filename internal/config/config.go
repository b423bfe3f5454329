// Package config holds the environment-driven settings for the service
// entrypoints. Pipeline behavior for library callers is configured through
// pipeline.Options directly; this package only feeds the cmds.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      AppConfig      `env-prefix:"APP_"`
	Schema   SchemaConfig   `env-prefix:"SCHEMA_"`
	Bucket   BucketConfig   `env-prefix:"BUCKET_"`
	Pipeline PipelineConfig `env-prefix:"PIPELINE_"`
}

type AppConfig struct {
	Port     string `env:"PORT" env-default:"8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
}

type SchemaConfig struct {
	// FilePath points at the OpenAPI or JSON Schema document on disk. The
	// store re-reads it before every validation, so edits take effect live.
	FilePath string `env:"FILE_PATH"`
	Strict   bool   `env:"STRICT" env-default:"false"`
	// RequiredBody names the components.schemas entry record bodies must
	// satisfy.
	RequiredBody string `env:"REQUIRED_BODY"`
}

type BucketConfig struct {
	Region          string `env:"REGION" env-default:"us-east-1"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	UsePathStyle    bool   `env:"USE_PATH_STYLE"`
}

type PipelineConfig struct {
	GetObject       bool `env:"GET_OBJECT"`
	IsJSON          bool `env:"IS_JSON"`
	IsCSV           bool `env:"IS_CSV"`
	ValidationError bool `env:"VALIDATION_ERROR" env-default:"true"`
	OperationError  bool `env:"OPERATION_ERROR"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return cfg, nil
}
