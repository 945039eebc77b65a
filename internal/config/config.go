package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "SKILLFORGE_CONFIG"
	apiKeyEnv      = "GEMINI_API_KEY"
	altAPIKeyEnv   = "GOOGLE_API_KEY"
	modelEnv       = "SKILLFORGE_MODEL"
	databaseDSNEnv = "DATABASE_DSN"
)

// Config holds high-level settings required across the application.
type Config struct {
	Model    ModelConfig    `yaml:"model"`
	Retry    RetryConfig    `yaml:"retry"`
	Limits   LimitsConfig   `yaml:"limits"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ModelConfig describes how to reach the generative model service.
type ModelConfig struct {
	Endpoint string `yaml:"endpoint"`
	Name     string `yaml:"name"`
	APIKey   string `yaml:"apiKey"`
}

// RetryConfig bounds the gateway's transient-failure retry loop. Attachment
// calls back off longer because re-uploading is costlier.
type RetryConfig struct {
	MaxAttempts          int     `yaml:"maxAttempts"`
	TextBackoffSeconds   float64 `yaml:"textBackoffSeconds"`
	UploadBackoffSeconds float64 `yaml:"uploadBackoffSeconds"`
}

// TextBackoff resolves the plain-call backoff base as a duration.
func (r RetryConfig) TextBackoff() time.Duration {
	return time.Duration(r.TextBackoffSeconds * float64(time.Second))
}

// UploadBackoff resolves the attachment-call backoff base as a duration.
func (r RetryConfig) UploadBackoff() time.Duration {
	return time.Duration(r.UploadBackoffSeconds * float64(time.Second))
}

// LimitsConfig fixes the per-call-site truncation ceilings, in characters.
type LimitsConfig struct {
	Prompt         int `yaml:"prompt"`
	Document       int `yaml:"document"`
	ReviewSource   int `yaml:"reviewSource"`
	SubAnalysis    int `yaml:"subAnalysis"`
	AggregateBlock int `yaml:"aggregateBlock"`
	SkillInput     int `yaml:"skillInput"`
}

// PipelineConfig tunes the sequential per-document run.
type PipelineConfig struct {
	StageDelaySeconds float64 `yaml:"stageDelaySeconds"`
	OutputDir         string  `yaml:"outputDir"`
}

// StageDelay resolves the inter-stage pause as a duration.
func (p PipelineConfig) StageDelay() time.Duration {
	return time.Duration(p.StageDelaySeconds * float64(time.Second))
}

// DatabaseConfig enables the optional Postgres score history when a DSN is set.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LoggingConfig selects the console log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(modelEnv); v != "" {
		c.Model.Name = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Model.Endpoint != "" {
		base.Model.Endpoint = override.Model.Endpoint
	}
	if override.Model.Name != "" {
		base.Model.Name = override.Model.Name
	}
	if override.Model.APIKey != "" {
		base.Model.APIKey = override.Model.APIKey
	}

	if override.Retry.MaxAttempts > 0 {
		base.Retry.MaxAttempts = override.Retry.MaxAttempts
	}
	if override.Retry.TextBackoffSeconds > 0 {
		base.Retry.TextBackoffSeconds = override.Retry.TextBackoffSeconds
	}
	if override.Retry.UploadBackoffSeconds > 0 {
		base.Retry.UploadBackoffSeconds = override.Retry.UploadBackoffSeconds
	}

	if override.Limits.Prompt > 0 {
		base.Limits.Prompt = override.Limits.Prompt
	}
	if override.Limits.Document > 0 {
		base.Limits.Document = override.Limits.Document
	}
	if override.Limits.ReviewSource > 0 {
		base.Limits.ReviewSource = override.Limits.ReviewSource
	}
	if override.Limits.SubAnalysis > 0 {
		base.Limits.SubAnalysis = override.Limits.SubAnalysis
	}
	if override.Limits.AggregateBlock > 0 {
		base.Limits.AggregateBlock = override.Limits.AggregateBlock
	}
	if override.Limits.SkillInput > 0 {
		base.Limits.SkillInput = override.Limits.SkillInput
	}

	if override.Pipeline.StageDelaySeconds > 0 {
		base.Pipeline.StageDelaySeconds = override.Pipeline.StageDelaySeconds
	}
	if override.Pipeline.OutputDir != "" {
		base.Pipeline.OutputDir = override.Pipeline.OutputDir
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Model: ModelConfig{
			Endpoint: "https://generativelanguage.googleapis.com/v1beta",
			Name:     "gemini-2.5-pro",
		},
		Retry: RetryConfig{
			MaxAttempts:          3,
			TextBackoffSeconds:   10,
			UploadBackoffSeconds: 15,
		},
		Limits: LimitsConfig{
			Prompt:         900_000,
			Document:       120_000,
			ReviewSource:   80_000,
			SubAnalysis:    60_000,
			AggregateBlock: 100_000,
			SkillInput:     80_000,
		},
		Pipeline: PipelineConfig{
			StageDelaySeconds: 1,
			OutputDir:         "_analysis",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
