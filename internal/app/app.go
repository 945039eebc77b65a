package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"SkillForge/internal/config"
	"SkillForge/internal/infrastructure/extract"
	"SkillForge/internal/infrastructure/llm"
	"SkillForge/internal/infrastructure/storage"
	"SkillForge/internal/logging"
	"SkillForge/internal/ports"
	"SkillForge/internal/reader"
	"SkillForge/internal/store"
	"SkillForge/internal/usecase"
)

// Options carry the per-invocation choices made on the command line.
type Options struct {
	DocDir string
	APIKey string
	Resume bool
}

// Application wires configuration to adapters and the pipeline use case.
type Application struct {
	pipeline *usecase.Pipeline
	output   string
	db       *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, opts Options, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	info, err := os.Stat(opts.DocDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("not a valid document directory: %s", opts.DocDir)
	}

	apiKey, err := config.ResolveAPIKey(opts.APIKey, cfg.Model.APIKey, os.Getenv)
	if err != nil {
		return nil, err
	}
	cfg.Model.APIKey = apiKey

	registry := reader.NewRegistry()
	registry.Register(extract.NewPlainReader())
	registry.Register(extract.NewHTMLReader())
	registry.Register(extract.NewDocxReader())
	source := extract.NewDirectorySource(opts.DocDir, registry, baseLogger.With("component", "source"))

	runID := uuid.NewString()
	sink := logging.NewSlogSink(baseLogger.With("component", "pipeline"), runID)
	invoker := llm.NewGeminiClient(cfg.Model, cfg.Retry, cfg.Limits.Prompt, sink)

	artifacts, err := store.NewFileStore(filepath.Join(opts.DocDir, cfg.Pipeline.OutputDir))
	if err != nil {
		return nil, err
	}

	var (
		history ports.ResultRepository
		db      *sql.DB
	)
	if cfg.Database.DSN != "" {
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open score history database: %w", err)
		}
		history = storage.NewScoreHistoryRepository(db)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Invoker:    invoker,
		Store:      artifacts,
		History:    history,
		Events:     sink,
		Logger:     baseLogger.With("component", "pipeline"),
		Limits:     cfg.Limits,
		StageDelay: cfg.Pipeline.StageDelay(),
		Resume:     opts.Resume,
		RunID:      runID,
	})

	return &Application{pipeline: pipeline, output: artifacts.Root(), db: db}, nil
}

// OutputDir returns the directory the run writes its artifacts to.
func (a *Application) OutputDir() string { return a.output }

// Run executes the full analysis once.
func (a *Application) Run(ctx context.Context) error {
	if a.db != nil {
		defer a.db.Close()
	}
	return a.pipeline.Run(ctx)
}
