package ports

import (
	"context"
	"time"

	"SkillForge/internal/domain"
)

// Attachment points the model at a binary document.
type Attachment struct {
	Path      string
	MediaType string
}

// ModelRequest is the single payload shape accepted by the gateway: a text
// prompt, optionally paired with one binary attachment.
type ModelRequest struct {
	Prompt     string
	Attachment *Attachment
}

// ModelInvoker is the sole boundary to the external generative service.
type ModelInvoker interface {
	Invoke(ctx context.Context, req ModelRequest) (string, error)
}

// DocumentSource enumerates eligible documents in deterministic order.
type DocumentSource interface {
	Load(ctx context.Context) ([]domain.Document, error)
}

// ArtifactStore persists per-document artifacts and reloads them on resume.
type ArtifactStore interface {
	HasAll(stem string) bool
	SaveResult(result domain.AnalysisResult) error
	LoadResult(doc domain.Document) (domain.AnalysisResult, error)
	WriteRanking(entries []domain.RankingEntry) error
	WriteSummary(text string) error
	WriteSkill(text string) error
}

// ResultRepository records scored documents for history and audit.
type ResultRepository interface {
	SaveScore(ctx context.Context, runID string, result domain.AnalysisResult) error
}

// EventKind labels pipeline lifecycle notifications.
type EventKind string

const (
	EventStageStarted  EventKind = "stage_started"
	EventStageFinished EventKind = "stage_finished"
	EventRetryAttempt  EventKind = "retry_attempt"
	EventTerminalError EventKind = "terminal_error"
)

// Event is a structured pipeline notification. Which fields are set depends
// on the kind: retry events carry Attempt/Wait, stage events carry Doc/Stage.
type Event struct {
	Kind     EventKind
	Doc      string
	Stage    string
	Attempt  int
	Wait     time.Duration
	Duration time.Duration
	Err      error
}

// EventSink receives pipeline events; implementations choose the output sink.
type EventSink interface {
	Emit(event Event)
}
