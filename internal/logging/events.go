package logging

import (
	"log/slog"
	"time"

	"SkillForge/internal/ports"
)

// SlogSink renders pipeline events onto a slog.Logger, keeping the core
// decoupled from any concrete output destination.
type SlogSink struct {
	logger *slog.Logger
	runID  string
}

var _ ports.EventSink = (*SlogSink)(nil)

// NewSlogSink tags every emitted event with the run identifier.
func NewSlogSink(logger *slog.Logger, runID string) *SlogSink {
	return &SlogSink{logger: logger, runID: runID}
}

// Emit logs one event at a level matching its kind.
func (s *SlogSink) Emit(event ports.Event) {
	if s == nil || s.logger == nil {
		return
	}

	switch event.Kind {
	case ports.EventStageStarted:
		s.logger.Info("stage started", "run", s.runID, "doc", event.Doc, "stage", event.Stage)
	case ports.EventStageFinished:
		s.logger.Info("stage finished", "run", s.runID, "doc", event.Doc, "stage", event.Stage,
			"duration", event.Duration.Round(time.Millisecond))
	// Retry events originate inside the gateway, below stage context.
	case ports.EventRetryAttempt:
		s.logger.Warn("transient failure, retrying", "run", s.runID,
			"attempt", event.Attempt, "wait", event.Wait, "error", event.Err)
	case ports.EventTerminalError:
		s.logger.Error("terminal error", "run", s.runID, "doc", event.Doc,
			"stage", event.Stage, "error", event.Err)
	default:
		s.logger.Debug("pipeline event", "run", s.runID, "kind", string(event.Kind))
	}
}
