package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"SkillForge/internal/domain"
	"SkillForge/internal/ports"
)

// ScoreHistoryRepository keeps an audit trail of scored documents in
// Postgres. Write-only from the pipeline's point of view; resume decisions
// rest solely on the filesystem artifacts.
type ScoreHistoryRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ResultRepository = (*ScoreHistoryRepository)(nil)

// NewScoreHistoryRepository wires a sql.DB implementation.
func NewScoreHistoryRepository(db *sql.DB) *ScoreHistoryRepository {
	return &ScoreHistoryRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveScore upserts the document's latest score snapshot.
func (r *ScoreHistoryRepository) SaveScore(ctx context.Context, runID string, result domain.AnalysisResult) error {
	if r.db == nil {
		return nil
	}

	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores for %s: %w", result.Doc.Stem, err)
	}

	query, args, err := r.builder.
		Insert("document_scores").
		Columns("run_id", "document_stem", "document_name", "scores", "composite", "scored").
		Values(runID, result.Doc.Stem, result.Doc.Name, scores, result.Composite, result.Scored()).
		Suffix(`ON CONFLICT (document_stem) DO UPDATE
                SET run_id = EXCLUDED.run_id,
                    scores = EXCLUDED.scores,
                    composite = EXCLUDED.composite,
                    scored = EXCLUDED.scored,
                    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert for %s: %w", result.Doc.Stem, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert score for %s: %w", result.Doc.Stem, err)
	}

	return nil
}
