// Package store persists per-document artifacts as plain markdown files and
// reconstructs results from them on resume.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"SkillForge/internal/domain"
	"SkillForge/internal/ports"
	"SkillForge/internal/review"
)

const (
	level1Dir = "level1"
	level2Dir = "level2"
	scoresDir = "scores"

	rankingFile = "ranking.md"
	summaryFile = "summary.md"
	skillFile   = "SKILL.md"
)

// FileStore lays artifacts out under one root:
//
//	<root>/level1/<stem>_L1.md
//	<root>/level2/<stem>_L2.md
//	<root>/scores/<stem>_score.md
//	<root>/scores/ranking.md
//	<root>/summary.md
//	<root>/SKILL.md
//
// Per-document files are written right after that document's pipeline
// completes, before the next document starts, bounding crash loss to the
// document in flight.
type FileStore struct {
	root string
}

var _ ports.ArtifactStore = (*FileStore)(nil)

// NewFileStore creates the output tree under root.
func NewFileStore(root string) (*FileStore, error) {
	for _, dir := range []string{root, filepath.Join(root, level1Dir), filepath.Join(root, level2Dir), filepath.Join(root, scoresDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	return &FileStore{root: root}, nil
}

// Root returns the output directory.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) level1Path(stem string) string {
	return filepath.Join(s.root, level1Dir, stem+"_L1.md")
}

func (s *FileStore) level2Path(stem string) string {
	return filepath.Join(s.root, level2Dir, stem+"_L2.md")
}

func (s *FileStore) scorePath(stem string) string {
	return filepath.Join(s.root, scoresDir, stem+"_score.md")
}

// HasAll reports whether all three per-document artifacts already exist.
func (s *FileStore) HasAll(stem string) bool {
	for _, path := range []string{s.level1Path(stem), s.level2Path(stem), s.scorePath(stem)} {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}

// SaveResult writes the three per-document artifacts.
func (s *FileStore) SaveResult(result domain.AnalysisResult) error {
	stem := result.Doc.Stem
	if err := os.WriteFile(s.level1Path(stem), []byte(result.Level1), 0o644); err != nil {
		return fmt.Errorf("write level1 for %s: %w", stem, err)
	}
	if err := os.WriteFile(s.level2Path(stem), []byte(result.Level2), 0o644); err != nil {
		return fmt.Errorf("write level2 for %s: %w", stem, err)
	}
	if err := os.WriteFile(s.scorePath(stem), []byte(renderScoreRecord(result)), 0o644); err != nil {
		return fmt.Errorf("write score record for %s: %w", stem, err)
	}
	return nil
}

// LoadResult reconstructs a result from persisted artifacts. Scores are
// re-extracted from the review text embedded in the score record; the
// recorded composite line takes precedence when present, covering records
// whose embedded review no longer parses.
func (s *FileStore) LoadResult(doc domain.Document) (domain.AnalysisResult, error) {
	level1, err := os.ReadFile(s.level1Path(doc.Stem))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("read level1 for %s: %w", doc.Stem, err)
	}
	level2, err := os.ReadFile(s.level2Path(doc.Stem))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("read level2 for %s: %w", doc.Stem, err)
	}
	record, err := os.ReadFile(s.scorePath(doc.Stem))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("read score record for %s: %w", doc.Stem, err)
	}

	scores, composite := review.ParseScores(string(record))
	if recorded, ok := review.ParseComposite(string(record)); ok {
		composite = recorded
	}

	result := domain.AnalysisResult{
		Doc:       doc,
		Level1:    string(level1),
		Level2:    string(level2),
		Scores:    scores,
		Composite: composite,
		Skipped:   strings.HasPrefix(string(level1), domain.SkippedHeading),
		Status:    domain.StatusPersisted,
	}
	if result.Skipped {
		result.Status = domain.StatusSkipped
	}
	return result, nil
}

func renderScoreRecord(result domain.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s quality review\n\n", result.Doc.Name)
	b.WriteString("## Dimension Scores\n\n")
	for _, dim := range review.Dimensions {
		fmt.Fprintf(&b, "- **%s** (weight %.0f%%): %d\n", dim.Name, dim.Weight*100, result.Scores[dim.Name])
	}
	b.WriteString("\n## Composite Score\n\n")
	fmt.Fprintf(&b, "**%s/5** (weighted average, rounded to the nearest 0.5)\n", review.FormatComposite(result.Composite))
	b.WriteString("\n---\n\n## Full Review\n\n")
	b.WriteString(result.Review)
	b.WriteString("\n")
	return b.String()
}

// WriteRanking renders the score table, best composite first. The table is
// recomputed from memory on every run and never read back.
func (s *FileStore) WriteRanking(entries []domain.RankingEntry) error {
	var b strings.Builder
	b.WriteString("# Quality Score Ranking\n\n")
	b.WriteString("Sorted by composite score, descending.\n\n")

	b.WriteString("| Rank | Document | " + strings.Join(review.Abbreviations, " | ") + " | Composite |\n")
	b.WriteString("|" + strings.Repeat("---|", len(review.Dimensions)+3) + "\n")

	for _, entry := range entries {
		cells := make([]string, 0, len(review.Dimensions))
		for _, dim := range review.Dimensions {
			if v, ok := entry.Result.Scores[dim.Name]; ok {
				cells = append(cells, strconv.Itoa(v))
			} else {
				cells = append(cells, "-")
			}
		}
		fmt.Fprintf(&b, "| %d | %s | %s | **%s** |\n",
			entry.Rank,
			entry.Result.Doc.Name,
			strings.Join(cells, " | "),
			review.FormatComposite(entry.Result.Composite))
	}
	b.WriteString("\n")

	path := filepath.Join(s.root, scoresDir, rankingFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write ranking: %w", err)
	}
	return nil
}

// WriteSummary persists the aggregate summary.
func (s *FileStore) WriteSummary(text string) error {
	if err := os.WriteFile(filepath.Join(s.root, summaryFile), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// WriteSkill persists the final compiled artifact.
func (s *FileStore) WriteSkill(text string) error {
	if err := os.WriteFile(filepath.Join(s.root, skillFile), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write skill: %w", err)
	}
	return nil
}
