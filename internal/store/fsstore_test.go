package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"SkillForge/internal/domain"
	"SkillForge/internal/review"
)

func reviewTextWithScores(values []int) string {
	var b strings.Builder
	b.WriteString("Per-dimension remarks.\n\n## Score Summary\n")
	for i, dim := range review.Dimensions {
		fmt.Fprintf(&b, "Dimension %d - %s: %d\n", i+1, dim.Name, values[i])
	}
	return b.String()
}

func scoredResult(t *testing.T, name string, values []int) domain.AnalysisResult {
	t.Helper()

	text := reviewTextWithScores(values)
	scores, composite := review.ParseScores(text)
	if len(scores) != len(review.Dimensions) {
		t.Fatalf("fixture scores incomplete: %v", scores)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return domain.AnalysisResult{
		Doc:       domain.Document{Stem: stem, Name: name, Kind: domain.KindText, Content: "body"},
		Level1:    "level1 analysis of " + name,
		Level2:    "level2 analysis of " + name,
		Review:    text,
		Scores:    scores,
		Composite: composite,
		Status:    domain.StatusScored,
	}
}

func TestSaveAndReloadResult(t *testing.T) {
	t.Parallel()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "_analysis"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	result := scoredResult(t, "alpha.md", []int{5, 4, 5, 4, 4, 5, 4, 5})

	if fs.HasAll("alpha") {
		t.Fatal("HasAll true before save")
	}
	if err := fs.SaveResult(result); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}
	if !fs.HasAll("alpha") {
		t.Fatal("HasAll false after save")
	}

	loaded, err := fs.LoadResult(result.Doc)
	if err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if loaded.Level1 != result.Level1 || loaded.Level2 != result.Level2 {
		t.Fatal("stage texts did not round-trip")
	}
	if loaded.Composite != 4.5 {
		t.Fatalf("loaded composite = %v, want 4.5", loaded.Composite)
	}
	if len(loaded.Scores) != len(review.Dimensions) {
		t.Fatalf("loaded %d scores, want %d", len(loaded.Scores), len(review.Dimensions))
	}
	if loaded.Skipped {
		t.Fatal("loaded result wrongly marked skipped")
	}
}

func TestScoreRecordShape(t *testing.T) {
	t.Parallel()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "_analysis"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	result := scoredResult(t, "alpha.md", []int{5, 4, 5, 4, 4, 5, 4, 5})
	if err := fs.SaveResult(result); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(fs.Root(), "scores", "alpha_score.md"))
	if err != nil {
		t.Fatalf("read score record: %v", err)
	}
	record := string(raw)

	if !strings.Contains(record, "**4.5/5**") {
		t.Fatalf("record missing composite line:\n%s", record)
	}
	if !strings.Contains(record, "- **Factual Accuracy** (weight 20%): 5") {
		t.Fatalf("record missing dimension line:\n%s", record)
	}
	// The embedded review must stay parseable by the same extractor on resume.
	scores, composite := review.ParseScores(record)
	if len(scores) != len(review.Dimensions) || composite != 4.5 {
		t.Fatalf("record not re-parseable: %d scores, composite %v", len(scores), composite)
	}
}

func TestLoadResultPrefersRecordedComposite(t *testing.T) {
	t.Parallel()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "_analysis"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	doc := domain.Document{Stem: "beta", Name: "beta.md", Kind: domain.KindText}
	// A record whose embedded review no longer parses but whose composite
	// line survives.
	record := "# beta.md quality review\n\n## Composite Score\n\n**3.5/5**\n\n---\n\n## Full Review\n\nfree text only\n"
	for path, body := range map[string]string{
		filepath.Join(fs.Root(), "level1", "beta_L1.md"):    "l1",
		filepath.Join(fs.Root(), "level2", "beta_L2.md"):    "l2",
		filepath.Join(fs.Root(), "scores", "beta_score.md"): record,
	} {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture %s: %v", path, err)
		}
	}

	loaded, err := fs.LoadResult(doc)
	if err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if loaded.Composite != 3.5 {
		t.Fatalf("composite = %v, want 3.5 from recorded line", loaded.Composite)
	}
	if loaded.Scored() != true {
		t.Fatal("result with recorded composite should count as scored")
	}
}

func TestLoadResultDetectsSkipped(t *testing.T) {
	t.Parallel()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "_analysis"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	doc := domain.Document{Stem: "empty", Name: "empty.txt", Kind: domain.KindText, Unreadable: true}
	skipped := domain.AnalysisResult{
		Doc:     doc,
		Level1:  domain.SkippedPlaceholder(doc.Name),
		Level2:  domain.SkippedPlaceholder(doc.Name),
		Scores:  map[string]int{},
		Skipped: true,
		Status:  domain.StatusSkipped,
	}
	if err := fs.SaveResult(skipped); err != nil {
		t.Fatalf("SaveResult: %v", err)
	}

	loaded, err := fs.LoadResult(doc)
	if err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
	if !loaded.Skipped {
		t.Fatal("skipped marker lost on reload")
	}
	if loaded.Status != domain.StatusSkipped {
		t.Fatalf("status = %s, want %s", loaded.Status, domain.StatusSkipped)
	}
}

func TestWriteRankingOrdersByComposite(t *testing.T) {
	t.Parallel()

	fs, err := NewFileStore(filepath.Join(t.TempDir(), "_analysis"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	high := scoredResult(t, "a.md", []int{5, 4, 5, 4, 4, 5, 4, 5})
	low := domain.AnalysisResult{
		Doc:    domain.Document{Stem: "b", Name: "b.md", Kind: domain.KindText},
		Scores: map[string]int{},
	}

	entries := []domain.RankingEntry{
		{Result: high, Rank: 1},
		{Result: low, Rank: 2},
	}
	if err := fs.WriteRanking(entries); err != nil {
		t.Fatalf("WriteRanking: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(fs.Root(), "scores", "ranking.md"))
	if err != nil {
		t.Fatalf("read ranking: %v", err)
	}
	table := string(raw)

	aRow := strings.Index(table, "| 1 | a.md |")
	bRow := strings.Index(table, "| 2 | b.md |")
	if aRow < 0 || bRow < 0 || aRow > bRow {
		t.Fatalf("unexpected ranking table:\n%s", table)
	}
	if !strings.Contains(table, "**4.5**") {
		t.Fatalf("ranking table missing composite 4.5:\n%s", table)
	}
	if !strings.Contains(table, "**0.0**") {
		t.Fatalf("ranking table missing sentinel row:\n%s", table)
	}
}
