package domain

// DocumentKind tells the pipeline how a document reaches the model.
type DocumentKind string

const (
	// KindText documents carry decoded content embedded into prompts.
	KindText DocumentKind = "text"
	// KindMultimodal documents are passed to the model as binary attachments.
	KindMultimodal DocumentKind = "multimodal"
)

// Document is a single file selected for analysis. Immutable once loaded.
type Document struct {
	Stem       string
	Name       string
	Path       string
	Kind       DocumentKind
	Content    string
	MediaType  string
	Unreadable bool
}

// StageStatus enumerates per-document pipeline milestones.
type StageStatus string

const (
	StatusNotStarted StageStatus = "not_started"
	StatusStage1Done StageStatus = "stage1_done"
	StatusStage2Done StageStatus = "stage2_done"
	StatusReviewed   StageStatus = "reviewed"
	StatusScored     StageStatus = "scored"
	StatusPersisted  StageStatus = "persisted"
	StatusSkipped    StageStatus = "skipped"
)

// AnalysisResult holds the three stage outputs of one document together with
// its extracted review scores. Stage texts are never mutated once set; only
// the score map and composite may be recomputed from the persisted review.
type AnalysisResult struct {
	Doc       Document
	Level1    string
	Level2    string
	Review    string
	Scores    map[string]int
	Composite float64
	Skipped   bool
	Status    StageStatus
}

// Scored reports whether the review yielded a complete score set. The
// composite can only be zero when extraction failed: a full score set has a
// weighted sum of at least 1.0.
func (r AnalysisResult) Scored() bool {
	return !r.Skipped && r.Composite != 0
}

// RankingEntry pairs a result with its position in the composite-score
// ranking. Recomputed on every run, never persisted.
type RankingEntry struct {
	Result AnalysisResult
	Rank   int
}

// SkippedHeading tags placeholder stage texts of documents that never reached
// the model; persisted artifacts starting with it are recognized as skipped
// on resume.
const SkippedHeading = "# Analysis skipped"

// SkippedPlaceholder renders the stage text stored for unreadable or empty
// documents.
func SkippedPlaceholder(name string) string {
	return SkippedHeading + "\nDocument unreadable or empty: " + name
}
