package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"SkillForge/internal/config"
	"SkillForge/internal/domain"
	"SkillForge/internal/ports"
	"SkillForge/internal/prompts"
	"SkillForge/internal/review"
)

// Stage names used in events and error context.
const (
	StageLevel1    = "level1"
	StageLevel2    = "level2"
	StageReview    = "review"
	StageAggregate = "aggregate"
	StageSkill     = "skill"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.DocumentSource
	Invoker    ports.ModelInvoker
	Store      ports.ArtifactStore
	History    ports.ResultRepository
	Events     ports.EventSink
	Logger     *slog.Logger
	Limits     config.LimitsConfig
	StageDelay time.Duration
	Resume     bool
	RunID      string
}

// Pipeline runs the full document-set analysis: three sequential model stages
// per document, score extraction, crash-safe persistence, then aggregation
// and skill compilation. Documents are processed one at a time; within a
// document the stages are strictly ordered because the review consumes the
// two earlier outputs.
type Pipeline struct {
	source     ports.DocumentSource
	invoker    ports.ModelInvoker
	store      ports.ArtifactStore
	history    ports.ResultRepository
	events     ports.EventSink
	logger     *slog.Logger
	limits     config.LimitsConfig
	stageDelay time.Duration
	resume     bool
	runID      string
	sleep      func(time.Duration)
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	runID := deps.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	return &Pipeline{
		source:     deps.Source,
		invoker:    deps.Invoker,
		store:      deps.Store,
		history:    deps.History,
		events:     deps.Events,
		logger:     deps.Logger,
		limits:     deps.Limits,
		stageDelay: deps.StageDelay,
		resume:     deps.Resume,
		runID:      runID,
		sleep:      time.Sleep,
	}
}

// Run processes every eligible document, writes the ranking table, the
// aggregate summary and the compiled skill. Any gateway failure aborts the
// run; artifacts persisted so far stay valid and a rerun with resume picks up
// after the last fully persisted document.
func (p *Pipeline) Run(ctx context.Context) error {
	docs, err := p.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no eligible documents found")
	}

	p.info("analysis started", "documents", len(docs), "resume", p.resume)

	results := make([]domain.AnalysisResult, 0, len(docs))
	for i, doc := range docs {
		var result domain.AnalysisResult

		if p.resume && p.store.HasAll(doc.Stem) {
			result, err = p.store.LoadResult(doc)
			if err != nil {
				return fmt.Errorf("resume %s: %w", doc.Name, err)
			}
			p.info("document resumed from artifacts", "doc", doc.Name,
				"progress", fmt.Sprintf("%d/%d", i+1, len(docs)), "composite", result.Composite)
		} else {
			p.info("document analysis", "doc", doc.Name, "progress", fmt.Sprintf("%d/%d", i+1, len(docs)))
			result, err = p.analyzeDocument(ctx, doc)
			if err != nil {
				p.emit(ports.Event{Kind: ports.EventTerminalError, Doc: doc.Name, Err: err})
				return fmt.Errorf("analyze %s: %w", doc.Name, err)
			}
			if err := p.store.SaveResult(result); err != nil {
				return fmt.Errorf("persist %s: %w", doc.Name, err)
			}
			if !result.Skipped {
				result.Status = domain.StatusPersisted
			}
		}

		if p.history != nil && !result.Skipped {
			if err := p.history.SaveScore(ctx, p.runID, result); err != nil {
				return fmt.Errorf("record score for %s: %w", doc.Name, err)
			}
		}

		results = append(results, result)
	}

	if err := p.store.WriteRanking(Rank(results)); err != nil {
		return err
	}

	summary, err := p.aggregate(ctx, results)
	if err != nil {
		p.emit(ports.Event{Kind: ports.EventTerminalError, Stage: StageAggregate, Err: err})
		return fmt.Errorf("aggregate: %w", err)
	}
	if err := p.store.WriteSummary(summary); err != nil {
		return err
	}

	skill, err := p.compile(ctx, summary)
	if err != nil {
		p.emit(ports.Event{Kind: ports.EventTerminalError, Stage: StageSkill, Err: err})
		return fmt.Errorf("compile skill: %w", err)
	}
	if err := p.store.WriteSkill(skill); err != nil {
		return err
	}

	p.info("analysis finished", "documents", len(results))
	return nil
}

// analyzeDocument runs the three model stages for one document and extracts
// its scores. Unreadable or empty documents short-circuit into the skipped
// placeholder without a single gateway call.
func (p *Pipeline) analyzeDocument(ctx context.Context, doc domain.Document) (domain.AnalysisResult, error) {
	if doc.Kind == domain.KindText && (doc.Unreadable || strings.TrimSpace(doc.Content) == "") {
		p.info("document skipped: unreadable or empty", "doc", doc.Name)
		placeholder := domain.SkippedPlaceholder(doc.Name)
		return domain.AnalysisResult{
			Doc:     doc,
			Level1:  placeholder,
			Level2:  placeholder,
			Scores:  map[string]int{},
			Skipped: true,
			Status:  domain.StatusSkipped,
		}, nil
	}

	result := domain.AnalysisResult{Doc: doc, Status: domain.StatusNotStarted}
	content := prompts.Clip(doc.Content, p.limits.Document)

	level1Prompt := prompts.Level1(content)
	if doc.Kind == domain.KindMultimodal {
		level1Prompt = prompts.Level1Attachment()
	}
	level1, err := p.invokeStage(ctx, doc, StageLevel1, level1Prompt)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	result.Level1 = level1
	result.Status = domain.StatusStage1Done
	p.sleep(p.stageDelay)

	level2Prompt := prompts.Level2(content)
	if doc.Kind == domain.KindMultimodal {
		level2Prompt = prompts.Level2Attachment()
	}
	level2, err := p.invokeStage(ctx, doc, StageLevel2, level2Prompt)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	result.Level2 = level2
	result.Status = domain.StatusStage2Done
	p.sleep(p.stageDelay)

	source := prompts.Clip(doc.Content, p.limits.ReviewSource)
	if doc.Kind == domain.KindMultimodal {
		source = prompts.AttachmentNote()
	}
	reviewPrompt := prompts.Review(source,
		prompts.Clip(level1, p.limits.SubAnalysis),
		prompts.Clip(level2, p.limits.SubAnalysis))
	reviewText, err := p.invokeStage(ctx, doc, StageReview, reviewPrompt)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	result.Review = reviewText
	result.Status = domain.StatusReviewed

	result.Scores, result.Composite = review.ParseScores(reviewText)
	result.Status = domain.StatusScored
	if !result.Scored() {
		p.info("review scores incomplete, composite left unscored", "doc", doc.Name,
			"resolved", len(result.Scores))
	}

	return result, nil
}

func (p *Pipeline) invokeStage(ctx context.Context, doc domain.Document, stage, prompt string) (string, error) {
	p.emit(ports.Event{Kind: ports.EventStageStarted, Doc: doc.Name, Stage: stage})
	started := time.Now()

	req := ports.ModelRequest{Prompt: prompt}
	if doc.Kind == domain.KindMultimodal {
		req.Attachment = &ports.Attachment{Path: doc.Path, MediaType: doc.MediaType}
	}

	text, err := p.invoker.Invoke(ctx, req)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", stage, err)
	}

	p.emit(ports.Event{Kind: ports.EventStageFinished, Doc: doc.Name, Stage: stage, Duration: time.Since(started)})
	return text, nil
}

// Rank orders the non-skipped results by composite score descending. Ties
// keep loader order, so a resumed run reproduces the relative ranking of a
// fresh one.
func Rank(results []domain.AnalysisResult) []domain.RankingEntry {
	eligible := make([]domain.AnalysisResult, 0, len(results))
	for _, result := range results {
		if !result.Skipped {
			eligible = append(eligible, result)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Composite > eligible[j].Composite
	})

	entries := make([]domain.RankingEntry, len(eligible))
	for i, result := range eligible {
		entries[i] = domain.RankingEntry{Result: result, Rank: i + 1}
	}
	return entries
}

// aggregate merges all real analyses into one summary via a single gateway
// call. With zero non-skipped documents no call is made and a placeholder is
// returned instead.
func (p *Pipeline) aggregate(ctx context.Context, results []domain.AnalysisResult) (string, error) {
	var level1Texts, level2Texts []string
	for _, result := range results {
		if result.Skipped {
			continue
		}
		level1Texts = append(level1Texts, result.Level1)
		level2Texts = append(level2Texts, result.Level2)
	}

	if len(level1Texts) == 0 {
		p.info("nothing to aggregate: all documents skipped")
		return "# Aggregation skipped\nNo usable analysis results.", nil
	}

	p.info("aggregating analyses", "documents", len(level1Texts))
	prompt := prompts.Aggregate(
		prompts.Clip(mergeBlocks(level1Texts), p.limits.AggregateBlock),
		prompts.Clip(mergeBlocks(level2Texts), p.limits.AggregateBlock),
		scoreSummary(results))

	text, err := p.invoker.Invoke(ctx, ports.ModelRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}
	return text, nil
}

// compile turns the aggregate summary into the final skill artifact. The
// returned structure is the prompt's responsibility; nothing is validated
// here.
func (p *Pipeline) compile(ctx context.Context, summary string) (string, error) {
	p.info("compiling skill")
	prompt := prompts.Skill(prompts.Clip(summary, p.limits.SkillInput))
	return p.invoker.Invoke(ctx, ports.ModelRequest{Prompt: prompt})
}

func mergeBlocks(texts []string) string {
	blocks := make([]string, len(texts))
	for i, text := range texts {
		blocks[i] = fmt.Sprintf("## Document %d\n%s", i+1, text)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

// scoreSummary renders one line per non-skipped document, best composite
// first: all 8 dimension scores plus the composite.
func scoreSummary(results []domain.AnalysisResult) string {
	ordered := make([]domain.AnalysisResult, 0, len(results))
	for _, result := range results {
		if !result.Skipped {
			ordered = append(ordered, result)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Composite > ordered[j].Composite
	})

	lines := make([]string, 0, len(ordered))
	for _, result := range ordered {
		cells := make([]string, 0, len(review.Dimensions))
		for _, dim := range review.Dimensions {
			if v, ok := result.Scores[dim.Name]; ok {
				cells = append(cells, strconv.Itoa(v))
			} else {
				cells = append(cells, "-")
			}
		}
		lines = append(lines, fmt.Sprintf("- %s: %s | composite %s",
			result.Doc.Name, strings.Join(cells, " | "), review.FormatComposite(result.Composite)))
	}
	return strings.Join(lines, "\n")
}

func (p *Pipeline) emit(event ports.Event) {
	if p.events != nil {
		p.events.Emit(event)
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
