package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"SkillForge/internal/app"
	"SkillForge/internal/config"
	"SkillForge/internal/infrastructure/llm"
	"SkillForge/internal/logging"
)

func main() {
	var (
		dir    = flag.String("dir", "", "directory of documents to analyze")
		model  = flag.String("model", "", "model name override")
		apiKey = flag.String("api-key", "", "model API key (overrides config and environment)")
		delay  = flag.Float64("delay", -1, "inter-stage delay in seconds")
		resume = flag.Bool("resume", false, "skip documents whose artifacts already exist")
		quiet  = flag.Bool("quiet", false, "only log errors")
	)
	flag.Parse()

	if *dir == "" && flag.NArg() > 0 {
		*dir = flag.Arg(0)
	}
	if *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: skillforge [-resume] [-model name] [-api-key key] <doc-dir>")
		os.Exit(2)
	}

	cfg := config.Load()
	if *model != "" {
		cfg.Model.Name = *model
	}
	if *delay >= 0 {
		cfg.Pipeline.StageDelaySeconds = *delay
	}
	if *quiet {
		cfg.Logging.Level = "error"
	}

	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, app.Options{DocDir: *dir, APIKey: *apiKey, Resume: *resume}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", formatError(err))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Error("analysis aborted", "error", err)
		fmt.Fprintf(os.Stderr, "error: %s\n", formatError(err))
		os.Exit(1)
	}

	fmt.Printf("done! output directory: %s\n", application.OutputDir())
	fmt.Println("  - level1/    first-level convention analyses")
	fmt.Println("  - level2/    second-level meta-semantic analyses")
	fmt.Println("  - scores/    review scores and ranking table")
	fmt.Println("  - summary.md cross-document summary")
	fmt.Println("  - SKILL.md   compiled writing-guidance skill")
}

// formatError adds a remediation hint to the classified failure modes.
func formatError(err error) string {
	var exhausted *llm.ExhaustedError
	if errors.As(err, &exhausted) {
		return fmt.Sprintf("%v\n  -> transient network trouble; rerun with -resume to pick up after the last completed document", err)
	}

	var credential *llm.CredentialError
	if errors.As(err, &credential) {
		return err.Error()
	}

	var attachment *llm.AttachmentError
	if errors.As(err, &attachment) {
		return fmt.Sprintf("%v\n  -> check the file is readable; rerun with -resume once fixed", err)
	}

	if errors.Is(err, config.ErrNoAPIKey) {
		return err.Error()
	}

	return err.Error()
}
