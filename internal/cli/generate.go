package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/factgraph/internal/extract"
	"github.com/ppiankov/factgraph/internal/logger"
	"github.com/ppiankov/factgraph/internal/model"
	"github.com/ppiankov/factgraph/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	genTimeout time.Duration
	genNoCache bool
	genPrint   bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <text-file>",
	Short: "Generate facts from text with an LLM and build the graph",
	Long: `Generate splits a text (or the visible text of an HTML file) into
chunks, asks the configured LLM for knowledge-graph facts per chunk and
materializes the result like "factgraph build".

A failed chunk is reported and skipped. Responses are cached, so re-running
after an interrupted pass does not query the provider again.

Example:
  factgraph generate notes.txt --out ./vault
  factgraph generate page.html --provider openai --model gpt-4o-mini
  factgraph generate notes.txt --provider ollama --model llama3 --print`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd.Flags(), buildFlagKeys); err != nil {
			return err
		}
		return bindFlags(cmd.Flags(), generateFlagKeys)
	},
	RunE: runGenerate,
}

// generateFlagKeys maps generation flags to config keys
var generateFlagKeys = map[string]string{
	"provider":          "llm.provider",
	"model":             "llm.model",
	"workers":           "concurrency.workers",
	"chunk-size":        "chunking.size",
	"review":            "llm.review",
	"domain":            "llm.domain",
	"keep-intermediate": "output.keep_intermediate",
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addGraphFlags(generateCmd)

	defaults := model.DefaultConfig()
	generateCmd.Flags().String("provider", defaults.LLM.Provider, "LLM provider (openai, anthropic, ollama)")
	generateCmd.Flags().String("model", defaults.LLM.Model, "LLM model name")
	generateCmd.Flags().Int("workers", defaults.Concurrency.Workers, "concurrent chunk requests")
	generateCmd.Flags().Int("chunk-size", defaults.Chunking.Size, "max characters per chunk")
	generateCmd.Flags().Bool("review", defaults.LLM.Review, "send each answer back for a correction pass")
	generateCmd.Flags().String("domain", defaults.LLM.Domain, "subject area named in the review prompt")
	generateCmd.Flags().Bool("keep-intermediate", defaults.Output.KeepIntermediate, "keep generated/content.txt and content.pl under the output root")
	generateCmd.Flags().BoolVar(&genNoCache, "no-cache", false, "disable the response cache (force fresh requests)")
	generateCmd.Flags().BoolVar(&genPrint, "print", false, "print generated facts to stdout instead of building")
	generateCmd.Flags().DurationVar(&genTimeout, "timeout", 30*time.Minute, "overall generation timeout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if genNoCache {
		cfg.Cache.Enabled = false
	}
	if err := requireCredentials(cfg); err != nil {
		return err
	}

	content, err := readInput(args[0])
	if err != nil {
		return err
	}
	text, err := extract.SourceText(args[0], content)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	ctx, cancel := commandContext(genTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Generating: %s\n", args[0])
		fmt.Fprintf(os.Stderr, "LLM:        %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(os.Stderr, "Cache:      %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(ctx, cfg, logger.Get())
	if err != nil {
		return err
	}
	defer func() { _ = p.Close(context.Background()) }()

	if genPrint {
		raw, failures, err := p.Generate(ctx, text)
		for _, f := range failures {
			fmt.Fprintf(os.Stderr, "⚠ %v\n", f)
		}
		if err != nil {
			return fmt.Errorf("generate failed: %w", err)
		}
		fmt.Println(raw)
		return nil
	}

	report, err := p.Run(ctx, text)
	if err != nil {
		if report != nil {
			_ = p.RenderReport(report, reportPath(cfg), cfg.Output.Verbose)
		}
		return fmt.Errorf("generate failed: %w", err)
	}

	return p.RenderReport(report, reportPath(cfg), cfg.Output.Verbose)
}

// requireCredentials fails early when the chosen provider has no API key
func requireCredentials(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "":
		return fmt.Errorf("no LLM provider configured (use --provider or llm.provider)")
	}
	return nil
}
