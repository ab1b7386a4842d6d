package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/debatelens/internal/model"
	"github.com/ppiankov/debatelens/internal/pipeline"
	"github.com/ppiankov/debatelens/internal/worker"
)

var (
	outJSON    string
	outMD      string
	inputText  string
	claimFlags []string
	noCache    bool
	noFooter   bool
)

// Flag → config key bindings shared by analyze and classify
var pipelineFlagKeys = map[string]string{
	"workers":      "concurrency.claim_workers",
	"deadline":     "pipeline.deadline",
	"layers":       "cascade.layers",
	"llm-provider": "oracle.primary.provider",
	"llm-model":    "oracle.primary.model",
	"zero-shot":    "oracle.zero_shot.enabled",
	"trace":        "output.include_trace",
}

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [claims-file]",
	Short: "Classify claims and gather evidence for the debatable ones",
	Long: `Analyze runs each claim through the classification cascade and, for
debatable claims, searches the web for pro and con framings and keeps the
qualifying paragraphs of each result page.

Claims come from a file (.txt one per line, .json or .yaml), from --claim,
or are extracted from a paragraph given with --text ("-" reads stdin).

Example:
  debatelens analyze claims.txt --md report.md
  debatelens analyze --claim "Remote work will revolutionize cities."
  debatelens analyze --text "The World Bank reported GDP grew 3.2% in 2020. Critics argue it will not last."
  cat article.txt | debatelens analyze --text - --json report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (default: stdout when --md is not set)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")
	analyzeCmd.Flags().StringVar(&inputText, "text", "", `paragraph to extract claims from ("-" reads stdin)`)
	analyzeCmd.Flags().StringArrayVar(&claimFlags, "claim", nil, "claim to analyze (repeatable)")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	analyzeCmd.Flags().String("policy", "", "query policy: dual or single")
	addPipelineFlags(analyzeCmd)
}

// addPipelineFlags registers the flags listed in pipelineFlagKeys
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 0, "claims processed concurrently")
	cmd.Flags().Duration("deadline", 0, "overall run deadline")
	cmd.Flags().StringSlice("layers", nil, "cascade layers in order (e.g. authoritative,impact,modal)")
	cmd.Flags().String("llm-provider", "", "primary oracle provider (openai, anthropic, gemini, ollama)")
	cmd.Flags().String("llm-model", "", "primary oracle model name")
	cmd.Flags().Bool("zero-shot", true, "consult the zero-shot classifier")
	cmd.Flags().Bool("trace", false, "include the per-step trace in output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	keys := map[string]string{"policy": "search.policy"}
	for k, v := range pipelineFlagKeys {
		keys[k] = v
	}
	if err := bindFlags(cmd, keys); err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	report, err := analyzeInput(ctx, p, args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	logger.Info("analysis complete",
		zap.Int("claims", report.Summary.TotalClaims),
		zap.Int("debatable", report.Summary.Debatable),
		zap.Int("chunks", report.Summary.TotalChunks))

	if outJSON == "" && outMD == "" {
		if err := p.Renderer().WriteJSON(cmd.OutOrStdout(), report); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		return nil
	}
	return p.RenderReport(report, outJSON, outMD, cmd.ErrOrStderr())
}

// analyzeInput picks the claim source named by the flags and arguments
func analyzeInput(ctx context.Context, p *pipeline.Pipeline, args []string, stdin io.Reader) (*model.Report, error) {
	if inputText != "" {
		text, err := readText(inputText, stdin)
		if err != nil {
			return nil, err
		}
		claims, err := p.AnalyzeText(ctx, text)
		if err != nil {
			return nil, err
		}
		return p.Report(text, claims), nil
	}

	claims, err := collectClaims(args)
	if err != nil {
		return nil, err
	}
	return p.Report("", p.Analyze(ctx, claims)), nil
}

// collectClaims reads claims from the file argument or --claim flags
func collectClaims(args []string) ([]model.Claim, error) {
	var claims []model.Claim
	if len(args) == 1 {
		fromFile, err := worker.ReadClaimsFromFile(args[0])
		if err != nil {
			return nil, err
		}
		claims = fromFile
	}
	for _, text := range claimFlags {
		if text = strings.TrimSpace(text); text != "" {
			claims = append(claims, model.Claim{ID: len(claims) + 1, Text: text})
		}
	}
	if len(claims) == 0 {
		return nil, errors.New("no claims given: pass a claims file, --claim or --text")
	}
	return claims, nil
}

func readText(value string, stdin io.Reader) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
