package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ppiankov/debatelens/internal/pipeline"
)

var classifyJSON bool

// classifyCmd labels claims without searching for evidence
var classifyCmd = &cobra.Command{
	Use:   "classify [claims-file]",
	Short: "Label claims as debatable or non-debatable without evidence retrieval",
	Long: `Classify runs each claim through the classification cascade only.
No search or page fetch is made; remote oracles are consulted only when the
lexical layers do not decide.

Example:
  debatelens classify claims.txt
  debatelens classify --claim "Scientists believe the vaccine could reduce transmission." --trace --json-out`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringArrayVar(&claimFlags, "claim", nil, "claim to classify (repeatable)")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json-out", false, "print results as JSON instead of a table")
	addPipelineFlags(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, pipelineFlagKeys); err != nil {
		return err
	}

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	claims, err := collectClaims(args)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results := p.Classify(ctx, claims)

	if classifyJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Label", "Decided by", "Claim"})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 4, WidthMax: 70}})
	for _, r := range results {
		tw.AppendRow(table.Row{r.ClaimID, r.Label, r.DecidedBy, r.ClaimText})
	}
	tw.Render()
	return nil
}
