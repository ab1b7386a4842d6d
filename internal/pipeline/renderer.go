package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"

	"github.com/ppiankov/debatelens/internal/model"
)

const footer = "_Labels describe whether a claim is open to reasonable disagreement, not whether it is true. " +
	"Evidence is retrieved from the open web and shown as found._"

// Renderer writes reports as JSON, Markdown and a terminal summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// WriteJSON encodes the report as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

// RenderJSON writes the report as JSON to path, creating parent directories
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		return r.WriteJSON(w, report)
	})
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, r.Markdown(report))
		return err
	})
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	b.WriteString("# Debatability Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Claims: %d (%d debatable, %d non-debatable)\n\n",
		report.Summary.TotalClaims, report.Summary.Debatable, report.Summary.NonDebatable)

	if report.Input != "" {
		b.WriteString("## Input\n\n")
		for _, line := range strings.Split(strings.TrimSpace(report.Input), "\n") {
			fmt.Fprintf(&b, "> %s\n", line)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Claims\n\n")
	overview := table.NewWriter()
	overview.AppendHeader(table.Row{"#", "Claim", "Label", "Decided by", "Evidence"})
	for _, c := range report.Claims {
		overview.AppendRow(table.Row{c.ClaimID, c.ClaimText, c.Label, c.DecidedBy, len(c.EvidenceChunks)})
	}
	b.WriteString(overview.RenderMarkdown())
	b.WriteString("\n\n")

	for _, c := range report.Claims {
		if len(c.EvidenceChunks) == 0 && len(c.Trace) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### Claim %d\n\n", c.ClaimID)
		fmt.Fprintf(&b, "%s\n\n", c.ClaimText)
		fmt.Fprintf(&b, "**Label:** %s (decided by `%s`)\n\n", c.Label, c.DecidedBy)

		if len(c.Trace) > 0 {
			b.WriteString("**Trace:**\n\n")
			for _, t := range c.Trace {
				b.WriteString(traceLine(t))
			}
			b.WriteString("\n")
		}

		for i, ch := range c.EvidenceChunks {
			source := ch.Source
			if source == "" {
				source = ch.URL
			}
			fmt.Fprintf(&b, "%d. [%s](%s) · %s · %s\n\n", i+1, source, ch.URL, ch.Stance, ch.Authority)
			fmt.Fprintf(&b, "   > %s\n\n", strings.ReplaceAll(ch.Content, "\n", " "))
		}
	}

	if len(report.Summary.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, s := range report.Summary.Signals {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", s.Type, s.Severity, s.Description)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString(footer)
		b.WriteString("\n")
	}

	return b.String()
}

// RenderSummary prints a compact table of the run
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"#", "Label", "Decided by", "Chunks", "Claim"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, WidthMax: 60},
	})
	for _, c := range report.Claims {
		tw.AppendRow(table.Row{c.ClaimID, c.Label, c.DecidedBy, len(c.EvidenceChunks), c.ClaimText})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d debatable", report.Summary.Debatable), "",
		report.Summary.TotalChunks, fmt.Sprintf("%d sources", report.Summary.DistinctSources)})
	tw.Render()

	for _, s := range report.Summary.Signals {
		if s.Severity == model.SeverityInfo {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: %s\n", strings.ToUpper(string(s.Severity)), s.Description)
	}
}

// RenderReport writes the requested outputs and prints the summary to w
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, w io.Writer) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logger.Info("wrote JSON report", zap.String("path", jsonPath))
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logger.Info("wrote Markdown report", zap.String("path", mdPath))
	}

	if w != nil {
		p.renderer.RenderSummary(w, report)
	}
	return nil
}

func traceLine(t model.StepTrace) string {
	switch {
	case t.Fired && t.Marker != "":
		return fmt.Sprintf("- `%s` fired on %q → %s\n", t.Step, t.Marker, t.Label)
	case t.Fired:
		return fmt.Sprintf("- `%s` fired → %s\n", t.Step, t.Label)
	case t.Failure != "":
		return fmt.Sprintf("- `%s` failed: %s\n", t.Step, t.Failure)
	default:
		return fmt.Sprintf("- `%s` passed\n", t.Step)
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
