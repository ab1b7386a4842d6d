// Package pipeline sequences claims through classification and evidence
// harvesting and assembles the report.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/debatelens/internal/logging"
	"github.com/ppiankov/debatelens/internal/model"
	"github.com/ppiankov/debatelens/internal/score"
	"github.com/ppiankov/debatelens/internal/worker"
)

// DecidedByError marks a claim whose processing panicked
const DecidedByError = "error"

// Classifier labels one claim
type Classifier interface {
	Classify(ctx context.Context, claim model.Claim) model.ClassificationResult
}

// Harvester gathers evidence for one debatable claim
type Harvester interface {
	Harvest(ctx context.Context, claim model.Claim) []model.EvidenceChunk
}

// ClaimExtractor splits a paragraph into claims
type ClaimExtractor interface {
	Extract(ctx context.Context, paragraph string) []model.Claim
}

// Components are the collaborators a Pipeline drives
type Components struct {
	Cascade   Classifier
	Harvester Harvester
	Extractor ClaimExtractor // Only needed by AnalyzeText
	Logger    *zap.Logger
}

// Pipeline orchestrates the complete analysis
type Pipeline struct {
	cascade   Classifier
	harvester Harvester
	extractor ClaimExtractor
	scorer    *score.Scorer
	renderer  *Renderer
	config    *model.Config
	logger    *zap.Logger
}

// New creates a pipeline over explicit components
func New(cfg *model.Config, c Components) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if c.Cascade == nil {
		return nil, errors.New("pipeline needs a classifier")
	}
	if c.Harvester == nil {
		return nil, errors.New("pipeline needs a harvester")
	}

	return &Pipeline{
		cascade:   c.Cascade,
		harvester: c.Harvester,
		extractor: c.Extractor,
		scorer:    score.NewScorer(),
		renderer:  NewRenderer(cfg.Output.IncludeFooter),
		config:    cfg,
		logger:    logging.OrNop(c.Logger),
	}, nil
}

// Process classifies one claim and harvests evidence when it is debatable.
// It satisfies worker.ClaimProcessor.
func (p *Pipeline) Process(ctx context.Context, claim model.Claim) model.EnrichedClaim {
	result := p.cascade.Classify(ctx, claim)

	enriched := model.EnrichedClaim{
		ClaimID:        claim.ID,
		ClaimText:      result.ClaimText,
		Label:          result.Label,
		DecidedBy:      result.DecidedBy,
		EvidenceChunks: []model.EvidenceChunk{},
	}
	if p.config.Output.IncludeTrace {
		enriched.Trace = result.Trace
	}

	if result.Label.IsDebatable() {
		if chunks := p.harvester.Harvest(ctx, claim); chunks != nil {
			enriched.EvidenceChunks = chunks
		}
	}

	p.logger.Debug("claim processed",
		zap.Int("claim_id", claim.ID),
		zap.String("label", string(enriched.Label)),
		zap.String("decided_by", enriched.DecidedBy),
		zap.Int("chunks", len(enriched.EvidenceChunks)))
	return enriched
}

// Analyze runs every non-empty claim through the cascade and, for debatable
// claims, the harvester. Output follows input order. Claims still pending
// when the run deadline passes keep their lexical label and get no evidence.
func (p *Pipeline) Analyze(ctx context.Context, claims []model.Claim) []model.EnrichedClaim {
	claims = nonEmpty(claims)

	runCtx, cancel := p.withDeadline(ctx)
	defer cancel()

	batch := worker.NewBatchProcessor(p, p.config.Concurrency.ClaimWorkers)
	results := batch.ProcessClaims(runCtx, claims)

	out := make([]model.EnrichedClaim, len(results))
	for i, r := range results {
		switch {
		case !r.Done:
			out[i] = p.unfinished(runCtx, claims[i])
		case r.Error != nil:
			p.logger.Error("claim processing failed", zap.Int("claim_id", claims[i].ID), zap.Error(r.Error))
			out[i] = r.Claim
			if out[i].Label == "" {
				out[i].Label = model.LabelNonDebatable
				out[i].DecidedBy = DecidedByError
			}
		default:
			out[i] = r.Claim
		}
	}
	return out
}

// unfinished labels a claim the batch never reached. The run context is
// already done, so remote steps fail fast and lexical steps still decide.
func (p *Pipeline) unfinished(runCtx context.Context, claim model.Claim) model.EnrichedClaim {
	p.logger.Warn("run deadline reached before claim was processed", zap.Int("claim_id", claim.ID))

	result := p.cascade.Classify(runCtx, claim)
	enriched := model.EnrichedClaim{
		ClaimID:        claim.ID,
		ClaimText:      result.ClaimText,
		Label:          result.Label,
		DecidedBy:      result.DecidedBy,
		EvidenceChunks: []model.EvidenceChunk{},
	}
	if p.config.Output.IncludeTrace {
		enriched.Trace = result.Trace
	}
	return enriched
}

// Classify labels claims without harvesting evidence
func (p *Pipeline) Classify(ctx context.Context, claims []model.Claim) []model.ClassificationResult {
	claims = nonEmpty(claims)

	runCtx, cancel := p.withDeadline(ctx)
	defer cancel()

	out := make([]model.ClassificationResult, 0, len(claims))
	for _, c := range claims {
		result := p.cascade.Classify(runCtx, c)
		if !p.config.Output.IncludeTrace {
			result.Trace = nil
		}
		out = append(out, result)
	}
	return out
}

// AnalyzeText extracts claims from a paragraph and analyzes them
func (p *Pipeline) AnalyzeText(ctx context.Context, paragraph string) ([]model.EnrichedClaim, error) {
	if p.extractor == nil {
		return nil, errors.New("no claim extractor configured")
	}
	claims := p.extractor.Extract(ctx, paragraph)
	p.logger.Info("claims extracted", zap.Int("claims", len(claims)))
	return p.Analyze(ctx, claims), nil
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// Report wraps enriched claims with a run id and summary
func (p *Pipeline) Report(input string, claims []model.EnrichedClaim) *model.Report {
	if claims == nil {
		claims = []model.EnrichedClaim{}
	}
	return &model.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Input:       input,
		Claims:      claims,
		Summary:     p.scorer.Summarize(claims),
	}
}

func (p *Pipeline) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := p.config.Pipeline.Deadline; d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// nonEmpty drops claims with blank text
func nonEmpty(claims []model.Claim) []model.Claim {
	out := make([]model.Claim, 0, len(claims))
	for _, c := range claims {
		if strings.TrimSpace(c.Text) != "" {
			out = append(out, c)
		}
	}
	return out
}
