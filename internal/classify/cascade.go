// Package classify decides whether a claim is debatable.
//
// A Cascade is an ordered list of steps evaluated first-match-wins. Lexical
// steps come from the rules package; remote steps wrap a generative provider
// and a zero-shot classifier. Remote failures are recorded in the trace and
// otherwise ignored, so Classify always returns a label.
package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/debatelens/internal/cache"
	"github.com/ppiankov/debatelens/internal/llm"
	"github.com/ppiankov/debatelens/internal/logging"
	"github.com/ppiankov/debatelens/internal/model"
)

// DecidedByDefault is recorded when no step fired
const DecidedByDefault = "default"

// Cascade evaluates steps in order until one produces a label
type Cascade struct {
	steps    []Step
	fallback model.Label
	logger   *zap.Logger
}

// New creates a cascade over steps. A nil logger is replaced by a no-op one.
func New(steps []Step, logger *zap.Logger) *Cascade {
	return &Cascade{
		steps:    steps,
		fallback: model.LabelNonDebatable,
		logger:   logging.OrNop(logger),
	}
}

// Steps returns the step names in evaluation order
func (c *Cascade) Steps() []string {
	names := make([]string, len(c.steps))
	for i, s := range c.steps {
		names[i] = s.Name()
	}
	return names
}

// Classify labels one claim. The returned trace lists every step consulted.
func (c *Cascade) Classify(ctx context.Context, claim model.Claim) model.ClassificationResult {
	text := strings.TrimSpace(claim.Text)
	result := model.ClassificationResult{
		ClaimID:   claim.ID,
		ClaimText: text,
	}

	for _, step := range c.steps {
		outcome := step.Attempt(ctx, text)

		trace := model.StepTrace{
			Step:   step.Name(),
			Fired:  outcome.Decided(),
			Label:  outcome.Label,
			Marker: outcome.Marker,
		}
		if outcome.Failure != nil {
			trace.Failure = string(outcome.Failure.Reason)
			if outcome.Failure.Err != nil {
				trace.Error = outcome.Failure.Err.Error()
			}
			c.logger.Debug("cascade step failed",
				zap.Int("claim_id", claim.ID),
				zap.String("step", step.Name()),
				zap.String("reason", trace.Failure),
				zap.Error(outcome.Failure.Err))
		}
		result.Trace = append(result.Trace, trace)

		if outcome.Decided() {
			result.Label = outcome.Label
			result.DecidedBy = step.Name()
			return result
		}
	}

	result.Label = c.fallback
	result.DecidedBy = DecidedByDefault
	return result
}

// Deps are the remote collaborators a cascade may use.
// Nil fields make the matching layer report "unavailable".
type Deps struct {
	Provider llm.Provider
	ZeroShot Ranker
	Cache    cache.Cache
	Logger   *zap.Logger
}

// FromConfig builds the cascade named by cfg.Cascade.Layers.
// Unknown or repeated layer names are configuration errors.
func FromConfig(cfg *model.Config, deps Deps) (*Cascade, error) {
	layers := cfg.Cascade.Layers
	if len(layers) == 0 {
		layers = model.DefaultLayers
	}

	seen := make(map[string]bool, len(layers))
	steps := make([]Step, 0, len(layers))
	for _, raw := range layers {
		name := strings.ToLower(strings.TrimSpace(raw))
		if seen[name] {
			return nil, fmt.Errorf("cascade layer %q listed twice", name)
		}
		seen[name] = true

		switch name {
		case LayerAuthoritative:
			steps = append(steps, AuthoritativeStep())
		case LayerScientific:
			steps = append(steps, ScientificStep())
		case LayerImpact:
			steps = append(steps, ImpactStep())
		case LayerModal:
			steps = append(steps, ModalStep())
		case LayerAttribution:
			steps = append(steps, AttributionStep())
		case LayerPrimaryOracle:
			if deps.Provider == nil {
				steps = append(steps, unavailableStep{name: name, reason: "no LLM provider configured"})
				continue
			}
			timeout := time.Duration(cfg.Oracle.Primary.Timeout) * time.Second
			steps = append(steps, NewPrimaryOracle(deps.Provider, cfg.Oracle.Primary.Model, deps.Cache, timeout))
		case LayerZeroShot:
			if deps.ZeroShot == nil || !cfg.Oracle.ZeroShot.Enabled {
				steps = append(steps, unavailableStep{name: name, reason: "zero-shot classifier disabled"})
				continue
			}
			steps = append(steps, NewZeroShotOracle(deps.ZeroShot, deps.Cache))
		default:
			return nil, fmt.Errorf("unknown cascade layer %q (supported: %s)", raw, strings.Join(knownLayers, ", "))
		}
	}

	return New(steps, deps.Logger), nil
}

var knownLayers = []string{
	LayerAuthoritative, LayerScientific, LayerImpact, LayerModal,
	LayerAttribution, LayerPrimaryOracle, LayerZeroShot,
}
