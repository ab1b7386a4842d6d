package classify

import (
	"context"

	"github.com/ppiankov/debatelens/internal/model"
	"github.com/ppiankov/debatelens/internal/rules"
)

// Step is one layer of the cascade
type Step interface {
	Name() string
	Attempt(ctx context.Context, text string) Outcome
}

// Layer names accepted in Config.Cascade.Layers
const (
	LayerAuthoritative = "authoritative"
	LayerScientific    = "scientific"
	LayerImpact        = "impact"
	LayerModal         = "modal"
	LayerAttribution   = "attribution"
	LayerPrimaryOracle = "primary_oracle"
	LayerZeroShot      = "zero_shot"
)

// RuleStep fires a fixed label when its matcher finds a marker
type RuleStep struct {
	name  string
	label model.Label
	match func(text string) (string, bool)
}

// NewRuleStep creates a lexical step
func NewRuleStep(name string, label model.Label, match func(string) (string, bool)) *RuleStep {
	return &RuleStep{name: name, label: label, match: match}
}

// Name returns the step name
func (s *RuleStep) Name() string {
	return s.name
}

// Attempt runs the matcher. Lexical steps never fail.
func (s *RuleStep) Attempt(_ context.Context, text string) Outcome {
	if marker, ok := s.match(text); ok {
		return Decide(s.label, marker)
	}
	return NoSignal()
}

// AuthoritativeStep marks statistics with a year, or named official sources,
// as settled fact
func AuthoritativeStep() *RuleStep {
	return NewRuleStep(LayerAuthoritative, model.LabelNonDebatable, rules.MatchAuthoritative)
}

// ScientificStep protects neutral reporting of research and missions, unless
// the claim also makes an impact prediction
func ScientificStep() *RuleStep {
	return NewRuleStep(LayerScientific, model.LabelNonDebatable, func(text string) (string, bool) {
		if rules.HasImpactMarker(text) {
			return "", false
		}
		return rules.MatchScientific(text)
	})
}

// ImpactStep flags transformation and disruption language
func ImpactStep() *RuleStep {
	return NewRuleStep(LayerImpact, model.LabelDebatable, rules.MatchImpact)
}

// ModalStep flags hedging and forecasting language
func ModalStep() *RuleStep {
	return NewRuleStep(LayerModal, model.LabelDebatable, rules.MatchModal)
}

// AttributionStep flags reported stances ("critics argue", "experts say")
func AttributionStep() *RuleStep {
	return NewRuleStep(LayerAttribution, model.LabelDebatable, rules.MatchAttribution)
}

// unavailableStep stands in for a remote step that is not configured
type unavailableStep struct {
	name   string
	reason string
}

func (s unavailableStep) Name() string { return s.name }

func (s unavailableStep) Attempt(context.Context, string) Outcome {
	return Failed(ReasonUnavailable, errUnavailable(s.reason))
}

type errUnavailable string

func (e errUnavailable) Error() string { return string(e) }
