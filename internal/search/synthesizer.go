package search

import (
	"fmt"
	"strings"

	"github.com/ppiankov/debatelens/internal/model"
)

// Query policies
const (
	PolicyDual   = "dual"
	PolicySingle = "single"
)

// Static framing suffixes. Queries are never rewritten beyond appending one.
const (
	ProSuffix     = " benefits advantages positive impact supporting evidence research findings"
	ConSuffix     = " criticism risks negative impact opposing view counterargument concerns debate"
	NeutralSuffix = " research analysis expert debate evidence"
)

// Synthesizer builds web search queries from a claim
type Synthesizer struct {
	policy string
}

// NewSynthesizer creates a synthesizer for a policy ("dual" or "single").
// An empty policy means dual.
func NewSynthesizer(policy string) (*Synthesizer, error) {
	switch p := strings.ToLower(strings.TrimSpace(policy)); p {
	case "", PolicyDual:
		return &Synthesizer{policy: PolicyDual}, nil
	case PolicySingle:
		return &Synthesizer{policy: PolicySingle}, nil
	default:
		return nil, fmt.Errorf("unknown search policy %q (supported: dual, single)", policy)
	}
}

// Policy returns the active policy name
func (s *Synthesizer) Policy() string {
	return s.policy
}

// Queries returns the queries for a claim, pro before con under the dual policy
func (s *Synthesizer) Queries(claim string) []model.Query {
	claim = strings.TrimSpace(claim)
	if s.policy == PolicySingle {
		return []model.Query{{Text: claim + NeutralSuffix, Stance: model.StanceNeutral}}
	}
	return []model.Query{
		{Text: claim + ProSuffix, Stance: model.StancePro},
		{Text: claim + ConSuffix, Stance: model.StanceCon},
	}
}
