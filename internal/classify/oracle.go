package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/debatelens/internal/cache"
	"github.com/ppiankov/debatelens/internal/llm"
	"github.com/ppiankov/debatelens/internal/model"
)

// oracleInstruction restricts the generative oracle to one of the two labels
const oracleInstruction = `You are a strict claim classifier.

Decide whether the claim below is DEBATABLE or NON-DEBATABLE.

A claim is debatable if it expresses an opinion, a prediction, an evaluation,
or a normative judgment that reasonable people can disagree with.
A claim is non-debatable if it is verifiable, historical, or neutrally
reported without evaluation.

Answer with exactly one word: debatable or non-debatable.`

// Zero-shot candidate descriptions, in the order they are sent
const (
	factualCandidate   = "pure factual statement"
	debatableCandidate = "claim that people can reasonably disagree about"
)

// ParseOracleAnswer interprets a free-text oracle answer.
// "non-debatable" must be checked first because it contains "debatable".
func ParseOracleAnswer(answer string) (model.Label, bool) {
	lower := strings.ToLower(answer)
	switch {
	case strings.Contains(lower, "non-debatable"):
		return model.LabelNonDebatable, true
	case strings.Contains(lower, "debatable"):
		return model.LabelDebatable, true
	default:
		return "", false
	}
}

// PrimaryOracle asks a generative provider for a verdict
type PrimaryOracle struct {
	provider llm.Provider
	model    string
	cache    cache.Cache
	timeout  time.Duration
}

// NewPrimaryOracle creates the generative oracle step. Verdicts are cached
// per provider and model; a nil cache disables caching.
func NewPrimaryOracle(provider llm.Provider, modelName string, c cache.Cache, timeout time.Duration) *PrimaryOracle {
	if c == nil {
		c = cache.Nop{}
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &PrimaryOracle{provider: provider, model: modelName, cache: c, timeout: timeout}
}

// Name returns the step name
func (o *PrimaryOracle) Name() string {
	return LayerPrimaryOracle
}

// Attempt sends the claim to the provider
func (o *PrimaryOracle) Attempt(ctx context.Context, text string) Outcome {
	if o.provider == nil {
		return Failed(ReasonUnavailable, errUnavailable("no LLM provider configured"))
	}

	key := cache.Key(cache.KindOracle, LayerPrimaryOracle+"|"+o.provider.Name()+"|"+o.model+"|"+text)
	var cached model.Label
	if cache.GetJSON(o.cache, key, &cached) && cached != "" {
		return Decide(cached, "cached")
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.provider.Generate(ctx, llm.GenerateRequest{
		System: oracleInstruction,
		Prompt: "Claim: " + text,
	})
	if err != nil {
		return FailureFromError(err)
	}

	label, ok := ParseOracleAnswer(resp.Text)
	if !ok {
		return Failed(ReasonUnparseable, fmt.Errorf("unexpected answer %q", truncate(resp.Text, 80)))
	}

	_ = cache.SetJSON(o.cache, key, label, 0)
	return Decide(label, o.provider.Name())
}

// Ranker ranks candidate labels for a text, best first
type Ranker interface {
	Rank(ctx context.Context, text string, candidates []string) ([]llm.RankedLabel, error)
}

// ZeroShotOracle asks an entailment classifier which description fits best
type ZeroShotOracle struct {
	ranker Ranker
	cache  cache.Cache
}

// NewZeroShotOracle creates the zero-shot step. A nil cache disables caching.
func NewZeroShotOracle(ranker Ranker, c cache.Cache) *ZeroShotOracle {
	if c == nil {
		c = cache.Nop{}
	}
	return &ZeroShotOracle{ranker: ranker, cache: c}
}

// Name returns the step name
func (o *ZeroShotOracle) Name() string {
	return LayerZeroShot
}

// Attempt ranks the two candidate descriptions and maps the top one to a label
func (o *ZeroShotOracle) Attempt(ctx context.Context, text string) Outcome {
	if o.ranker == nil {
		return Failed(ReasonUnavailable, errUnavailable("zero-shot classifier disabled"))
	}

	key := cache.Key(cache.KindOracle, LayerZeroShot+"|"+text)
	var cached model.Label
	if cache.GetJSON(o.cache, key, &cached) && cached != "" {
		return Decide(cached, "cached")
	}

	ranked, err := o.ranker.Rank(ctx, text, []string{factualCandidate, debatableCandidate})
	if err != nil {
		return FailureFromError(err)
	}
	if len(ranked) == 0 {
		return Failed(ReasonUnparseable, llm.ErrMalformedResponse)
	}

	top := ranked[0].Label
	label := model.LabelNonDebatable
	if strings.Contains(strings.ToLower(top), "disagree") {
		label = model.LabelDebatable
	}

	_ = cache.SetJSON(o.cache, key, label, 0)
	return Decide(label, top)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
