package score

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ppiankov/debatelens/internal/classify"
	"github.com/ppiankov/debatelens/internal/model"
)

// Steps whose verdict comes from a remote model
var remoteSteps = map[string]bool{
	classify.LayerPrimaryOracle: true,
	classify.LayerZeroShot:      true,
}

// Scorer summarizes a run and generates diagnostic signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Summarize counts labels, deciding steps and evidence, and attaches signals
func (s *Scorer) Summarize(claims []model.EnrichedClaim) model.Summary {
	summary := model.Summary{
		TotalClaims: len(claims),
		DecidedBy:   make(map[string]int),
	}

	sources := make(map[string]bool)
	var chunks []model.EvidenceChunk
	for _, c := range claims {
		if c.Label.IsDebatable() {
			summary.Debatable++
			if len(c.EvidenceChunks) > 0 {
				summary.WithEvidence++
			}
		} else {
			summary.NonDebatable++
		}
		if c.DecidedBy != "" {
			summary.DecidedBy[c.DecidedBy]++
		}
		for _, ch := range c.EvidenceChunks {
			chunks = append(chunks, ch)
			sources[sourceKey(ch.URL)] = true
		}
	}
	summary.TotalChunks = len(chunks)
	summary.DistinctSources = len(sources)

	if summary.Debatable > 0 {
		summary.Signals = append(summary.Signals, s.coverage(summary))
	}
	if len(chunks) > 0 {
		summary.Signals = append(summary.Signals, s.authorityMix(chunks), s.stanceBalance(chunks))
	}
	if sig, ok := s.lexicalOnly(summary); ok {
		summary.Signals = append(summary.Signals, sig)
	}
	return summary
}

// coverage reports how many debatable claims found any evidence
func (s *Scorer) coverage(summary model.Summary) model.Signal {
	ratio := float64(summary.WithEvidence) / float64(summary.Debatable)

	severity := model.SeverityInfo
	if ratio < 0.5 {
		severity = model.SeverityCritical
	} else if ratio < 1.0 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalEvidenceCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Evidence found for %d of %d debatable claims", summary.WithEvidence, summary.Debatable),
		Data: map[string]interface{}{
			"debatable":     summary.Debatable,
			"with_evidence": summary.WithEvidence,
			"ratio":         ratio,
		},
	}
}

// authorityMix weighs chunks by source tier: primary 3, secondary 2,
// tertiary 1, untiered 0
func (s *Scorer) authorityMix(chunks []model.EvidenceChunk) model.Signal {
	var primary, secondary, tertiary int
	for _, c := range chunks {
		switch c.Authority {
		case model.TierPrimary:
			primary++
		case model.TierSecondary:
			secondary++
		case model.TierTertiary:
			tertiary++
		}
	}

	total := len(chunks)
	weighted := float64(primary*3+secondary*2+tertiary) / float64(total*3)

	severity := model.SeverityInfo
	if primary == 0 && secondary == 0 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalAuthorityMix,
		Severity:    severity,
		Description: fmt.Sprintf("Evidence authority: %d primary, %d secondary, %d tertiary", primary, secondary, tertiary),
		Data: map[string]interface{}{
			"primary":   primary,
			"secondary": secondary,
			"tertiary":  tertiary,
			"total":     total,
			"weighted":  weighted,
			"formula":   "(primary*3 + secondary*2 + tertiary*1) / (total*3)",
		},
	}
}

// stanceBalance compares chunks surfaced by pro and con queries
func (s *Scorer) stanceBalance(chunks []model.EvidenceChunk) model.Signal {
	counts := make(map[model.Stance]int)
	for _, c := range chunks {
		counts[c.Stance]++
	}
	pro, con := counts[model.StancePro], counts[model.StanceCon]

	severity := model.SeverityInfo
	description := fmt.Sprintf("Stance balance: %d pro, %d con, %d neutral", pro, con, counts[model.StanceNeutral])
	if (pro == 0) != (con == 0) {
		severity = model.SeverityWarning
		description += " (one-sided)"
	}

	return model.Signal{
		Type:        model.SignalStanceBalance,
		Severity:    severity,
		Description: description,
		Data: map[string]interface{}{
			"pro":     pro,
			"con":     con,
			"neutral": counts[model.StanceNeutral],
		},
	}
}

// lexicalOnly flags runs where no remote model decided any claim that
// reached the end of the lexical layers
func (s *Scorer) lexicalOnly(summary model.Summary) (model.Signal, bool) {
	remote := 0
	for step, n := range summary.DecidedBy {
		if remoteSteps[step] {
			remote += n
		}
	}
	fallback := summary.DecidedBy[classify.DecidedByDefault]
	if remote > 0 || fallback == 0 {
		return model.Signal{}, false
	}

	return model.Signal{
		Type:        model.SignalLexicalOnly,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d claims fell through every layer to the default label", fallback),
		Data: map[string]interface{}{
			"defaulted": fallback,
		},
	}, true
}

// sourceKey groups chunks by host so a site counts once
func sourceKey(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return rawURL
	}
	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}
