package score

import (
	"testing"

	"github.com/ppiankov/debatelens/internal/classify"
	"github.com/ppiankov/debatelens/internal/model"
)

func findSignal(signals []model.Signal, typ model.SignalType) (model.Signal, bool) {
	for _, s := range signals {
		if s.Type == typ {
			return s, true
		}
	}
	return model.Signal{}, false
}

func TestScorer_Summarize_Counts(t *testing.T) {
	scorer := NewScorer()

	claims := []model.EnrichedClaim{
		{ClaimID: 1, Label: model.LabelNonDebatable, DecidedBy: classify.LayerAuthoritative, EvidenceChunks: []model.EvidenceChunk{}},
		{ClaimID: 2, Label: model.LabelDebatable, DecidedBy: classify.LayerImpact, EvidenceChunks: []model.EvidenceChunk{
			{URL: "https://www.who.int/a", Stance: model.StancePro, Authority: model.TierPrimary},
			{URL: "https://who.int/b", Stance: model.StanceCon, Authority: model.TierPrimary},
			{URL: "https://blog.example.com/c", Stance: model.StanceCon, Authority: model.TierTertiary},
		}},
		{ClaimID: 3, Label: model.LabelDebatable, DecidedBy: classify.LayerPrimaryOracle, EvidenceChunks: []model.EvidenceChunk{}},
	}

	summary := scorer.Summarize(claims)

	if summary.TotalClaims != 3 {
		t.Errorf("Expected 3 claims, got %d", summary.TotalClaims)
	}
	if summary.Debatable != 2 || summary.NonDebatable != 1 {
		t.Errorf("Expected 2 debatable / 1 non-debatable, got %d / %d", summary.Debatable, summary.NonDebatable)
	}
	if summary.WithEvidence != 1 {
		t.Errorf("Expected 1 claim with evidence, got %d", summary.WithEvidence)
	}
	if summary.TotalChunks != 3 {
		t.Errorf("Expected 3 chunks, got %d", summary.TotalChunks)
	}
	if summary.DistinctSources != 2 {
		t.Errorf("Expected 2 distinct sources, got %d", summary.DistinctSources)
	}
	if summary.DecidedBy[classify.LayerImpact] != 1 || summary.DecidedBy[classify.LayerPrimaryOracle] != 1 {
		t.Errorf("Unexpected decided_by counts: %v", summary.DecidedBy)
	}

	coverage, ok := findSignal(summary.Signals, model.SignalEvidenceCoverage)
	if !ok {
		t.Fatal("Expected evidence coverage signal")
	}
	if coverage.Severity != model.SeverityWarning {
		t.Errorf("Expected warning for 1/2 coverage, got %s", coverage.Severity)
	}

	authority, ok := findSignal(summary.Signals, model.SignalAuthorityMix)
	if !ok {
		t.Fatal("Expected authority mix signal")
	}
	if authority.Data["primary"] != 2 || authority.Data["tertiary"] != 1 {
		t.Errorf("Unexpected authority data: %v", authority.Data)
	}

	stance, ok := findSignal(summary.Signals, model.SignalStanceBalance)
	if !ok {
		t.Fatal("Expected stance balance signal")
	}
	if stance.Severity != model.SeverityInfo {
		t.Errorf("Expected balanced stance to be info, got %s", stance.Severity)
	}

	if _, ok := findSignal(summary.Signals, model.SignalLexicalOnly); ok {
		t.Error("Did not expect lexical-only signal when an oracle decided")
	}
}

func TestScorer_Summarize_Empty(t *testing.T) {
	summary := NewScorer().Summarize(nil)

	if summary.TotalClaims != 0 {
		t.Errorf("Expected 0 claims, got %d", summary.TotalClaims)
	}
	if len(summary.Signals) != 0 {
		t.Errorf("Expected no signals, got %d", len(summary.Signals))
	}
}

func TestScorer_Summarize_NoEvidenceIsCritical(t *testing.T) {
	claims := []model.EnrichedClaim{
		{ClaimID: 1, Label: model.LabelDebatable, DecidedBy: classify.LayerModal},
		{ClaimID: 2, Label: model.LabelDebatable, DecidedBy: classify.LayerModal},
	}

	summary := NewScorer().Summarize(claims)

	coverage, ok := findSignal(summary.Signals, model.SignalEvidenceCoverage)
	if !ok {
		t.Fatal("Expected evidence coverage signal")
	}
	if coverage.Severity != model.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", coverage.Severity)
	}
	if _, ok := findSignal(summary.Signals, model.SignalAuthorityMix); ok {
		t.Error("Did not expect authority signal without chunks")
	}
}

func TestScorer_Summarize_OneSidedStance(t *testing.T) {
	claims := []model.EnrichedClaim{
		{ClaimID: 1, Label: model.LabelDebatable, DecidedBy: classify.LayerImpact, EvidenceChunks: []model.EvidenceChunk{
			{URL: "https://a.example/1", Stance: model.StancePro, Authority: model.TierTertiary},
			{URL: "https://b.example/2", Stance: model.StancePro, Authority: model.TierTertiary},
		}},
	}

	summary := NewScorer().Summarize(claims)

	stance, _ := findSignal(summary.Signals, model.SignalStanceBalance)
	if stance.Severity != model.SeverityWarning {
		t.Errorf("Expected one-sided evidence to warn, got %s", stance.Severity)
	}
	authority, _ := findSignal(summary.Signals, model.SignalAuthorityMix)
	if authority.Severity != model.SeverityWarning {
		t.Errorf("Expected tertiary-only evidence to warn, got %s", authority.Severity)
	}
}

func TestScorer_Summarize_LexicalOnly(t *testing.T) {
	claims := []model.EnrichedClaim{
		{ClaimID: 1, Label: model.LabelNonDebatable, DecidedBy: classify.DecidedByDefault},
		{ClaimID: 2, Label: model.LabelDebatable, DecidedBy: classify.LayerModal},
	}

	summary := NewScorer().Summarize(claims)

	sig, ok := findSignal(summary.Signals, model.SignalLexicalOnly)
	if !ok {
		t.Fatal("Expected lexical-only signal")
	}
	if sig.Data["defaulted"] != 1 {
		t.Errorf("Expected 1 defaulted claim, got %v", sig.Data["defaulted"])
	}
}
