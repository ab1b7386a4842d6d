package model

import "time"

// Report is the complete result of one analysis run
type Report struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Input       string          `json:"input,omitempty"` // Source paragraph when claims were extracted here
	Claims      []EnrichedClaim `json:"claims"`
	Summary     Summary         `json:"summary"`
}

// Summary aggregates a run. It is derived from the claims and never
// feeds back into labels or evidence.
type Summary struct {
	TotalClaims     int            `json:"total_claims"`
	Debatable       int            `json:"debatable"`
	NonDebatable    int            `json:"non_debatable"`
	WithEvidence    int            `json:"with_evidence"` // Debatable claims with at least one chunk
	TotalChunks     int            `json:"total_chunks"`
	DistinctSources int            `json:"distinct_sources"`
	DecidedBy       map[string]int `json:"decided_by,omitempty"` // Claims per deciding step
	Signals         []Signal       `json:"signals,omitempty"`
}

// Signal represents a diagnostic signal with transparent data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalEvidenceCoverage SignalType = "evidence_coverage" // Debatable claims that found evidence
	SignalStanceBalance    SignalType = "stance_balance"    // Pro vs con chunk balance
	SignalAuthorityMix     SignalType = "authority_mix"     // Authority tiers of evidence sources
	SignalLexicalOnly      SignalType = "lexical_only"      // No remote oracle produced a verdict
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
