package model

// Claim represents a factual assertion handed over by the claim extractor
type Claim struct {
	ID   int    `json:"claim_id" yaml:"claim_id"` // 1-based, sequential per run
	Text string `json:"claim" yaml:"claim"`       // The claim text itself
}

// Label is the debatability verdict for a claim
type Label string

const (
	LabelDebatable    Label = "debatable"     // Reasonable people can disagree
	LabelNonDebatable Label = "non-debatable" // Verifiable, historical, or neutrally reported
)

// IsDebatable reports whether the label is debatable
func (l Label) IsDebatable() bool {
	return l == LabelDebatable
}

// ClassificationResult carries the cascade verdict for a single claim
type ClassificationResult struct {
	ClaimID   int         `json:"claim_id"`
	ClaimText string      `json:"claim"`
	Label     Label       `json:"label"`
	DecidedBy string      `json:"decided_by"`      // Step that produced the label, "default" if none fired
	Trace     []StepTrace `json:"trace,omitempty"` // Every step consulted, in order
}

// StepTrace records what one cascade step did for a claim.
// It is observability data only and never influences the label.
type StepTrace struct {
	Step    string `json:"step"`
	Fired   bool   `json:"fired"`
	Label   Label  `json:"label,omitempty"`
	Marker  string `json:"marker,omitempty"`  // Lexical marker that matched
	Failure string `json:"failure,omitempty"` // Failure reason for remote steps
	Error   string `json:"error,omitempty"`
}

// EnrichedClaim is the terminal record consumed by the display layer
type EnrichedClaim struct {
	ClaimID        int             `json:"claim_id"`
	ClaimText      string          `json:"claim"`
	Label          Label           `json:"label"`
	DecidedBy      string          `json:"decided_by,omitempty"`
	EvidenceChunks []EvidenceChunk `json:"evidence_chunks"`
	Trace          []StepTrace     `json:"trace,omitempty"` // Only when Output.IncludeTrace is set
}
