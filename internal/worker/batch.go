package worker

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/debatelens/internal/model"
)

// ClaimProcessor runs one claim through classification and harvesting
type ClaimProcessor interface {
	Process(ctx context.Context, claim model.Claim) model.EnrichedClaim
}

// ClaimJob is one claim queued on the pool
type ClaimJob struct {
	Index     int
	Claim     model.Claim
	Processor ClaimProcessor
}

// Execute processes the claim. A panic becomes an error result with an
// empty-evidence record so one bad claim cannot take down the batch.
func (j *ClaimJob) Execute(ctx context.Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = &ClaimResult{
				Index: j.Index,
				Claim: model.EnrichedClaim{
					ClaimID:        j.Claim.ID,
					ClaimText:      j.Claim.Text,
					EvidenceChunks: []model.EvidenceChunk{},
				},
				Error: fmt.Errorf("claim %d panicked: %v", j.Claim.ID, r),
				Done:  true,
			}
		}
	}()

	return &ClaimResult{
		Index: j.Index,
		Claim: j.Processor.Process(ctx, j.Claim),
		Done:  true,
	}
}

// ClaimResult is the outcome of a ClaimJob
type ClaimResult struct {
	Index int
	Claim model.EnrichedClaim
	Error error
	Done  bool // False when the batch ended before the claim ran
}

// GetError returns the error from the claim result
func (r *ClaimResult) GetError() error {
	return r.Error
}

// BatchProcessor processes claims concurrently on a bounded pool
type BatchProcessor struct {
	processor   ClaimProcessor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor ClaimProcessor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessClaims returns one result per claim in input order. Claims that
// did not run before ctx ended come back with Done unset.
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []model.Claim) []ClaimResult {
	out := make([]ClaimResult, len(claims))
	for i, c := range claims {
		out[i] = ClaimResult{Index: i, Claim: model.EnrichedClaim{ClaimID: c.ID, ClaimText: c.Text}}
	}
	if len(claims) == 0 {
		return out
	}

	pool := NewPoolContext(ctx, b.concurrency)
	pool.Start()

	jobs := make([]Job, len(claims))
	for i, claim := range claims {
		jobs[i] = &ClaimJob{Index: i, Claim: claim, Processor: b.processor}
	}

	for _, r := range pool.Run(jobs) {
		cr, ok := r.(*ClaimResult)
		if !ok {
			continue
		}
		out[cr.Index] = *cr
	}
	return out
}

// ReadClaimsFromFile loads claims from a .json, .yaml/.yml or plain text
// file. Text files hold one claim per line; blank lines and # comments are
// skipped and repeated lines are dropped. Claims without an id are numbered
// sequentially from 1.
func ReadClaimsFromFile(filePath string) ([]model.Claim, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	var claims []model.Claim
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		claims, err = decodeClaims(data, json.Unmarshal)
	case ".yaml", ".yml":
		claims, err = decodeClaims(data, yaml.Unmarshal)
	default:
		claims, err = readClaimLines(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}

	return numberClaims(claims), nil
}

// decodeClaims accepts either a list of claim objects or a list of strings
func decodeClaims(data []byte, unmarshal func([]byte, any) error) ([]model.Claim, error) {
	var claims []model.Claim
	if err := unmarshal(data, &claims); err == nil {
		return claims, nil
	}

	var texts []string
	if err := unmarshal(data, &texts); err != nil {
		return nil, err
	}
	claims = make([]model.Claim, 0, len(texts))
	for _, t := range texts {
		claims = append(claims, model.Claim{Text: t})
	}
	return claims, nil
}

func readClaimLines(data []byte) ([]model.Claim, error) {
	var claims []model.Claim
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			claims = append(claims, model.Claim{Text: line})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return claims, nil
}

func numberClaims(claims []model.Claim) []model.Claim {
	for i := range claims {
		claims[i].Text = strings.TrimSpace(claims[i].Text)
		if claims[i].ID == 0 {
			claims[i].ID = i + 1
		}
	}
	return claims
}
