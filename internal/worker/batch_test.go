package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/ppiankov/debatelens/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// mockProcessor labels every claim debatable after a short delay
type mockProcessor struct {
	delay    time.Duration
	panicOn  int
	executed atomic.Int32
}

func (m *mockProcessor) Process(ctx context.Context, claim model.Claim) model.EnrichedClaim {
	m.executed.Add(1)
	if claim.ID == m.panicOn {
		panic("boom")
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
		}
	}
	return model.EnrichedClaim{
		ClaimID:        claim.ID,
		ClaimText:      claim.Text,
		Label:          model.LabelDebatable,
		EvidenceChunks: []model.EvidenceChunk{},
	}
}

func testClaims(n int) []model.Claim {
	claims := make([]model.Claim, n)
	for i := range claims {
		claims[i] = model.Claim{ID: i + 1, Text: "claim text"}
	}
	return claims
}

func TestBatchProcessor_PreservesOrder(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{delay: time.Millisecond}, 4)

	results := processor.ProcessClaims(context.Background(), testClaims(25))

	if len(results) != 25 {
		t.Fatalf("expected 25 results, got %d", len(results))
	}
	for i, r := range results {
		if !r.Done {
			t.Errorf("claim %d did not run", i+1)
		}
		if r.Claim.ClaimID != i+1 {
			t.Errorf("expected claim %d at index %d, got %d", i+1, i, r.Claim.ClaimID)
		}
	}
}

func TestBatchProcessor_RecoversPanics(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{panicOn: 2}, 2)

	results := processor.ProcessClaims(context.Background(), testClaims(3))

	if results[1].Error == nil {
		t.Fatal("expected error for panicking claim")
	}
	if results[1].Claim.EvidenceChunks == nil || len(results[1].Claim.EvidenceChunks) != 0 {
		t.Error("expected empty evidence for panicking claim")
	}
	for _, i := range []int{0, 2} {
		if results[i].Error != nil {
			t.Errorf("claim %d: unexpected error %v", i+1, results[i].Error)
		}
		if results[i].Claim.Label != model.LabelDebatable {
			t.Errorf("claim %d: expected debatable, got %q", i+1, results[i].Claim.Label)
		}
	}
}

func TestBatchProcessor_Deadline(t *testing.T) {
	mock := &mockProcessor{delay: 50 * time.Millisecond}
	processor := NewBatchProcessor(mock, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	results := processor.ProcessClaims(ctx, testClaims(10))

	if len(results) != 10 {
		t.Fatalf("expected a result slot per claim, got %d", len(results))
	}
	notRun := 0
	for i, r := range results {
		if r.Claim.ClaimID != i+1 {
			t.Errorf("slot %d holds claim %d", i, r.Claim.ClaimID)
		}
		if !r.Done {
			notRun++
		}
	}
	if notRun == 0 {
		t.Error("expected some claims to miss the deadline")
	}
	if int(mock.executed.Load()) >= 10 {
		t.Errorf("expected fewer than 10 executions, got %d", mock.executed.Load())
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockProcessor{}, 2)

	results := processor.ProcessClaims(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestClaimResult_GetError(t *testing.T) {
	r1 := &ClaimResult{}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("claim failed")
	r2 := &ClaimResult{Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadClaimsFromFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    []model.Claim
	}{
		{
			name: "text",
			file: "claims.txt",
			content: `The World Bank reported GDP grew 3.2% in 2020.
# comment

This technology will revolutionize global commerce.
The World Bank reported GDP grew 3.2% in 2020.   `,
			want: []model.Claim{
				{ID: 1, Text: "The World Bank reported GDP grew 3.2% in 2020."},
				{ID: 2, Text: "This technology will revolutionize global commerce."},
			},
		},
		{
			name:    "json objects",
			file:    "claims.json",
			content: `[{"claim_id": 7, "claim": "Remote work boosts productivity."}, {"claim": " Cities should ban cars. "}]`,
			want: []model.Claim{
				{ID: 7, Text: "Remote work boosts productivity."},
				{ID: 2, Text: "Cities should ban cars."},
			},
		},
		{
			name:    "json strings",
			file:    "claims.json",
			content: `["First claim here.", "Second claim here."]`,
			want: []model.Claim{
				{ID: 1, Text: "First claim here."},
				{ID: 2, Text: "Second claim here."},
			},
		},
		{
			name:    "yaml objects",
			file:    "claims.yaml",
			content: "- claim_id: 1\n  claim: Vaccines could reduce transmission.\n- claim_id: 2\n  claim: The Eiffel Tower is in Paris.\n",
			want: []model.Claim{
				{ID: 1, Text: "Vaccines could reduce transmission."},
				{ID: 2, Text: "The Eiffel Tower is in Paris."},
			},
		},
		{
			name:    "yaml strings",
			file:    "claims.yml",
			content: "- AI will transform commerce.\n",
			want:    []model.Claim{{ID: 1, Text: "AI will transform commerce."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadClaimsFromFile(writeTemp(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("ReadClaimsFromFile failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("claims mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadClaimsFromFile_Errors(t *testing.T) {
	if _, err := ReadClaimsFromFile("no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
	if _, err := ReadClaimsFromFile(writeTemp(t, "bad.json", `{"claim": 1`)); err == nil {
		t.Error("expected error for malformed JSON, got nil")
	}
}
