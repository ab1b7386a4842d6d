package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/debatelens/internal/util"
)

// ErrMalformedResponse is returned when a remote classifier answers 200 with
// a body that cannot be interpreted
var ErrMalformedResponse = errors.New("malformed classifier response")

// ZeroShotConfig holds settings for the hosted zero-shot classifier
type ZeroShotConfig struct {
	URL     string
	Token   string // Optional bearer token
	Timeout time.Duration

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// RankedLabel is one candidate label with its entailment score
type RankedLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ZeroShotClient calls a Hugging Face style zero-shot classification endpoint
type ZeroShotClient struct {
	url        string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

// zeroShotPipelineResponse is the classic pipeline answer
type zeroShotPipelineResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// NewZeroShotClient creates a new zero-shot client
func NewZeroShotClient(config ZeroShotConfig) (*ZeroShotClient, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("zero-shot URL is required")
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}

	return &ZeroShotClient{
		url:     config.URL,
		token:   config.Token,
		timeout: timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
	}, nil
}

// Rank asks the endpoint to rank candidate labels for text.
// The result is ordered best first and is never empty on success.
func (c *ZeroShotClient) Rank(ctx context.Context, text string, candidates []string) ([]RankedLabel, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: candidates},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zero-shot: execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("zero-shot: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Provider: "zero-shot", Code: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	ranked, err := parseZeroShot(respBody)
	if err != nil {
		return nil, err
	}
	return ranked, nil
}

// parseZeroShot accepts both the {labels, scores} pipeline shape and the
// [{label, score}] list shape served by newer inference endpoints
func parseZeroShot(body []byte) ([]RankedLabel, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, ErrMalformedResponse
	}

	var ranked []RankedLabel
	switch trimmed[0] {
	case '{':
		var pr zeroShotPipelineResponse
		if err := json.Unmarshal(trimmed, &pr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		for i, label := range pr.Labels {
			rl := RankedLabel{Label: label}
			if i < len(pr.Scores) {
				rl.Score = pr.Scores[i]
			}
			ranked = append(ranked, rl)
		}
		// Pipeline output is already ranked; keep the server order

	case '[':
		if err := json.Unmarshal(trimmed, &ranked); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Score > ranked[j].Score
		})

	default:
		return nil, ErrMalformedResponse
	}

	if len(ranked) == 0 || ranked[0].Label == "" {
		return nil, ErrMalformedResponse
	}
	return ranked, nil
}
