// Package harvest collects evidence paragraphs from the web for a claim.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/debatelens/internal/extract"
	"github.com/ppiankov/debatelens/internal/logging"
	"github.com/ppiankov/debatelens/internal/model"
	"github.com/ppiankov/debatelens/internal/search"
	"github.com/ppiankov/debatelens/internal/validate"
	"github.com/ppiankov/debatelens/internal/worker"
)

// Deps are the collaborators a Harvester talks to
type Deps struct {
	Searcher  search.Searcher
	Fetcher   PageFetcher
	Robots    RobotsPolicy                  // nil disables robots.txt checks
	Authority *validate.AuthorityClassifier // nil leaves chunks untiered
	Limiter   *worker.Limiter               // Receives robots.txt crawl delays
	Logger    *zap.Logger
}

// Harvester turns one debatable claim into evidence chunks: synthesize
// queries, search, filter and dedup URLs, fetch pages, extract paragraphs.
type Harvester struct {
	synth      *search.Synthesizer
	searcher   search.Searcher
	fetcher    PageFetcher
	filter     *URLFilter
	extractor  *extract.ParagraphExtractor
	authority  *validate.AuthorityClassifier
	limiter    *worker.Limiter
	maxResults int
	workers    int
	logger     *zap.Logger
}

// candidate is a search result together with the stance of its query
type candidate struct {
	result model.SearchResult
	stance model.Stance
}

// New creates a Harvester from configuration
func New(cfg *model.Config, deps Deps) (*Harvester, error) {
	if deps.Searcher == nil {
		return nil, errors.New("harvester needs a searcher")
	}
	if deps.Fetcher == nil {
		return nil, errors.New("harvester needs a page fetcher")
	}

	synth, err := search.NewSynthesizer(cfg.Search.Policy)
	if err != nil {
		return nil, fmt.Errorf("query synthesizer: %w", err)
	}

	workers := cfg.Harvest.FetchWorkers
	if workers < 1 {
		workers = 1
	}
	maxResults := cfg.Search.MaxResults
	if maxResults < 1 {
		maxResults = 5
	}

	var robots RobotsPolicy
	if cfg.Harvest.RespectRobots {
		robots = deps.Robots
	}

	return &Harvester{
		synth:    synth,
		searcher: deps.Searcher,
		fetcher:  deps.Fetcher,
		filter:   NewURLFilter(cfg.Harvest, robots),
		extractor: extract.NewParagraphExtractor(extract.ParagraphConfig{
			MinChars:            cfg.Harvest.MinChunkChars,
			MaxChunks:           cfg.Harvest.MaxChunksPerPage,
			BoilerplateKeywords: cfg.Harvest.BoilerplateKeywords,
		}),
		authority:  deps.Authority,
		limiter:    deps.Limiter,
		maxResults: maxResults,
		workers:    workers,
		logger:     logging.OrNop(deps.Logger),
	}, nil
}

// Harvest returns the evidence chunks for claim in accepted-URL order.
// Remote failures shrink the result; they are never returned.
func (h *Harvester) Harvest(ctx context.Context, claim model.Claim) []model.EvidenceChunk {
	log := h.logger.With(zap.Int("claim_id", claim.ID))

	queries := h.synth.Queries(claim.Text)
	log.Debug("searching", zap.String("policy", h.synth.Policy()), zap.Int("queries", len(queries)))

	var candidates []candidate
	for _, q := range queries {
		results, err := h.searcher.Search(ctx, q.Text, h.maxResults)
		if err != nil {
			log.Warn("search failed", zap.String("query", q.Text), zap.Error(err))
			continue
		}
		for _, r := range results {
			candidates = append(candidates, candidate{result: r, stance: q.Stance})
		}
	}

	seen := newURLSet()
	var accepted []candidate
	for _, c := range candidates {
		if reason := h.filter.Check(c.result.URL); reason != "" {
			log.Debug("url rejected", zap.String("url", c.result.URL), zap.String("reason", reason))
			continue
		}
		if !seen.Add(c.result.URL) {
			continue
		}
		accepted = append(accepted, c)
	}

	perURL := make([][]model.EvidenceChunk, len(accepted))

	var g errgroup.Group
	g.SetLimit(h.workers)
	for i, c := range accepted {
		g.Go(func() error {
			perURL[i] = h.harvestURL(ctx, log, seen, c)
			return nil
		})
	}
	_ = g.Wait()

	chunks := make([]model.EvidenceChunk, 0)
	for _, page := range perURL {
		chunks = append(chunks, page...)
	}
	return chunks
}

func (h *Harvester) harvestURL(ctx context.Context, log *zap.Logger, seen *urlSet, c candidate) []model.EvidenceChunk {
	rawURL := c.result.URL
	log = log.With(zap.String("url", rawURL))

	allowed, delay := h.filter.Allowed(ctx, rawURL)
	if !allowed {
		log.Debug("url rejected", zap.String("reason", RejectRobots))
		return nil
	}
	if h.limiter != nil {
		h.limiter.ObserveCrawlDelay(rawURL, delay)
	}

	page, err := h.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		log.Debug("fetch failed", zap.Error(err))
		return nil
	}

	if page.FinalURL != "" && page.FinalURL != rawURL {
		// A redirect may land on a blocked domain or a document download
		if reason := h.filter.Check(page.FinalURL); reason != "" {
			log.Debug("redirect rejected", zap.String("final_url", page.FinalURL), zap.String("reason", reason))
			return nil
		}
		// Two results that redirect to the same page count once
		if !seen.Add(page.FinalURL) {
			log.Debug("duplicate after redirect", zap.String("final_url", page.FinalURL))
			return nil
		}
	}

	paragraphs, adapter, err := h.extractor.Extract(page.HTML, rawURL)
	if err != nil {
		log.Debug("extraction failed", zap.Error(err))
		return nil
	}
	log.Debug("page harvested", zap.String("adapter", adapter), zap.Int("chunks", len(paragraphs)))

	tier := model.TierUnknown
	if h.authority != nil {
		tier = h.authority.Classify(rawURL)
	}

	chunks := make([]model.EvidenceChunk, 0, len(paragraphs))
	for _, p := range paragraphs {
		chunks = append(chunks, model.EvidenceChunk{
			Source:    c.result.Title,
			URL:       rawURL,
			Content:   p,
			Stance:    c.stance,
			Authority: tier,
		})
	}
	return chunks
}

// urlSet is the per-claim set of accepted URLs
type urlSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

func newURLSet() *urlSet {
	return &urlSet{urls: make(map[string]struct{})}
}

// Add records u and reports whether it was new
func (s *urlSet) Add(u string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[u]; ok {
		return false
	}
	s.urls[u] = struct{}{}
	return true
}
