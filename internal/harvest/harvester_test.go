package harvest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/debatelens/internal/model"
	"github.com/ppiankov/debatelens/internal/search"
	"github.com/ppiankov/debatelens/internal/validate"
)

type stubSearcher struct {
	mu      sync.Mutex
	queries []string
	results map[model.Stance][]model.SearchResult
	err     error
}

func (s *stubSearcher) Search(_ context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	stance := model.StancePro
	switch {
	case strings.HasSuffix(query, search.ConSuffix):
		stance = model.StanceCon
	case strings.HasSuffix(query, search.NeutralSuffix):
		stance = model.StanceNeutral
	}
	results := s.results[stance]
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

type stubFetcher struct {
	mu        sync.Mutex
	calls     map[string]int
	pages     map[string]string
	redirects map[string]string
}

func newStubFetcher(pages map[string]string) *stubFetcher {
	return &stubFetcher{calls: make(map[string]int), pages: pages}
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (*FetchResult, error) {
	f.mu.Lock()
	f.calls[rawURL]++
	f.mu.Unlock()

	body, ok := f.pages[rawURL]
	if !ok {
		return nil, errors.New("unexpected status: 404 404 Not Found")
	}
	final := rawURL
	if to, ok := f.redirects[rawURL]; ok {
		final = to
	}
	return &FetchResult{HTML: body, FinalURL: final, StatusCode: 200}, nil
}

func (f *stubFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type denyRobots struct{ denied string }

func (r denyRobots) CanFetch(_ context.Context, rawURL string) (bool, time.Duration, error) {
	return rawURL != r.denied, 0, nil
}

func longParagraph(topic string) string {
	return topic + " has been studied extensively by economists, who point to measurable changes in trade volumes, logistics costs and market access across several regions."
}

func page(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><script>var x = 1;</script></head><body>")
	for _, p := range paragraphs {
		b.WriteString("<p>" + p + "</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newTestHarvester(t *testing.T, cfg *model.Config, s *stubSearcher, f *stubFetcher, robots RobotsPolicy) *Harvester {
	t.Helper()
	authority, err := validate.NewAuthorityClassifier(cfg.Authority)
	require.NoError(t, err)
	h, err := New(cfg, Deps{Searcher: s, Fetcher: f, Robots: robots, Authority: authority})
	require.NoError(t, err)
	return h
}

func TestHarvest_DedupAcrossQueries(t *testing.T) {
	cfg := model.DefaultConfig()
	s := &stubSearcher{results: map[model.Stance][]model.SearchResult{
		model.StancePro: {
			{Title: "Shared", URL: "https://example.com/a"},
			{Title: "Pro only", URL: "https://example.com/b"},
		},
		model.StanceCon: {
			{Title: "Shared again", URL: "https://example.com/a"},
			{Title: "Con only", URL: "https://example.com/c"},
		},
	}}
	f := newStubFetcher(map[string]string{
		"https://example.com/a": page(longParagraph("Page A")),
		"https://example.com/b": page(longParagraph("Page B")),
		"https://example.com/c": page(longParagraph("Page C")),
	})

	h := newTestHarvester(t, cfg, s, f, nil)
	chunks := h.Harvest(context.Background(), model.Claim{ID: 1, Text: "This technology will revolutionize global commerce."})

	require.Len(t, chunks, 3)
	assert.Equal(t, "https://example.com/a", chunks[0].URL)
	assert.Equal(t, "Shared", chunks[0].Source)
	assert.Equal(t, model.StancePro, chunks[0].Stance)
	assert.Equal(t, "https://example.com/b", chunks[1].URL)
	assert.Equal(t, "https://example.com/c", chunks[2].URL)
	assert.Equal(t, model.StanceCon, chunks[2].Stance)
	assert.Equal(t, 1, f.calls["https://example.com/a"], "duplicate URL must be fetched once")

	require.Len(t, s.queries, 2)
	for _, q := range s.queries {
		assert.True(t, strings.HasPrefix(q, "This technology will revolutionize global commerce."))
	}
}

func TestHarvest_DedupAfterRedirect(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Harvest.FetchWorkers = 1
	s := &stubSearcher{results: map[model.Stance][]model.SearchResult{
		model.StancePro: {
			{URL: "https://example.com/canonical"},
			{URL: "https://example.com/short"},
		},
	}}
	f := newStubFetcher(map[string]string{
		"https://example.com/canonical": page(longParagraph("Canonical")),
		"https://example.com/short":     page(longParagraph("Canonical")),
	})
	f.redirects = map[string]string{"https://example.com/short": "https://example.com/canonical"}

	h := newTestHarvester(t, cfg, s, f, nil)
	chunks := h.Harvest(context.Background(), model.Claim{ID: 1, Text: "Remote work should replace offices."})

	require.Len(t, chunks, 1)
	assert.Equal(t, "https://example.com/canonical", chunks[0].URL)
}

func TestHarvest_URLFiltering(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Harvest.RespectRobots = true
	cfg.Search.MaxResults = 10
	s := &stubSearcher{results: map[model.Stance][]model.SearchResult{
		model.StancePro: {
			{URL: ""},
			{URL: "https://example.com/report.PDF"},
			{URL: "https://www.researchgate.net/publication/1"},
			{URL: "ftp://example.com/file"},
			{URL: "https://example.com/private"},
			{URL: "https://example.com/ok"},
		},
	}}
	f := newStubFetcher(map[string]string{
		"https://example.com/ok":      page(longParagraph("Allowed")),
		"https://example.com/private": page(longParagraph("Private")),
	})

	h := newTestHarvester(t, cfg, s, f, denyRobots{denied: "https://example.com/private"})
	chunks := h.Harvest(context.Background(), model.Claim{ID: 2, Text: "Remote work should replace offices."})

	require.Len(t, chunks, 1)
	assert.Equal(t, "https://example.com/ok", chunks[0].URL)
	assert.Equal(t, 1, f.total(), "only the allowed URL is fetched")
}

func TestHarvest_RedirectIntoBlockedTarget(t *testing.T) {
	cfg := model.DefaultConfig()
	s := &stubSearcher{results: map[model.Stance][]model.SearchResult{
		model.StancePro: {
			{URL: "https://doi.example.org/10.1000/1"},
			{URL: "https://example.com/download"},
			{URL: "https://example.com/story"},
		},
	}}
	f := newStubFetcher(map[string]string{
		"https://doi.example.org/10.1000/1": page(longParagraph("Publisher")),
		"https://example.com/download":      page(longParagraph("Download")),
		"https://example.com/story":         page(longParagraph("Story")),
	})
	f.redirects = map[string]string{
		"https://doi.example.org/10.1000/1": "https://www.sciencedirect.com/science/article/pii/1",
		"https://example.com/download":      "https://example.com/files/report.pdf",
	}

	h := newTestHarvester(t, cfg, s, f, nil)
	chunks := h.Harvest(context.Background(), model.Claim{ID: 5, Text: "Remote work should replace offices."})

	require.Len(t, chunks, 1)
	assert.Equal(t, "https://example.com/story", chunks[0].URL)
}

func TestHarvest_ParagraphFilters(t *testing.T) {
	cfg := model.DefaultConfig()
	s := &stubSearcher{results: map[model.Stance][]model.SearchResult{
		model.StancePro: {{Title: "Article", URL: "https://example.com/article"}},
	}}
	boilerplate := "Subscribe to our newsletter to receive the latest analysis of global commerce, trade policy and logistics delivered straight to your inbox each week."
	f := newStubFetcher(map[string]string{
		"https://example.com/article": page("Too short to count.", boilerplate, longParagraph("Commerce")),
	})

	h := newTestHarvester(t, cfg, s, f, nil)
	chunks := h.Harvest(context.Background(), model.Claim{ID: 3, Text: "AI will transform commerce."})

	require.Len(t, chunks, 1)
	assert.Equal(t, longParagraph("Commerce"), chunks[0].Content)
	for _, c := range chunks {
		assert.GreaterOrEqual(t, len([]rune(c.Content)), cfg.Harvest.MinChunkChars)
		assert.NotContains(t, strings.ToLower(c.Content), "subscribe")
	}
}

func TestHarvest_ChunkCapAndAuthority(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Harvest.MaxChunksPerPage = 2
	s := &stubSearcher{results: map[model.Stance][]model.SearchResult{
		model.StancePro: {{Title: "WHO", URL: "https://www.who.int/news"}},
	}}
	f := newStubFetcher(map[string]string{
		"https://www.who.int/news": page(longParagraph("One"), longParagraph("Two"), longParagraph("Three")),
	})

	h := newTestHarvester(t, cfg, s, f, nil)
	chunks := h.Harvest(context.Background(), model.Claim{ID: 4, Text: "Vaccines could reduce transmission."})

	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.Equal(t, model.TierPrimary, c.Authority)
	}
}

func TestHarvest_FailuresYieldEmpty(t *testing.T) {
	cfg := model.DefaultConfig()

	t.Run("search error", func(t *testing.T) {
		s := &stubSearcher{err: errors.New("search down")}
		f := newStubFetcher(nil)
		h := newTestHarvester(t, cfg, s, f, nil)

		chunks := h.Harvest(context.Background(), model.Claim{ID: 1, Text: "Cities should ban cars."})
		assert.NotNil(t, chunks)
		assert.Empty(t, chunks)
		assert.Len(t, s.queries, 2, "a failed query does not stop the next one")
		assert.Zero(t, f.total())
	})

	t.Run("fetch error", func(t *testing.T) {
		s := &stubSearcher{results: map[model.Stance][]model.SearchResult{
			model.StancePro: {{URL: "https://example.com/missing"}, {URL: "https://example.com/ok"}},
		}}
		f := newStubFetcher(map[string]string{"https://example.com/ok": page(longParagraph("Survivor"))})
		h := newTestHarvester(t, cfg, s, f, nil)

		chunks := h.Harvest(context.Background(), model.Claim{ID: 1, Text: "Cities should ban cars."})
		require.Len(t, chunks, 1)
		assert.Equal(t, "https://example.com/ok", chunks[0].URL)
	})
}

func TestHarvest_SinglePolicy(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Search.Policy = search.PolicySingle
	s := &stubSearcher{}
	h := newTestHarvester(t, cfg, s, newStubFetcher(nil), nil)

	h.Harvest(context.Background(), model.Claim{ID: 1, Text: "Cities should ban cars."})
	require.Len(t, s.queries, 1)
	assert.Equal(t, "Cities should ban cars."+search.NeutralSuffix, s.queries[0])
}

func TestNew_Validation(t *testing.T) {
	cfg := model.DefaultConfig()

	_, err := New(cfg, Deps{Fetcher: newStubFetcher(nil)})
	assert.Error(t, err)

	_, err = New(cfg, Deps{Searcher: &stubSearcher{}})
	assert.Error(t, err)

	cfg.Search.Policy = "triple"
	_, err = New(cfg, Deps{Searcher: &stubSearcher{}, Fetcher: newStubFetcher(nil)})
	assert.Error(t, err)
}

func TestURLFilter_Check(t *testing.T) {
	f := NewURLFilter(model.DefaultConfig().Harvest, nil)

	tests := []struct {
		url  string
		want string
	}{
		{url: "", want: RejectEmpty},
		{url: "   ", want: RejectEmpty},
		{url: "mailto:someone@example.com", want: RejectScheme},
		{url: "https://example.com/paper.pdf", want: RejectExtension},
		{url: "https://example.com/paper.pdf?download=1", want: RejectExtension},
		{url: "https://www.sciencedirect.com/science/article/1", want: RejectDomain},
		{url: "https://example.com/pdf-guide", want: ""},
		{url: "https://example.com/article", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Check(tt.url))
		})
	}
}
