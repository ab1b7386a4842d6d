package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/debatelens/internal/llm"
	"github.com/ppiankov/debatelens/internal/model"
	"github.com/ppiankov/debatelens/internal/util"
)

// DefaultEndpoint is the DuckDuckGo HTML interface (no API key required)
const DefaultEndpoint = "https://html.duckduckgo.com/html/"

const ddgRedirectPrefix = "//duckduckgo.com/l/?uddg="

// DuckDuckGoConfig configures the DuckDuckGo client
type DuckDuckGoConfig struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DuckDuckGo searches the DuckDuckGo HTML interface
type DuckDuckGo struct {
	endpoint   string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

// NewDuckDuckGo creates a new DuckDuckGo client
func NewDuckDuckGo(config DuckDuckGoConfig) *DuckDuckGo {
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &DuckDuckGo{
		endpoint:  endpoint,
		userAgent: config.UserAgent,
		timeout:   timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			},
		},
	}
}

// Search runs one query and returns at most maxResults results in engine order
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	searchURL := d.endpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Set headers to look like a browser
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &llm.StatusError{Provider: "duckduckgo", Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1MB limit
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: read response: %w", err)
	}

	return parseResults(string(body), maxResults)
}

// parseResults extracts result links from a DuckDuckGo HTML page
func parseResults(htmlContent string, maxResults int) ([]model.SearchResult, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var results []model.SearchResult

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= maxResults {
			return
		}

		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") && hasClass(n, "results_links") {
			// Ads carry result--ad and point at tracking URLs
			if !hasClass(n, "result--ad") {
				if r, ok := extractResult(n); ok {
					results = append(results, r)
				}
			}
			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return results, nil
}

// extractResult pulls the title link out of one result block
func extractResult(n *html.Node) (model.SearchResult, bool) {
	var result model.SearchResult
	found := false

	var find func(*html.Node)
	find = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			result.URL = unwrapRedirect(attr(n, "href"))
			result.Title = textContent(n)
			found = true
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(n)

	return result, found && result.URL != ""
}

// unwrapRedirect resolves DuckDuckGo's click-tracking redirect to the target URL
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "https:"+ddgRedirectPrefix) {
		href = strings.TrimPrefix(href, "https:")
	}
	if !strings.HasPrefix(href, ddgRedirectPrefix) {
		return href
	}

	parsed, err := url.Parse("https:" + href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, field := range strings.Fields(attr(n, "class")) {
		if field == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent returns the whitespace-collapsed text within a node
func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
