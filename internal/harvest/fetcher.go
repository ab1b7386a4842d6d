package harvest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/ppiankov/debatelens/internal/cache"
	"github.com/ppiankov/debatelens/internal/util"
	"github.com/ppiankov/debatelens/internal/worker"
)

const (
	defaultFetchAttempts = 3
	fetchBackoff         = 500 * time.Millisecond
)

// fetchSleepFunc is swapped out in tests
var fetchSleepFunc = time.Sleep

// PageFetcher retrieves one page's HTML
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*FetchResult, error)
}

// Fetcher fetches HTML pages with a bounded timeout, a size limit, per-domain
// rate limiting and retries on transient failures
type Fetcher struct {
	httpClient  *http.Client
	userAgent   string
	maxBytes    int64
	maxAttempts int
	limiter     *worker.Limiter
	cache       cache.Cache
	cacheTTL    time.Duration
}

// FetchResult contains the fetched HTML and where it finally came from
type FetchResult struct {
	HTML        string `json:"html"`
	FinalURL    string `json:"final_url"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type,omitempty"`
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, insecureTLS bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(httpProxy, httpsProxy, noProxy)
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via config
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent:   userAgent,
		maxBytes:    maxBytes,
		maxAttempts: defaultFetchAttempts,
		cache:       cache.Nop{},
	}
}

// WithAttempts sets how many times FetchWithRetry tries a URL. Values below
// one are treated as one.
func (f *Fetcher) WithAttempts(n int) *Fetcher {
	if n < 1 {
		n = 1
	}
	f.maxAttempts = n
	return f
}

// WithLimiter makes every request wait for per-domain rate limit clearance
func (f *Fetcher) WithLimiter(l *worker.Limiter) *Fetcher {
	f.limiter = l
	return f
}

// WithCache memoizes successful fetches
func (f *Fetcher) WithCache(c cache.Cache, ttl time.Duration) *Fetcher {
	if c != nil {
		f.cache = c
	}
	f.cacheTTL = ttl
	return f
}

// Fetch retrieves rawURL, retrying transient failures. It satisfies
// PageFetcher.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	key := cache.Key(cache.KindPage, rawURL)

	var cached FetchResult
	if cache.GetJSON(f.cache, key, &cached) {
		return &cached, nil
	}

	result, err := f.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	_ = cache.SetJSON(f.cache, key, result, f.cacheTTL)
	return result, nil
}

// FetchWithRetry retries 5xx, 429 and network errors with exponential backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	attempts := f.maxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			fetchSleepFunc(fetchBackoff * time.Duration(1<<(attempt-1)))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")

	// Pages declaring a legacy charset are decoded to UTF-8 before parsing
	var reader io.Reader = io.LimitReader(resp.Body, f.maxBytes)
	if decoded, cerr := charset.NewReader(reader, contentType); cerr == nil {
		reader = decoded
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &FetchResult{
		HTML:        string(body),
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
	}, nil
}

// isRetryableFetchError reports whether err is worth another attempt:
// server errors, 429 and transport failures. Cancellation never is.
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, "unexpected status: "); ok {
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return false
		}
		code, convErr := strconv.Atoi(fields[0])
		if convErr != nil {
			return false
		}
		return code == http.StatusTooManyRequests || code >= 500
	}
	return strings.HasPrefix(msg, "fetch: ")
}
