package harvest

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/debatelens/internal/model"
)

// Rejection reasons reported by URLFilter
const (
	RejectEmpty     = "empty"
	RejectScheme    = "scheme"
	RejectExtension = "blocked_extension"
	RejectDomain    = "blocked_domain"
	RejectRobots    = "robots"
)

// RobotsPolicy answers whether a URL may be crawled
type RobotsPolicy interface {
	CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error)
}

// URLFilter drops search results that are not worth fetching
type URLFilter struct {
	blockedExtensions []string
	blockedDomains    []string
	robots            RobotsPolicy
}

// NewURLFilter creates a filter from the harvest configuration. A nil robots
// policy skips robots.txt checks.
func NewURLFilter(cfg model.HarvestConfig, robots RobotsPolicy) *URLFilter {
	return &URLFilter{
		blockedExtensions: lowerAll(cfg.BlockedExtensions),
		blockedDomains:    lowerAll(cfg.BlockedDomains),
		robots:            robots,
	}
}

// Check applies the static rules: empty, non-http(s), blocked extension at
// the end of the path, blocked domain substring anywhere in the URL.
// It returns "" when the URL passes.
func (f *URLFilter) Check(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return RejectEmpty
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return RejectScheme
	}

	path := strings.ToLower(parsed.Path)
	for _, ext := range f.blockedExtensions {
		if strings.HasSuffix(path, ext) {
			return RejectExtension
		}
	}

	lower := strings.ToLower(rawURL)
	for _, domain := range f.blockedDomains {
		if strings.Contains(lower, domain) {
			return RejectDomain
		}
	}
	return ""
}

// Allowed consults robots.txt when a policy is configured and returns the
// site's crawl delay. Robots failures allow the fetch.
func (f *URLFilter) Allowed(ctx context.Context, rawURL string) (bool, time.Duration) {
	if f.robots == nil {
		return true, 0
	}
	ok, delay, err := f.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return true, 0
	}
	return ok, delay
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
