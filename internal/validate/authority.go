// Package validate grades evidence sources by authority.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ppiankov/debatelens/internal/model"
)

// Institutional suffixes that mark a host as primary when no list matched
var institutionalSuffixes = []string{".gov", ".edu", ".ac.uk", ".gov.uk", ".int"}

// AuthorityClassifier assigns each evidence URL an authority tier. Explicit
// host mappings win, then the primary and secondary domain lists, then path
// patterns, then institutional suffixes.
type AuthorityClassifier struct {
	domainMap map[string]model.AuthorityTier
	primary   []string
	secondary []string
	paths     []pathRule
}

type pathRule struct {
	re   *regexp.Regexp
	tier model.AuthorityTier
}

// NewAuthorityClassifier builds a classifier from cfg. Path patterns that do
// not compile are a configuration error.
func NewAuthorityClassifier(cfg model.AuthorityConfig) (*AuthorityClassifier, error) {
	c := &AuthorityClassifier{
		domainMap: make(map[string]model.AuthorityTier, len(cfg.DomainMap)),
		primary:   normalizeDomains(cfg.PrimaryDomains),
		secondary: normalizeDomains(cfg.SecondaryDomains),
	}

	for host, tier := range cfg.DomainMap {
		c.domainMap[strings.ToLower(host)] = parseTierString(tier)
	}

	for _, p := range cfg.PathPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("authority path pattern %q: %w", p.Pattern, err)
		}
		c.paths = append(c.paths, pathRule{re: re, tier: parseTierString(p.Tier)})
	}

	return c, nil
}

// Classify returns the authority tier of rawURL. Unparseable URLs and
// unknown hosts are tertiary.
func (c *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return model.TierTertiary
	}
	host := strings.ToLower(parsed.Hostname())

	if tier, ok := c.domainMap[host]; ok {
		return tier
	}
	if matchesDomain(host, c.primary) {
		return model.TierPrimary
	}
	if matchesDomain(host, c.secondary) {
		return model.TierSecondary
	}
	for _, rule := range c.paths {
		if rule.re.MatchString(parsed.Path) {
			return rule.tier
		}
	}
	for _, suffix := range institutionalSuffixes {
		if strings.HasSuffix(host, suffix) {
			return model.TierPrimary
		}
	}
	return model.TierTertiary
}

// matchesDomain reports whether host equals one of domains or is a subdomain
// of it. A bare suffix such as "gov" matches any host ending in ".gov".
func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.Trim(strings.ToLower(strings.TrimSpace(d)), ".")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

// parseTierString accepts tier names and their numeric form; anything else
// is tertiary
func parseTierString(tier string) model.AuthorityTier {
	tier = strings.ToLower(strings.TrimSpace(tier))
	switch tier {
	case "1":
		return model.TierPrimary
	case "2":
		return model.TierSecondary
	}
	if t := model.ParseAuthorityTier(tier); t != model.TierUnknown {
		return t
	}
	return model.TierTertiary
}
