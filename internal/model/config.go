package model

import "time"

// Config is the complete debatelens configuration.
// It is built once (defaults < config file < env < flags) and injected into
// every component at construction.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cascade      CascadeConfig      `yaml:"cascade" mapstructure:"cascade"`
	Oracle       OracleConfig       `yaml:"oracle" mapstructure:"oracle"`
	Search       SearchConfig       `yaml:"search" mapstructure:"search"`
	Harvest      HarvestConfig      `yaml:"harvest" mapstructure:"harvest"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Pipeline     PipelineConfig     `yaml:"pipeline" mapstructure:"pipeline"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Authority    AuthorityConfig    `yaml:"authority" mapstructure:"authority"`
}

// HTTPConfig controls page fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxAttempts  int           `yaml:"max_attempts" mapstructure:"max_attempts"` // 1 disables retries
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CascadeConfig is the classification policy: an ordered list of step names
// evaluated first-match-wins.
type CascadeConfig struct {
	Layers []string `yaml:"layers" mapstructure:"layers"`
}

// OracleConfig configures the two remote classifiers
type OracleConfig struct {
	Primary  LLMConfig      `yaml:"primary" mapstructure:"primary"`
	ZeroShot ZeroShotConfig `yaml:"zero_shot" mapstructure:"zero_shot"`
}

// LLMConfig configures the generative provider used as the primary oracle
// and, optionally, as the claim rewriter.
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, gemini, ollama, "" (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	Rewrite   bool   `yaml:"rewrite" mapstructure:"rewrite"` // Use the provider to rewrite sentences into claims
}

// ZeroShotConfig configures the hosted zero-shot entailment classifier
type ZeroShotConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	URL     string        `yaml:"url" mapstructure:"url"`
	Token   string        `yaml:"-" mapstructure:"token"` // Optional bearer token
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SearchConfig controls query synthesis and web search
type SearchConfig struct {
	Policy     string        `yaml:"policy" mapstructure:"policy"` // dual or single
	MaxResults int           `yaml:"max_results" mapstructure:"max_results"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// HarvestConfig controls URL filtering and paragraph extraction
type HarvestConfig struct {
	MinChunkChars       int      `yaml:"min_chunk_chars" mapstructure:"min_chunk_chars"`
	MaxChunksPerPage    int      `yaml:"max_chunks_per_page" mapstructure:"max_chunks_per_page"`
	FetchWorkers        int      `yaml:"fetch_workers" mapstructure:"fetch_workers"`
	BlockedExtensions   []string `yaml:"blocked_extensions" mapstructure:"blocked_extensions"`
	BlockedDomains      []string `yaml:"blocked_domains" mapstructure:"blocked_domains"`
	BoilerplateKeywords []string `yaml:"boilerplate_keywords" mapstructure:"boilerplate_keywords"`
	RespectRobots       bool     `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// ConcurrencyConfig controls claim-level parallelism
type ConcurrencyConfig struct {
	ClaimWorkers int `yaml:"claim_workers" mapstructure:"claim_workers"`
}

// RateLimitingConfig controls per-domain request rates
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// CacheConfig controls the page / search / oracle cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// PipelineConfig bounds a whole run
type PipelineConfig struct {
	Deadline time.Duration `yaml:"deadline" mapstructure:"deadline"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeTrace  bool `yaml:"include_trace" mapstructure:"include_trace"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or console
}

// AuthorityConfig drives the source authority classifier
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
	PathPatterns     []PathPattern     `yaml:"path_patterns,omitempty" mapstructure:"path_patterns"`
}

// PathPattern maps a URL path regex to an authority tier
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// DesktopUserAgent is sent with every page fetch and search request.
// Plain bot user agents get blocked by most news sites.
const DesktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultLayers is the default cascade policy
var DefaultLayers = []string{"authoritative", "impact", "modal", "attribution", "primary_oracle", "zero_shot"}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    DesktopUserAgent,
			MaxBodyBytes: 2_000_000,
			MaxAttempts:  2,
		},
		Cascade: CascadeConfig{
			Layers: append([]string(nil), DefaultLayers...),
		},
		Oracle: OracleConfig{
			Primary: LLMConfig{
				Timeout:   30,
				MaxTokens: 20,
			},
			ZeroShot: ZeroShotConfig{
				Enabled: true,
				URL:     "https://api-inference.huggingface.co/models/typeform/distilbert-base-uncased-mnli",
				Timeout: 20 * time.Second,
			},
		},
		Search: SearchConfig{
			Policy:     "dual",
			MaxResults: 5,
			Endpoint:   "https://html.duckduckgo.com/html/",
			Timeout:    15 * time.Second,
		},
		Harvest: HarvestConfig{
			MinChunkChars:     120,
			MaxChunksPerPage:  12,
			FetchWorkers:      4,
			BlockedExtensions: []string{".pdf"},
			BlockedDomains:    []string{"researchgate.net", "sciencedirect.com"},
			BoilerplateKeywords: []string{
				"subscribe", "sign in", "privacy policy", "cookie policy",
				"advertisement", "all rights reserved", "newsletter", "terms of use",
			},
		},
		Concurrency: ConcurrencyConfig{
			ClaimWorkers: 1,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".debatelens-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Pipeline: PipelineConfig{
			Deadline: 5 * time.Minute,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"gov", "gov.uk", "europa.eu", "who.int", "un.org", "worldbank.org",
				"imf.org", "oecd.org", "census.gov", "nih.gov", "nature.com", "science.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "britannica.com", "reuters.com", "apnews.com",
				"bbc.co.uk", "bbc.com", "nytimes.com", "theguardian.com", "economist.com",
			},
			PathPatterns: []PathPattern{
				{Pattern: `^/(research|publications|reports)/`, Tier: "secondary"},
			},
		},
	}
}
