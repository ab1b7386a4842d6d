package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/debatelens/internal/cache"
	"github.com/ppiankov/debatelens/internal/classify"
	"github.com/ppiankov/debatelens/internal/extract"
	"github.com/ppiankov/debatelens/internal/harvest"
	"github.com/ppiankov/debatelens/internal/llm"
	"github.com/ppiankov/debatelens/internal/logging"
	"github.com/ppiankov/debatelens/internal/model"
	"github.com/ppiankov/debatelens/internal/search"
	"github.com/ppiankov/debatelens/internal/util"
	"github.com/ppiankov/debatelens/internal/validate"
	"github.com/ppiankov/debatelens/internal/worker"
)

// NewPipeline wires the production components named by cfg: the cascade
// with its remote oracles, DuckDuckGo search, the page fetcher and the
// default claim extractor.
func NewPipeline(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	logger = logging.OrNop(logger)
	store := cache.New(cfg.Cache)

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.Oracle.Primary, cfg.HTTP))
	if err != nil {
		return nil, fmt.Errorf("primary oracle: %w", err)
	}
	if provider != nil {
		logger.Info("primary oracle enabled", zap.String("provider", provider.Name()))
	}

	deps := classify.Deps{Provider: provider, Cache: store, Logger: logger.Named("cascade")}
	if cfg.Oracle.ZeroShot.Enabled && cfg.Oracle.ZeroShot.URL != "" {
		zs, err := llm.NewZeroShotClient(llm.ZeroShotConfig{
			URL:        cfg.Oracle.ZeroShot.URL,
			Token:      cfg.Oracle.ZeroShot.Token,
			Timeout:    cfg.Oracle.ZeroShot.Timeout,
			HTTPProxy:  cfg.HTTP.HTTPProxy,
			HTTPSProxy: cfg.HTTP.HTTPSProxy,
			NoProxy:    cfg.HTTP.NoProxy,
		})
		if err != nil {
			return nil, fmt.Errorf("zero-shot oracle: %w", err)
		}
		deps.ZeroShot = zs
	}

	cascade, err := classify.FromConfig(cfg, deps)
	if err != nil {
		return nil, err
	}
	logger.Debug("cascade ready", zap.Strings("layers", cascade.Steps()))

	harvester, err := newHarvester(cfg, store, logger.Named("harvest"))
	if err != nil {
		return nil, err
	}

	var rewriter extract.Rewriter
	if provider != nil && cfg.Oracle.Primary.Rewrite {
		rewriter = extract.NewLLMRewriter(provider)
	}

	return New(cfg, Components{
		Cascade:   cascade,
		Harvester: harvester,
		Extractor: extract.NewClaimExtractor(rewriter, logger.Named("extract")),
		Logger:    logger,
	})
}

func newHarvester(cfg *model.Config, store cache.Cache, logger *zap.Logger) (*harvest.Harvester, error) {
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	fetcher := harvest.NewFetcher(
		cfg.HTTP.Timeout,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
	).WithAttempts(cfg.HTTP.MaxAttempts).
		WithLimiter(limiter).
		WithCache(store, cfg.Cache.DiskTTL)

	var searcher search.Searcher = search.NewDuckDuckGo(search.DuckDuckGoConfig{
		Endpoint:   cfg.Search.Endpoint,
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    cfg.Search.Timeout,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
	})
	searcher = search.NewCachedSearcher(searcher, store, cfg.Cache.MemoryTTL)

	authority, err := validate.NewAuthorityClassifier(cfg.Authority)
	if err != nil {
		return nil, err
	}

	deps := harvest.Deps{
		Searcher:  searcher,
		Fetcher:   fetcher,
		Authority: authority,
		Limiter:   limiter,
		Logger:    logger,
	}
	if cfg.Harvest.RespectRobots {
		deps.Robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}

	return harvest.New(cfg, deps)
}
