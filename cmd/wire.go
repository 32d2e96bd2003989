package main

import (
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/citation-audit/internal/discovery"
	"github.com/sells-group/citation-audit/internal/fetch"
	"github.com/sells-group/citation-audit/internal/napmatch"
	"github.com/sells-group/citation-audit/internal/pipeline"
	"github.com/sells-group/citation-audit/internal/registry"
	"github.com/sells-group/citation-audit/internal/resolve"
	"github.com/sells-group/citation-audit/internal/validate"
	"github.com/sells-group/citation-audit/pkg/jina"
	"github.com/sells-group/citation-audit/pkg/perplexity"
	"github.com/sells-group/citation-audit/pkg/serper"
)

// buildRegistry loads the directory strategy registry with any YAML
// overrides from config.
func buildRegistry() (*registry.Registry, error) {
	reg, err := registry.NewWithOverrides(cfg.Registry.Path)
	if err != nil {
		return nil, eris.Wrap(err, "load registry overrides")
	}
	return reg, nil
}

// buildFetcher assembles the three-tier page fetch cascade with its
// sqlite page cache. The returned cleanup closes the cache.
func buildFetcher() (*fetch.Cascade, func(), error) {
	jinaClient := jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))

	var tiers []fetch.Fetcher
	if !cfg.Fetch.DisableRender {
		tiers = append(tiers, fetch.NewChromeFetcher(
			fetch.WithSettleDelay(time.Duration(cfg.Fetch.RenderSettleSecs)*time.Second),
			fetch.WithRenderTimeout(time.Duration(cfg.Fetch.RenderTimeoutSecs)*time.Second),
		))
	}
	tiers = append(tiers,
		fetch.NewEvasiveHTTP(
			fetch.WithHTTPTimeout(time.Duration(cfg.Fetch.HTTPTimeoutSecs)*time.Second),
			fetch.WithMinContentLen(cfg.Fetch.MinContentLen),
		),
		fetch.NewJinaFetcher(jinaClient,
			fetch.WithReaderTimeout(time.Duration(cfg.Fetch.ReaderTimeoutSecs)*time.Second)),
	)

	cascade := fetch.NewCascade(tiers...).
		WithStatusPrecheck(&http.Client{Timeout: time.Duration(cfg.Fetch.HTTPTimeoutSecs) * time.Second})

	cleanup := func() {}
	if cfg.Fetch.CachePath != "" {
		cache, err := fetch.NewPageCache(cfg.Fetch.CachePath,
			time.Duration(cfg.Fetch.CacheTTLHours)*time.Hour)
		if err != nil {
			// The cache is an optimization; run without it rather than fail.
			zap.L().Warn("page cache unavailable", zap.Error(err))
		} else {
			cascade = cascade.WithCache(cache)
			cleanup = func() {
				if cerr := cache.Close(); cerr != nil {
					zap.L().Warn("close page cache", zap.Error(cerr))
				}
			}
		}
	}

	return cascade, cleanup, nil
}

// buildPipeline wires the full audit pipeline from config.
func buildPipeline() (*pipeline.Pipeline, func(), error) {
	reg, err := buildRegistry()
	if err != nil {
		return nil, nil, err
	}

	searchClient := serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))
	researchClient := perplexity.NewClient(cfg.Perplexity.Key,
		perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
		perplexity.WithModel(cfg.Perplexity.Model))

	fetcher, cleanup, err := buildFetcher()
	if err != nil {
		return nil, nil, err
	}

	validator := validate.New(searchClient,
		validate.WithReachTimeout(time.Duration(cfg.Discovery.ValidateTimeout)*time.Second))
	discoverer := discovery.New(researchClient, validator)
	resolver := resolve.New(searchClient, fetcher, reg)
	matcher := napmatch.NewMatcher()

	p := pipeline.New(cfg.Pipeline, discoverer, resolver, fetcher, matcher, reg)
	return p, cleanup, nil
}
