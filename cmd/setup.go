package main

import (
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/newsletter-cli/internal/collector"
	"github.com/sells-group/newsletter-cli/internal/config"
	"github.com/sells-group/newsletter-cli/internal/fetcher"
	"github.com/sells-group/newsletter-cli/internal/model"
	"github.com/sells-group/newsletter-cli/internal/pipeline"
	"github.com/sells-group/newsletter-cli/internal/sink"
	"github.com/sells-group/newsletter-cli/internal/verify"
)

func buildFetcher(cfg *config.Config) fetcher.Fetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
		HostRate:   rate.Limit(cfg.Fetch.HostRate),
		HostBurst:  cfg.Fetch.HostBurst,
	})
}

// buildCollectors creates one collector per enabled source id. Unknown ids
// are a configuration error, raised before any collector runs.
func buildCollectors(cfg *config.Config, fetch fetcher.Fetcher) ([]collector.Collector, error) {
	collectors := make([]collector.Collector, 0, len(cfg.Sources.Enabled))
	for _, id := range cfg.Sources.Enabled {
		switch model.Source(id) {
		case model.SourceRSS:
			collectors = append(collectors, collector.NewRSS(fetch, collector.RSSOptions{
				Websites:        cfg.Sources.RSS.Websites,
				MaxFeedsPerSite: cfg.Sources.RSS.MaxFeedsPerSite,
			}))
		case model.SourceDirectory:
			collectors = append(collectors, collector.NewDirectory(fetch, collector.DirectoryOptions{
				URLs: cfg.Sources.Directory.URLs,
			}))
		case model.SourceCurated:
			collectors = append(collectors, collector.NewCurated(collector.CuratedOptions{
				Path: cfg.Sources.Curated.Path,
			}))
		case model.SourcePlatform:
			collectors = append(collectors, collector.NewPlatform(fetch, collector.PlatformOptions{
				BaseURL:         cfg.Sources.Platform.BaseURL,
				PublicationHost: cfg.Sources.Platform.PublicationHost,
				Keywords:        cfg.Processing.Keywords,
				PageSize:        cfg.Sources.Platform.PageSize,
			}))
		default:
			return nil, eris.Wrapf(pipeline.ErrConfiguration, "unknown source id %q", id)
		}
	}
	return collectors, nil
}

func buildRanking(cfg *config.Config) (pipeline.QualityRanking, error) {
	if len(cfg.Sources.Priority) == 0 {
		return pipeline.DefaultRanking(), nil
	}
	return pipeline.RankingFromPriority(cfg.Sources.Priority)
}

// buildVerifier returns the email verifier for the completeness policy, or
// nil when verification is skipped or completeness is metadata-only.
func buildVerifier(cfg *config.Config) (verify.Verifier, error) {
	if cfg.Processing.SkipEmailVerification {
		return nil, nil
	}
	switch cfg.Processing.VerificationMethod {
	case "", "syntactic":
		return verify.Syntactic{}, nil
	case "mx":
		return verify.NewMX(time.Duration(cfg.Processing.VerifyTimeoutSecs) * time.Second), nil
	default:
		return nil, eris.Wrapf(pipeline.ErrConfiguration, "unknown verification method %q", cfg.Processing.VerificationMethod)
	}
}

// buildSinks creates the enabled sinks. The returned closer releases the
// SQLite handle when that sink is enabled.
func buildSinks(cfg *config.Config) ([]sink.Sink, func(), error) {
	var sinks []sink.Sink
	closer := func() {}

	if cfg.Output.CSV.Enabled {
		sinks = append(sinks, sink.NewCSV(cfg.Output.CSV.Path))
	}
	if cfg.Output.JSON.Enabled {
		sinks = append(sinks, sink.NewJSON(cfg.Output.JSON.Path))
	}
	if cfg.Output.XLSX.Enabled {
		sinks = append(sinks, sink.NewXLSX(cfg.Output.XLSX.Path))
	}
	if cfg.Output.SQLite.Enabled {
		db, err := sink.NewSQLiteSink(cfg.Output.SQLite.Path)
		if err != nil {
			return nil, closer, err
		}
		sinks = append(sinks, db)
		closer = func() { _ = db.Close() }
	}

	return sinks, closer, nil
}
