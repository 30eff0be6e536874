package pipeline

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/newsletter-cli/internal/collector"
	"github.com/sells-group/newsletter-cli/internal/model"
	"github.com/sells-group/newsletter-cli/internal/sink"
)

// Options configures a pipeline run.
type Options struct {
	Ranking       QualityRanking
	Policy        KeepPolicy
	Limit         int // max canonical records kept, 0 = unlimited
	Concurrency   int // max collectors fetching at once
	SourceTimeout time.Duration
}

// Pipeline drives collectors through normalize, identity resolution, merge,
// and the completeness filter, then hands the finalized records to sinks.
// Collectors fetch concurrently; merging happens single-threaded afterwards
// since fetch latency dominates and merge is cheap.
type Pipeline struct {
	collectors []collector.Collector
	sinks      []sink.Sink
	opts       Options
}

// New validates the configuration and creates a Pipeline. Collectors are
// ordered by descending quality so equal-priority ties resolve the same way
// on every run.
func New(collectors []collector.Collector, sinks []sink.Sink, opts Options) (*Pipeline, error) {
	if len(collectors) == 0 {
		return nil, eris.Wrap(ErrConfiguration, "no sources enabled")
	}
	if len(sinks) == 0 {
		return nil, eris.Wrap(ErrConfiguration, "no sinks enabled")
	}
	if opts.Ranking == nil {
		opts.Ranking = DefaultRanking()
	}
	for _, c := range collectors {
		if _, ok := opts.Ranking[c.Source()]; !ok {
			return nil, eris.Wrapf(ErrConfiguration, "source %q missing from quality ranking", c.Source())
		}
	}
	if opts.Limit < 0 {
		return nil, eris.Wrap(ErrConfiguration, "limit must be non-negative")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = len(collectors)
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 60 * time.Second
	}

	ordered := make([]collector.Collector, len(collectors))
	copy(ordered, collectors)
	sort.SliceStable(ordered, func(i, j int) bool {
		qi, qj := opts.Ranking[ordered[i].Source()], opts.Ranking[ordered[j].Source()]
		if qi != qj {
			return qi > qj
		}
		return ordered[i].Source() < ordered[j].Source()
	})

	return &Pipeline{collectors: ordered, sinks: sinks, opts: opts}, nil
}

// Run executes one full batch: fetch, merge, filter, write. A failing source
// contributes zero records and is counted, never aborting the run; a failing
// sink fails the run since the caller's artifact was not produced.
func (p *Pipeline) Run(ctx context.Context) ([]model.Newsletter, *model.RunResult, error) {
	start := time.Now()
	result := &model.RunResult{
		RunID:     uuid.New().String(),
		Sources:   make(map[model.Source]model.SourceStats, len(p.collectors)),
		StartedAt: start.UTC(),
	}
	log := zap.L().With(zap.String("run_id", result.RunID))
	log.Info("pipeline: starting run", zap.Int("sources", len(p.collectors)))

	// Fetch all sources concurrently, buffering raw records per collector.
	batches := make([][]model.RawRecord, len(p.collectors))
	errs := make([]error, len(p.collectors))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, c := range p.collectors {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gCtx, p.opts.SourceTimeout)
			defer cancel()
			batches[i], errs[i] = c.Collect(cctx)
			return nil
		})
	}
	_ = g.Wait()

	// Merge single-threaded in fixed quality order.
	merger := NewMerger(p.opts.Ranking)
	for i, c := range p.collectors {
		src := c.Source()
		stats := model.SourceStats{Seen: len(batches[i])}

		if err := errs[i]; err != nil {
			stats.Failed = true
			stats.Error = err.Error()
			result.FailedSources++
			if errors.Is(err, collector.ErrSourceTimeout) || errors.Is(err, context.DeadlineExceeded) {
				log.Warn("pipeline: source timed out", zap.String("source", string(src)))
			} else {
				log.Warn("pipeline: source failed", zap.String("source", string(src)), zap.Error(err))
			}
			result.Sources[src] = stats
			continue
		}

		for _, rec := range batches[i] {
			result.RecordsSeen++
			fields, err := Normalize(rec)
			if err != nil {
				stats.Malformed++
				result.Malformed++
				continue
			}
			merger.Merge(IdentityKey(fields), fields, src, rec.FetchedAt)
		}

		log.Info("pipeline: source merged",
			zap.String("source", string(src)),
			zap.Int("records", stats.Seen),
			zap.Int("malformed", stats.Malformed),
		)
		result.Sources[src] = stats
	}

	// Finalize and filter.
	finalized := merger.Finalize()
	result.Merged = len(finalized)

	kept := make([]model.Newsletter, 0, len(finalized))
	for _, n := range finalized {
		if !Keep(ctx, n, p.opts.Policy) {
			result.DroppedIncomplete++
			continue
		}
		kept = append(kept, n)
	}
	if p.opts.Limit > 0 && len(kept) > p.opts.Limit {
		log.Info("pipeline: applying record limit",
			zap.Int("limit", p.opts.Limit),
			zap.Int("kept", len(kept)),
		)
		kept = kept[:p.opts.Limit]
	}
	result.Kept = len(kept)
	result.Duration = time.Since(start).Milliseconds()

	// Write sinks. Records were computed either way, but a sink failure
	// means the caller's expected artifact was not produced.
	for _, s := range p.sinks {
		if err := s.Write(ctx, kept, result); err != nil {
			log.Error("pipeline: sink failed",
				zap.String("sink", s.Name()),
				zap.Error(err),
			)
			return kept, result, eris.Wrapf(err, "pipeline: sink %s", s.Name())
		}
	}

	log.Info("pipeline: run complete",
		zap.Int("records_seen", result.RecordsSeen),
		zap.Int("merged", result.Merged),
		zap.Int("kept", result.Kept),
		zap.Int("dropped_incomplete", result.DroppedIncomplete),
		zap.Int("failed_sources", result.FailedSources),
		zap.Int64("duration_ms", result.Duration),
	)
	return kept, result, nil
}
