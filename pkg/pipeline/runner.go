package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mkarlsen/sunwheel/pkg/aggregate"
	"github.com/mkarlsen/sunwheel/pkg/cache"
	"github.com/mkarlsen/sunwheel/pkg/chart"
	"github.com/mkarlsen/sunwheel/pkg/errors"
	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
	"github.com/mkarlsen/sunwheel/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete aggregate → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Aggregate
	aggStart := time.Now()
	observability.Pipeline().OnAggregateStart(ctx, opts.RecordsPath)
	raw, stats, datasetHit, err := r.AggregateWithCacheInfo(ctx, opts)
	observability.Pipeline().OnAggregateComplete(ctx, opts.RecordsPath, stats.Records, time.Since(aggStart), err)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	result.Dataset = raw
	result.Stats.AggregateTime = time.Since(aggStart)
	result.Stats.Records = stats.Records
	result.Stats.Matched = stats.Matched
	result.CacheInfo.DatasetHit = datasetHit

	// Compute dataset hash for cache keys and API responses
	if datasetData, err := chart.MarshalDataset(raw); err == nil {
		result.DatasetHash = cache.Hash(datasetData)
	}

	r.Logger.Info("aggregated dataset",
		"records", stats.Records,
		"matched", stats.Matched,
		"duration", result.Stats.AggregateTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.VizType)
	layout, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, raw, opts)
	observability.Pipeline().OnLayoutComplete(ctx, opts.VizType, time.Since(layoutStart), err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Nodes = len(layout.Arcs)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"viz_type", layout.VizType,
		"arcs", len(layout.Arcs),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// AggregateWithCacheInfo builds the dataset with caching and returns cache
// hit info. When opts.Dataset is set, aggregation is skipped entirely and
// the inline dataset is returned as-is.
func (r *Runner) AggregateWithCacheInfo(ctx context.Context, opts Options) (*hierarchy.Raw, aggregate.Stats, bool, error) {
	if err := opts.ValidateForAggregate(); err != nil {
		return nil, aggregate.Stats{}, false, err
	}
	r.applyLogger(&opts)

	if opts.Dataset != nil {
		return opts.Dataset, aggregate.Stats{}, false, nil
	}

	recordsData, err := os.ReadFile(opts.RecordsPath)
	if err != nil {
		return nil, aggregate.Stats{}, false, fmt.Errorf("read records %s: %w", opts.RecordsPath, err)
	}
	rulesData, err := os.ReadFile(opts.RulesPath)
	if err != nil {
		return nil, aggregate.Stats{}, false, fmt.Errorf("read rules %s: %w", opts.RulesPath, err)
	}

	cacheKey := r.Keyer.DatasetKey(cache.Hash(recordsData), cache.Hash(rulesData), opts.DatasetKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			raw, err := chart.ReadDataset(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "dataset")
				return raw, aggregate.Stats{}, true, nil // Cache hit
			}
		}
		observability.Cache().OnCacheMiss(ctx, "dataset")
	}

	records, err := aggregate.DecodeRecords(opts.RecordsPath, recordsData, opts.TextColumn)
	if err != nil {
		return nil, aggregate.Stats{}, false, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode records %s", opts.RecordsPath)
	}
	rules, err := aggregate.ParseRules(rulesData)
	if err != nil {
		return nil, aggregate.Stats{}, false, errors.Wrap(errors.ErrCodeInvalidRules, err, "parse rules %s", opts.RulesPath)
	}
	raw, stats := aggregate.Aggregate(records, rules)

	// Cache the result
	if data, err := chart.MarshalDataset(raw); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLDataset)
		observability.Cache().OnCacheSet(ctx, "dataset", len(data))
	}

	return raw, stats, false, nil // Cache miss
}

// Aggregate is a convenience wrapper that calls AggregateWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Aggregate(ctx context.Context, opts Options) (*hierarchy.Raw, aggregate.Stats, error) {
	raw, stats, _, err := r.AggregateWithCacheInfo(ctx, opts)
	return raw, stats, err
}

// GenerateLayoutWithCacheInfo generates a layout with caching and returns
// cache hit info.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, raw *hierarchy.Raw, opts Options) (chart.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return chart.Layout{}, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	datasetData, err := chart.MarshalDataset(raw)
	if err != nil {
		return chart.Layout{}, false, fmt.Errorf("serialize dataset for cache key: %w", err)
	}
	datasetHash := cache.Hash(datasetData)
	cacheKey := r.Keyer.LayoutKey(datasetHash, opts.LayoutKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		cached, err := chart.UnmarshalLayout(data)
		if err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	layout, err := GenerateLayout(raw, opts)
	if err != nil {
		return chart.Layout{}, false, err
	}

	// Cache the result
	if data, err := chart.MarshalLayout(layout); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return layout, false, nil // Cache miss
}

// GenerateLayout is a convenience wrapper that calls
// GenerateLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, raw *hierarchy.Raw, opts Options) (chart.Layout, error) {
	layout, _, err := r.GenerateLayoutWithCacheInfo(ctx, raw, opts)
	return layout, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout chart.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := chart.MarshalLayout(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered, err := RenderFromLayout(layout, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout chart.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
