// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package ingest moves raw series files into the output stores, either
// inline or through a fixed pool of workers.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/cardinalhq/seriesingest/config"
	"github.com/cardinalhq/seriesingest/internal/idgen"
	"github.com/cardinalhq/seriesingest/internal/logctx"
	"github.com/cardinalhq/seriesingest/internal/outputstore"
	"github.com/cardinalhq/seriesingest/internal/series"
	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

// LevelCritical marks failures that lose the result of a run.
const LevelCritical = slog.LevelError + 4

// Coordinator runs ingestion for both series kinds. Runs are serialized.
type Coordinator struct {
	cfg        *config.Config
	types      map[seriestype.Kind]seriestype.Config
	validators map[seriestype.Kind]*series.Validator
	pool       *pool

	mu     sync.Mutex
	closed bool
}

type Option func(*options)

type options struct {
	procs int
}

// WithProcessors overrides the number of execution units the worker pool is
// sized from. It defaults to GOMAXPROCS.
func WithProcessors(n int) Option {
	return func(o *options) {
		o.procs = n
	}
}

// New validates the configuration and every resource it names, then starts
// the worker pool when parallel ingestion is enabled. Any failure aborts
// construction.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Coordinator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	o := options{procs: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&o)
	}

	ll := logctx.FromContext(ctx)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	c := &Coordinator{
		cfg:        cfg,
		types:      make(map[seriestype.Kind]seriestype.Config, len(seriestype.Kinds)),
		validators: make(map[seriestype.Kind]*series.Validator, len(seriestype.Kinds)),
	}
	types := make([]seriestype.Config, 0, len(seriestype.Kinds))
	for _, kind := range seriestype.Kinds {
		st, err := cfg.SeriesType(kind)
		if err != nil {
			return nil, err
		}
		c.types[kind] = st
		c.validators[kind] = series.NewValidator(st)
		types = append(types, st)
	}

	if err := NewResourceValidator(types...).Validate(ctx); err != nil {
		return nil, fmt.Errorf("resource validation failed: %w", err)
	}

	if cfg.MultiCore.Enable {
		size := poolSize(cfg.MultiCore.Limit, o.procs)
		if size > 1 {
			c.pool = newPool(ctx, size, c.types)
			ll.Info("Parallel ingestion enabled", slog.Int("workers", size))
		} else {
			ll.Warn("Parallel ingestion requested but only one worker is available, falling back to single-core ingestion",
				slog.Int("limit", cfg.MultiCore.Limit), slog.Int("processors", o.procs))
		}
	}

	return c, nil
}

// Config returns the configuration the coordinator was built with.
func (c *Coordinator) Config() *config.Config {
	return c.cfg
}

// Parallel reports whether runs are dispatched to the worker pool.
func (c *Coordinator) Parallel() bool {
	return c.pool != nil
}

type RunOption func(*runOptions)

type runOptions struct {
	maxSeries    int
	hasMaxSeries bool
}

// WithMaxSeries overrides the configured maximum number of valid series
// collected by a single-core run. It has no effect in parallel mode.
func WithMaxSeries(n int) RunOption {
	return func(o *runOptions) {
		o.maxSeries = n
		o.hasMaxSeries = true
	}
}

func (c *Coordinator) IngestLabeled(ctx context.Context, opts ...RunOption) (RunSummary, error) {
	return c.Ingest(ctx, seriestype.Labeled, opts...)
}

func (c *Coordinator) IngestUnlabeled(ctx context.Context, opts ...RunOption) (RunSummary, error) {
	return c.Ingest(ctx, seriestype.Unlabeled, opts...)
}

// Ingest runs one ingestion of the given series kind. Malformed series never
// fail a run. When persisting the output store fails, the returned summary
// reports zero ingested rows along with the error.
func (c *Coordinator) Ingest(ctx context.Context, kind seriestype.Kind, opts ...RunOption) (summary RunSummary, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := startRunSpan(ctx, kind, c.pool != nil)
	defer func() {
		endRunSpan(span, summary, err)
	}()

	return c.ingest(ctx, kind, opts...)
}

func (c *Coordinator) ingest(ctx context.Context, kind seriestype.Kind, opts ...RunOption) (RunSummary, error) {
	if c.closed {
		return RunSummary{}, ErrClosed
	}
	st, ok := c.types[kind]
	if !ok {
		return RunSummary{}, fmt.Errorf("unknown series type %d", kind)
	}

	var ro runOptions
	for _, opt := range opts {
		opt(&ro)
	}

	ctx, ll := logctx.With(ctx,
		slog.String("runID", idgen.NewRunID()),
		slog.String("seriesType", kind.String()))

	maxSeries := c.cfg.MaxSeriesPerRun
	if ro.hasMaxSeries {
		if ro.maxSeries <= 0 {
			ll.Log(ctx, LevelCritical, "The maximum number of series must be a positive integer",
				slog.Int("maxSeries", ro.maxSeries))
			return RunSummary{}, fmt.Errorf("%w: %d", ErrInvalidMaxSeries, ro.maxSeries)
		}
		if c.pool != nil {
			ll.Warn("The maximum number of series is only honored in single-core mode, all series will be ingested",
				slog.Int("maxSeries", ro.maxSeries))
		}
		maxSeries = ro.maxSeries
	}

	start := time.Now()
	ll.Info("Starting ingestion")

	candidates, err := scanInput(ctx, st)
	if err != nil {
		ll.Error("Failed to scan the input directory", slog.String("path", st.InputDir), slog.Any("error", err))
		return RunSummary{}, fmt.Errorf("failed to scan input directory %s: %w", st.InputDir, err)
	}
	if len(candidates) == 0 {
		ll.Info("No series to ingest")
		return RunSummary{}, nil
	}

	var res shardResult
	if c.pool != nil {
		ll.Debug("Dispatching series to the worker pool", slog.Int("files", len(candidates)), slog.Int("workers", c.pool.size()))
		res = c.pool.dispatch(ctx, kind, candidates)
	} else {
		res = processFiles(ctx, c.validators[kind], candidates, maxSeries)
	}

	summary := RunSummary{
		Valid:     len(res.Rows),
		Malformed: res.malformedCount(),
		Failed:    res.Failed,
	}
	summary.Ingested = summary.Valid

	var persistErr error
	if summary.Valid > 0 {
		summary.Duplicate, persistErr = persist(ctx, st, res.Rows)
		summary.Ingested -= summary.Duplicate
		if persistErr != nil {
			ll.Log(ctx, LevelCritical, "Failed to update the output store, the series of this run are lost",
				slog.String("path", st.OutputFile), slog.Any("error", persistErr))
			summary.Ingested = 0
		}
	}

	elapsed := time.Since(start)
	recordRun(ctx, kind, res, summary, elapsed)
	ll.Info("Ingestion completed", slog.Any("summary", summary), slog.Duration("elapsed", elapsed))

	if persistErr != nil {
		return summary, fmt.Errorf("failed to persist %s series: %w", kind, persistErr)
	}
	return summary, nil
}

// persist merges rows into the output store and drops the ones duplicating
// earlier rows unless duplicates are saved. The store is rewritten only when
// at least one row survives.
func persist(ctx context.Context, st seriestype.Config, rows series.Batch) (int, error) {
	ll := logctx.FromContext(ctx)
	store := outputstore.ForSeries(st)

	table, err := store.Load()
	if err != nil {
		return 0, err
	}
	table.Append(rows...)

	duplicates := 0
	if st.Duplicates != seriestype.DuplicatesSave {
		duplicates = table.DropDuplicates()
		if duplicates > 0 {
			ll.Info("Duplicated series discarded", slog.Int("count", duplicates))
		}
	}

	if len(rows)-duplicates <= 0 {
		return duplicates, nil
	}
	if err := store.Save(table); err != nil {
		return duplicates, err
	}
	return duplicates, nil
}

// Close stops the worker pool. It is safe to call more than once.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.pool == nil {
		return nil
	}
	return c.pool.close()
}
