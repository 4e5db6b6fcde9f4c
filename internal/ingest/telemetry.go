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

package ingest

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

var tracer = otel.Tracer("github.com/cardinalhq/seriesingest/internal/ingest")

var (
	seriesValid     metric.Int64Counter
	seriesMalformed metric.Int64Counter
	seriesDuplicate metric.Int64Counter
	seriesIngested  metric.Int64Counter
	seriesFailed    metric.Int64Counter
	runDuration     metric.Float64Histogram
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/seriesingest/internal/ingest")

	var err error
	seriesValid, err = meter.Int64Counter(
		"seriesingest.series.valid",
		metric.WithDescription("Number of series that passed validation"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create series.valid counter: %w", err))
	}

	seriesMalformed, err = meter.Int64Counter(
		"seriesingest.series.malformed",
		metric.WithDescription("Number of series that failed validation, by reason"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create series.malformed counter: %w", err))
	}

	seriesDuplicate, err = meter.Int64Counter(
		"seriesingest.series.duplicate",
		metric.WithDescription("Number of valid series dropped as duplicates"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create series.duplicate counter: %w", err))
	}

	seriesIngested, err = meter.Int64Counter(
		"seriesingest.series.ingested",
		metric.WithDescription("Number of rows added to the output store"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create series.ingested counter: %w", err))
	}

	seriesFailed, err = meter.Int64Counter(
		"seriesingest.series.failed",
		metric.WithDescription("Number of candidate files that could not be inspected"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create series.failed counter: %w", err))
	}

	runDuration, err = meter.Float64Histogram(
		"seriesingest.run.duration",
		metric.WithDescription("Duration of ingestion runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create run.duration histogram: %w", err))
	}
}

func recordRun(ctx context.Context, kind seriestype.Kind, res shardResult, summary RunSummary, elapsed time.Duration) {
	typeAttr := attribute.String("series_type", kind.String())
	attrs := metric.WithAttributes(typeAttr)

	seriesValid.Add(ctx, int64(summary.Valid), attrs)
	seriesDuplicate.Add(ctx, int64(summary.Duplicate), attrs)
	seriesIngested.Add(ctx, int64(summary.Ingested), attrs)
	seriesFailed.Add(ctx, int64(summary.Failed), attrs)
	for reason, n := range res.Malformed {
		seriesMalformed.Add(ctx, int64(n), metric.WithAttributes(typeAttr, attribute.String("reason", string(reason))))
	}
	runDuration.Record(ctx, elapsed.Seconds(), attrs)
}

func startRunSpan(ctx context.Context, kind seriestype.Kind, parallel bool) (context.Context, trace.Span) {
	return tracer.Start(ctx, "seriesingest.ingest", trace.WithAttributes(
		attribute.String("series_type", kind.String()),
		attribute.Bool("parallel", parallel),
	))
}

func endRunSpan(span trace.Span, summary RunSummary, err error) {
	span.SetAttributes(
		attribute.Int("ingested", summary.Ingested),
		attribute.Int("valid", summary.Valid),
		attribute.Int("malformed", summary.Malformed),
		attribute.Int("duplicate", summary.Duplicate),
		attribute.Int("failed", summary.Failed),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
