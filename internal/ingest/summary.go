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
	"log/slog"

	"github.com/cardinalhq/seriesingest/internal/series"
)

// RunSummary reports the outcome of one ingestion run.
type RunSummary struct {
	// Ingested is the number of rows added to the output store.
	Ingested int
	// Valid is the number of series that passed validation.
	Valid int
	// Malformed is the number of series that failed validation.
	Malformed int
	// Duplicate is the number of valid series dropped as duplicates.
	Duplicate int
	// Failed is the number of candidate files that could not be inspected.
	Failed int
}

func (s RunSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("ingested", s.Ingested),
		slog.Int("valid", s.Valid),
		slog.Int("malformed", s.Malformed),
		slog.Int("duplicate", s.Duplicate),
		slog.Int("failed", s.Failed),
	)
}

// shardResult is what processing a list of files yields, either inline or
// inside a worker.
type shardResult struct {
	Rows      series.Batch
	Malformed map[series.ReasonKind]int
	Failed    int
}

func (r *shardResult) addMalformed(kind series.ReasonKind) {
	if r.Malformed == nil {
		r.Malformed = make(map[series.ReasonKind]int)
	}
	r.Malformed[kind]++
}

func (r *shardResult) merge(other shardResult) {
	r.Rows = append(r.Rows, other.Rows...)
	for kind, n := range other.Malformed {
		if r.Malformed == nil {
			r.Malformed = make(map[series.ReasonKind]int)
		}
		r.Malformed[kind] += n
	}
	r.Failed += other.Failed
}

func (r shardResult) malformedCount() int {
	total := 0
	for _, n := range r.Malformed {
		total += n
	}
	return total
}
