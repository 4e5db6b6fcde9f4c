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
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/cardinalhq/seriesingest/internal/logctx"
	"github.com/cardinalhq/seriesingest/internal/series"
	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

// scanInput lists the candidate files of a series kind in name order.
// Files without the configured extension are reported and left alone.
func scanInput(ctx context.Context, st seriestype.Config) ([]string, error) {
	ll := logctx.FromContext(ctx)

	entries, err := os.ReadDir(st.InputDir)
	if err != nil {
		return nil, err
	}

	var candidates []string
	ignored := mapset.NewThreadUnsafeSet[string]()
	ignoredCount := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) > len(st.FileExtension) && strings.HasSuffix(name, st.FileExtension) {
			candidates = append(candidates, filepath.Join(st.InputDir, name))
			continue
		}
		ignoredCount++
		ignored.Add(filepath.Ext(name))
	}

	if ignoredCount > 0 {
		ll.Warn("Files without the configured extension were found in the input directory and will be ignored",
			slog.Int("count", ignoredCount),
			slog.Any("extensions", ignored.ToSlice()),
			slog.String("expected", st.FileExtension))
	}
	return candidates, nil
}

// processFiles validates files in order. When limit is positive, processing
// stops once limit valid rows have been collected. Cancellation of ctx is
// observed between files only.
func processFiles(ctx context.Context, v *series.Validator, files []string, limit int) shardResult {
	ll := logctx.FromContext(ctx)

	var res shardResult
	for i, path := range files {
		if limit > 0 && len(res.Rows) >= limit {
			ll.Info("Reached the maximum number of series for this run", slog.Int("max", limit))
			break
		}
		if err := ctx.Err(); err != nil {
			ll.Warn("Ingestion interrupted, returning partial results",
				slog.Int("processed", i), slog.Int("remaining", len(files)-i))
			break
		}

		out, err := v.Process(ctx, path)
		if err != nil {
			ll.Error("Failed to process series", slog.String("path", path), slog.Any("error", err))
			res.Failed++
			continue
		}
		if out.Valid() {
			res.Rows = append(res.Rows, out.Row)
			continue
		}
		res.addMalformed(out.Malformed.Kind)
	}
	return res
}
