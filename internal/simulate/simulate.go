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

// Package simulate produces raw series files from a canonical dataset, as an
// upstream producer would.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cardinalhq/seriesingest/internal/logctx"
	"github.com/cardinalhq/seriesingest/internal/outputstore"
	"github.com/cardinalhq/seriesingest/internal/series"
	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

// CycleShift is added to every timestamp each time the dataset is exhausted,
// so file names stay unique across cycles.
const CycleShift = 6 * 7 * 24 * time.Hour

type Options struct {
	// Count is the exact number of series files to produce.
	Count int
	// CleanOutput resets the output store of the series kind to its header.
	CleanOutput bool
}

// Run empties the input directory of the series kind described by st and
// writes opts.Count raw series into it, taken in order from the dataset at
// path. The dataset is a canonical table with the same schema and separator
// as the output store. It returns the number of files written.
func Run(ctx context.Context, st seriestype.Config, path string, opts Options) (int, error) {
	ll := logctx.FromContext(ctx).With(slog.String("seriesType", st.Kind.String()))

	if opts.Count < 0 {
		return 0, fmt.Errorf("series count must not be negative, got %d", opts.Count)
	}

	table, err := outputstore.New(path, st.OutputSeparator, st.Schema).Load()
	if err != nil {
		return 0, fmt.Errorf("failed to load dataset: %w", err)
	}
	rows := table.Rows()
	if len(rows) == 0 && opts.Count > 0 {
		return 0, errors.New("dataset contains no series")
	}

	if err := clearDir(st.InputDir); err != nil {
		return 0, fmt.Errorf("failed to clean input directory %s: %w", st.InputDir, err)
	}

	written := 0
	var shift time.Duration
	for i := range opts.Count {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if i > 0 && i%len(rows) == 0 {
			shift += CycleShift
		}
		if err := writeSeries(st, rows[i%len(rows)], shift); err != nil {
			return written, err
		}
		written++
	}
	ll.Info("Series simulated", slog.Int("count", written), slog.String("inputDir", st.InputDir))

	if opts.CleanOutput {
		if err := outputstore.ForSeries(st).WriteHeader(); err != nil {
			return written, fmt.Errorf("failed to clean output store: %w", err)
		}
		ll.Info("Output store cleaned", slog.String("path", st.OutputFile))
	}
	return written, nil
}

func writeSeries(st seriestype.Config, row series.Row, shift time.Duration) error {
	ts := row.Timestamp.Add(shift)
	name := ts.Format(st.FilenameLayout) + st.FileExtension

	fields := st.Kind.StripAnomalous(row.Anomalous, row.Samples)
	cells := make([]string, len(fields))
	for i, v := range fields {
		cells[i] = series.FormatSample(v)
	}

	dst := filepath.Join(st.InputDir, name)
	if err := os.WriteFile(dst, []byte(strings.Join(cells, st.InputSeparator)+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write series %s: %w", dst, err)
	}
	return nil
}

// clearDir removes the regular files of dir, creating it when missing.
func clearDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
