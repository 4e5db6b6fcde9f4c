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

// Package series validates raw series files and normalizes them into
// canonical rows.
package series

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cardinalhq/seriesingest/internal/logctx"
	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

// Validator classifies raw series files of one series kind.
type Validator struct {
	cfg seriestype.Config
}

func NewValidator(cfg seriestype.Config) *Validator {
	return &Validator{cfg: cfg}
}

// Config returns the configuration the validator was built with.
func (v *Validator) Config() seriestype.Config {
	return v.cfg
}

// Process validates the raw series at path and disposes of the file.
//
// The file is removed once it has been classified, whatever the outcome; a
// malformed series is first copied into the quarantine directory when the
// policy asks for it. An error is returned only when the file could not be
// inspected at all, in which case it is left in place.
func (v *Validator) Process(ctx context.Context, path string) (Outcome, error) {
	ll := logctx.FromContext(ctx).With(slog.String("series", filepath.Base(path)))

	fi, err := os.Stat(path)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to stat series %s: %w", path, err)
	}
	if fi.IsDir() {
		return Outcome{}, fmt.Errorf("series %s is a directory", path)
	}

	var out Outcome
	if fi.Size() == 0 {
		ll.Warn("The series is empty")
		out.Malformed = &Reason{Kind: ReasonEmpty}
	} else {
		ts := v.timestamp(ll, path, fi)
		data, err := os.ReadFile(path)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to read series %s: %w", path, err)
		}
		out = v.classify(ll, ts, data)
	}

	v.dispose(ll, path, out.Malformed)
	return out, nil
}

// timestamp derives the series timestamp from its file name, falling back to
// the file modification time.
func (v *Validator) timestamp(ll *slog.Logger, path string, fi os.FileInfo) time.Time {
	stem := strings.TrimSuffix(filepath.Base(path), v.cfg.FileExtension)
	ts, err := time.ParseInLocation(v.cfg.FilenameLayout, stem, time.Local)
	if err == nil {
		return ts
	}
	ll.Warn("The series file name does not match the configured datetime layout, its modification time will be used as timestamp",
		slog.String("layout", v.cfg.FilenameLayout))
	return fi.ModTime().Truncate(time.Second)
}

func (v *Validator) classify(ll *slog.Logger, ts time.Time, data []byte) Outcome {
	records, err := parseRecords(data, v.cfg.InputSeparator)
	if err != nil {
		ll.Warn("Error in parsing the values of the series", slog.Any("error", err))
		return Outcome{Malformed: newReason(ReasonParse, "%v", err)}
	}
	if len(records) != 1 {
		ll.Warn("The series presents multiple rows", slog.Int("rows", len(records)))
		return Outcome{Malformed: newReason(ReasonMultiRow, "%d rows", len(records))}
	}

	record, err := v.cfg.Kind.LeadAnomalous(records[0])
	if err != nil {
		var ae seriestype.AnomalousError
		if errors.As(err, &ae) {
			ll.Warn("The labeled series presents an invalid ANOMALOUS value", slog.Float64("value", ae.Value))
			return Outcome{Malformed: newReason(ReasonInvalidAnomalous, "%v", ae.Value)}
		}
		ll.Error("Cannot apply the ANOMALOUS rule", slog.Any("error", err))
		return Outcome{Malformed: newReason(ReasonInvalidAnomalous, "%v", err)}
	}

	sampleSize := v.cfg.Schema.SampleSize
	record, delta := reconcileWidth(record, sampleSize+1)
	if delta < 0 {
		ll.Warn("The series contains more samples than expected, which will be truncated", slog.Int("extra", -delta))
	} else if delta > 0 {
		ll.Warn("The series contains fewer samples than expected, which will be treated as null values", slog.Int("missing", delta))
	}

	samples := make([]float64, sampleSize)
	copy(samples, record[1:])

	nulls, longestRun := NullStats(samples)
	if float64(nulls) > v.cfg.MaxNulls() {
		ll.Warn("The total number of null values in the series exceeds the maximum threshold",
			slog.Int("nulls", nulls), slog.Int("max", int(v.cfg.MaxNulls())))
		return Outcome{Malformed: newReason(ReasonNullThreshold, "%d > %d", nulls, int(v.cfg.MaxNulls()))}
	}
	if longestRun > v.cfg.MaxConsecutiveNull {
		ll.Warn("The maximum number of consecutive null values in the series exceeds the maximum threshold",
			slog.Int("consecutive", longestRun), slog.Int("max", v.cfg.MaxConsecutiveNull))
		return Outcome{Malformed: newReason(ReasonConsecutiveNulls, "%d > %d", longestRun, v.cfg.MaxConsecutiveNull)}
	}

	if err := Fill(samples, v.cfg.NullFilling); err != nil {
		ll.Error("Cannot fill null values", slog.Any("error", err))
	}

	return Outcome{Row: Row{
		Timestamp: ts,
		Anomalous: int(record[0]),
		Samples:   samples,
	}}
}

// dispose quarantines a malformed series when configured to, then removes it
// from the input directory. Failures are logged and never change the outcome.
func (v *Validator) dispose(ll *slog.Logger, path string, reason *Reason) {
	if reason != nil && v.cfg.Quarantines() {
		if err := quarantine(path, v.cfg.MalformedDir, reason.String()); err != nil {
			ll.Warn("Failed to copy the malformed series into the malformed directory", slog.Any("error", err))
		}
	}
	if err := os.Remove(path); err != nil {
		ll.Warn("Failed to remove the processed series from the input directory", slog.Any("error", err))
	}
}

// quarantine copies src into dir and appends reason on a trailing line.
func quarantine(src, dir, reason string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	dst := filepath.Join(dir, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if _, err := io.WriteString(out, "\n"+reason); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
