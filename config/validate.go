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

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.SampleSize <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("sample_size must be positive, got %d", c.SampleSize))
	}
	if c.MaxSeriesPerRun < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max_series_per_run must not be negative, got %d", c.MaxSeriesPerRun))
	}
	if c.MultiCore.Limit < 0 {
		errs = multierror.Append(errs, fmt.Errorf("multi_core.limit must not be negative, got %d", c.MultiCore.Limit))
	}

	errs = multierror.Append(errs, c.Labeled.validate("labeled")...)
	errs = multierror.Append(errs, c.Unlabeled.validate("unlabeled")...)
	errs = multierror.Append(errs, c.Logging.validate()...)

	return errs.ErrorOrNil()
}

func (sc SeriesConfig) validate(prefix string) []error {
	var errs []error
	required := []struct{ key, value string }{
		{"input_dir", sc.InputDir},
		{"file_extension", sc.FileExtension},
		{"filename_layout", sc.FilenameLayout},
		{"input_separator", sc.InputSeparator},
		{"output_file", sc.OutputFile},
		{"output_separator", sc.OutputSeparator},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s.%s must be set", prefix, r.key))
		}
	}
	if sc.MaxNullFraction < 0 || sc.MaxNullFraction > 1 {
		errs = append(errs, fmt.Errorf("%s.max_null_fraction must be within [0, 1], got %v", prefix, sc.MaxNullFraction))
	}
	if sc.MaxConsecutiveNull < 0 {
		errs = append(errs, fmt.Errorf("%s.max_consecutive_null must not be negative, got %d", prefix, sc.MaxConsecutiveNull))
	}
	if !sc.NullFilling.Valid() {
		errs = append(errs, fmt.Errorf("%s.null_filling: unknown strategy %q", prefix, sc.NullFilling))
	}
	if !sc.Duplicates.Valid() {
		errs = append(errs, fmt.Errorf("%s.duplicates: unknown policy %q", prefix, sc.Duplicates))
	}
	if !sc.Malformed.Valid() {
		errs = append(errs, fmt.Errorf("%s.malformed: unknown policy %q", prefix, sc.Malformed))
	} else if sc.Malformed == seriestype.MalformedSave && sc.MalformedDir == "" {
		errs = append(errs, fmt.Errorf("%s.malformed_dir must be set when malformed series are saved", prefix))
	}
	return errs
}

func (lc LoggingConfig) validate() []error {
	var errs []error
	if _, err := ParseLevel(lc.ConsoleLevel); err != nil {
		errs = append(errs, fmt.Errorf("logging.console_level: %w", err))
	}
	if !lc.ToFile {
		return errs
	}
	if _, err := ParseLevel(lc.FileLevel); err != nil {
		errs = append(errs, fmt.Errorf("logging.file_level: %w", err))
	}
	if lc.FileMode != FileModeAppend && lc.FileMode != FileModeTruncate {
		errs = append(errs, fmt.Errorf("logging.file_mode must be %q or %q, got %q", FileModeAppend, FileModeTruncate, lc.FileMode))
	}
	if lc.FilePath == "" {
		errs = append(errs, fmt.Errorf("logging.file_path must be set when logging to file"))
	}
	return errs
}

// ParseLevel maps a level name to a slog level. WARNING and CRITICAL are
// accepted as aliases of WARN and ERROR+4.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	switch n := strings.ToUpper(strings.TrimSpace(name)); n {
	case "WARNING":
		return slog.LevelWarn, nil
	case "CRITICAL":
		return slog.LevelError + 4, nil
	default:
		if err := level.UnmarshalText([]byte(n)); err != nil {
			return 0, err
		}
	}
	return level, nil
}
