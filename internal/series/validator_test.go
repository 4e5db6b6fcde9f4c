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

package series

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

const testLayout = "2006-01-02 15-04-05"

func testConfig(t *testing.T, kind seriestype.Kind) seriestype.Config {
	t.Helper()
	root := t.TempDir()
	cfg := seriestype.Config{
		Kind:               kind,
		Schema:             seriestype.Schema{SampleSize: 5, Label: "S", StartingIndex: 0},
		InputDir:           filepath.Join(root, "in"),
		FileExtension:      ".dat",
		FilenameLayout:     testLayout,
		InputSeparator:     ",",
		OutputFile:         filepath.Join(root, "out.csv"),
		OutputSeparator:    ",",
		MaxNullFraction:    1,
		MaxConsecutiveNull: 5,
		NullFilling:        seriestype.FillZero,
		Duplicates:         seriestype.DuplicatesDiscard,
		Malformed:          seriestype.MalformedSave,
		MalformedDir:       filepath.Join(root, "malformed"),
	}
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0o755))
	require.NoError(t, os.MkdirAll(cfg.MalformedDir, 0o755))
	return cfg
}

func writeSeries(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcess_ZeroFillPadsShortSeries(t *testing.T) {
	cfg := testConfig(t, seriestype.Labeled)
	path := writeSeries(t, cfg.InputDir, "2024-03-01 10-00-00.dat", "1,2,3")

	out, err := NewValidator(cfg).Process(context.Background(), path)
	require.NoError(t, err)
	require.True(t, out.Valid(), "unexpected malformed reason: %v", out.Malformed)

	assert.Equal(t, 1, out.Row.Anomalous)
	assert.Equal(t, []float64{2, 3, 0, 0, 0}, out.Row.Samples)
	assert.Equal(t, cfg.Schema.Width(), out.Row.Width())
	assert.True(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local).Equal(out.Row.Timestamp), "got %v", out.Row.Timestamp)

	assert.NoFileExists(t, path)
}

func TestProcess_InvalidAnomalous(t *testing.T) {
	t.Run("quarantined with reason on trailing line", func(t *testing.T) {
		cfg := testConfig(t, seriestype.Labeled)
		path := writeSeries(t, cfg.InputDir, "2024-03-01 10-00-00.dat", "2,1,1,1,1,1")

		out, err := NewValidator(cfg).Process(context.Background(), path)
		require.NoError(t, err)
		require.False(t, out.Valid())
		assert.Equal(t, ReasonInvalidAnomalous, out.Malformed.Kind)
		assert.NoFileExists(t, path)

		copied, err := os.ReadFile(filepath.Join(cfg.MalformedDir, "2024-03-01 10-00-00.dat"))
		require.NoError(t, err)
		lines := strings.Split(string(copied), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "2,1,1,1,1,1", lines[0])
		assert.Equal(t, out.Malformed.String(), lines[1])
		assert.True(t, strings.HasPrefix(lines[1], "invalid anomalous value"))
	})

	t.Run("dropped without copy", func(t *testing.T) {
		cfg := testConfig(t, seriestype.Labeled)
		cfg.Malformed = seriestype.MalformedDrop
		path := writeSeries(t, cfg.InputDir, "2024-03-01 10-00-00.dat", "2,1,1,1,1,1")

		out, err := NewValidator(cfg).Process(context.Background(), path)
		require.NoError(t, err)
		assert.False(t, out.Valid())
		assert.NoFileExists(t, path)

		entries, err := os.ReadDir(cfg.MalformedDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestProcess_EmptyTakesPrecedence(t *testing.T) {
	cfg := testConfig(t, seriestype.Labeled)
	path := writeSeries(t, cfg.InputDir, "not-a-date.dat", "")

	out, err := NewValidator(cfg).Process(context.Background(), path)
	require.NoError(t, err)
	require.False(t, out.Valid())
	assert.Equal(t, ReasonEmpty, out.Malformed.Kind)
	assert.Equal(t, "empty series", out.Malformed.String())
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(cfg.MalformedDir, "not-a-date.dat"))
}

func TestProcess_MalformedClassification(t *testing.T) {
	tests := []struct {
		name     string
		kind     seriestype.Kind
		content  string
		tweak    func(*seriestype.Config)
		wantKind ReasonKind
	}{
		{
			name:     "unparsable token",
			kind:     seriestype.Labeled,
			content:  "1,abc,3",
			wantKind: ReasonParse,
		},
		{
			name:     "only blank lines",
			kind:     seriestype.Labeled,
			content:  "\n\n",
			wantKind: ReasonParse,
		},
		{
			name:     "two rows",
			kind:     seriestype.Labeled,
			content:  "1,2,3,4,5,6\n0,2,3,4,5,6\n",
			wantKind: ReasonMultiRow,
		},
		{
			name:     "parse error wins over multi-row",
			kind:     seriestype.Labeled,
			content:  "1,2,3,4,5,6\n0,x,3,4,5,6\n",
			wantKind: ReasonParse,
		},
		{
			name:     "null flag on labeled series",
			kind:     seriestype.Labeled,
			content:  ",2,3,4,5,6",
			wantKind: ReasonInvalidAnomalous,
		},
		{
			name:    "too many nulls",
			kind:    seriestype.Labeled,
			content: "0,1,,,4,5",
			tweak: func(c *seriestype.Config) {
				c.MaxNullFraction = 0.2
			},
			wantKind: ReasonNullThreshold,
		},
		{
			name:    "too many consecutive nulls",
			kind:    seriestype.Unlabeled,
			content: "1,,,4,5",
			tweak: func(c *seriestype.Config) {
				c.MaxConsecutiveNull = 1
			},
			wantKind: ReasonConsecutiveNulls,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.kind)
			if tt.tweak != nil {
				tt.tweak(&cfg)
			}
			path := writeSeries(t, cfg.InputDir, "2024-03-01 10-00-00.dat", tt.content)

			out, err := NewValidator(cfg).Process(context.Background(), path)
			require.NoError(t, err)
			require.False(t, out.Valid())
			assert.Equal(t, tt.wantKind, out.Malformed.Kind)
			assert.NoFileExists(t, path)
		})
	}
}

func TestProcess_ValidNormalization(t *testing.T) {
	tests := []struct {
		name          string
		kind          seriestype.Kind
		content       string
		strategy      seriestype.NullFillingStrategy
		wantAnomalous int
		wantSamples   []float64
	}{
		{
			name:          "extra samples truncated",
			kind:          seriestype.Labeled,
			content:       "0,1,2,3,4,5,6,7",
			strategy:      seriestype.FillZero,
			wantAnomalous: 0,
			wantSamples:   []float64{1, 2, 3, 4, 5},
		},
		{
			name:          "unlabeled gets sentinel flag",
			kind:          seriestype.Unlabeled,
			content:       "1,2,3,4,5\n",
			strategy:      seriestype.FillZero,
			wantAnomalous: -1,
			wantSamples:   []float64{1, 2, 3, 4, 5},
		},
		{
			name:          "linear interpolation",
			kind:          seriestype.Labeled,
			content:       "0,1,,3,4,5",
			strategy:      seriestype.FillLinear,
			wantAnomalous: 0,
			wantSamples:   []float64{1, 2, 3, 4, 5},
		},
		{
			name:          "forward fill with padding",
			kind:          seriestype.Unlabeled,
			content:       "1,NaN,3",
			strategy:      seriestype.FillForward,
			wantAnomalous: -1,
			wantSamples:   []float64{1, 1, 3, 3, 3},
		},
		{
			name:          "backward fill",
			kind:          seriestype.Labeled,
			content:       "1, ,2,3,,5",
			strategy:      seriestype.FillBackward,
			wantAnomalous: 1,
			wantSamples:   []float64{2, 2, 3, 5, 5},
		},
		{
			name:          "windows line ending",
			kind:          seriestype.Labeled,
			content:       "1,1,2,3,4,5\r\n",
			strategy:      seriestype.FillZero,
			wantAnomalous: 1,
			wantSamples:   []float64{1, 2, 3, 4, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, tt.kind)
			cfg.NullFilling = tt.strategy
			path := writeSeries(t, cfg.InputDir, "2024-03-01 10-00-00.dat", tt.content)

			out, err := NewValidator(cfg).Process(context.Background(), path)
			require.NoError(t, err)
			require.True(t, out.Valid(), "unexpected malformed reason: %v", out.Malformed)
			assert.Equal(t, tt.wantAnomalous, out.Row.Anomalous)
			assert.Equal(t, tt.wantSamples, out.Row.Samples)
			assert.Equal(t, cfg.Schema.Width(), out.Row.Width())
		})
	}
}

func TestProcess_TimestampFallback(t *testing.T) {
	cfg := testConfig(t, seriestype.Unlabeled)
	path := writeSeries(t, cfg.InputDir, "series-42.dat", "1,2,3,4,5")

	mtime := time.Date(2023, 7, 14, 8, 30, 15, 0, time.Local)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	out, err := NewValidator(cfg).Process(context.Background(), path)
	require.NoError(t, err)
	require.True(t, out.Valid())
	assert.True(t, mtime.Equal(out.Row.Timestamp), "got %v", out.Row.Timestamp)
}

func TestProcess_MissingFile(t *testing.T) {
	cfg := testConfig(t, seriestype.Labeled)
	_, err := NewValidator(cfg).Process(context.Background(), filepath.Join(cfg.InputDir, "gone.dat"))
	assert.Error(t, err)
}

func TestProcess_CustomSeparator(t *testing.T) {
	cfg := testConfig(t, seriestype.Labeled)
	cfg.InputSeparator = ";"
	path := writeSeries(t, cfg.InputDir, "2024-03-01 10-00-00.dat", "0;1.5;2;3;4;5")

	out, err := NewValidator(cfg).Process(context.Background(), path)
	require.NoError(t, err)
	require.True(t, out.Valid())
	assert.Equal(t, []float64{1.5, 2, 3, 4, 5}, out.Row.Samples)
}
