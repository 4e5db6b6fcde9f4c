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
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

var nan = math.NaN()

func TestNullStats(t *testing.T) {
	total, run := NullStats([]float64{1, nan, nan, 2, nan, nan, nan, 3})
	assert.Equal(t, 5, total)
	assert.Equal(t, 3, run)

	total, run = NullStats([]float64{1, 2})
	assert.Zero(t, total)
	assert.Zero(t, run)
}

func TestFill(t *testing.T) {
	tests := []struct {
		name     string
		strategy seriestype.NullFillingStrategy
		in       []float64
		want     []float64
	}{
		{"zero", seriestype.FillZero, []float64{nan, 1, nan}, []float64{0, 1, 0}},
		{"linear interior", seriestype.FillLinear, []float64{0, nan, nan, 3}, []float64{0, 1, 2, 3}},
		{"linear edges hold nearest value", seriestype.FillLinear, []float64{nan, 2, nan, 4, nan}, []float64{2, 2, 3, 4, 4}},
		{"forward", seriestype.FillForward, []float64{nan, 1, nan, 3, nan}, []float64{1, 1, 1, 3, 3}},
		{"backward", seriestype.FillBackward, []float64{nan, 1, nan, 3, nan}, []float64{1, 1, 3, 3, 3}},
		{"all null", seriestype.FillLinear, []float64{nan, nan}, []float64{0, 0}},
		{"nothing to fill", seriestype.FillForward, []float64{4, 5}, []float64{4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]float64(nil), tt.in...)
			require.NoError(t, Fill(got, tt.strategy))
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

func TestFill_UnknownStrategy(t *testing.T) {
	assert.Error(t, Fill([]float64{1, nan}, seriestype.NullFillingStrategy("pad")))
	assert.Error(t, Fill([]float64{nan}, seriestype.NullFillingStrategy("pad")))
}

func TestRowFields(t *testing.T) {
	row := Row{
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Anomalous: -1,
		Samples:   []float64{1.5, nan, math.Copysign(0, -1), 2},
	}
	assert.Equal(t, []string{"2024-01-02 03:04:05", "-1", "1.5", "", "0", "2"}, row.Fields())
	assert.Equal(t, 6, row.Width())
}

func TestParseRecords(t *testing.T) {
	records, err := parseRecords([]byte("1, 2 ,,nan\n\n"), ",")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, float64(1), records[0][0])
	assert.Equal(t, float64(2), records[0][1])
	assert.True(t, math.IsNaN(records[0][2]))
	assert.True(t, math.IsNaN(records[0][3]))

	_, err = parseRecords([]byte("1,2\n3,x\n"), ",")
	var pe ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, "x", pe.Token)
}

func TestReconcileWidth(t *testing.T) {
	out, delta := reconcileWidth([]float64{1, 2, 3}, 2)
	assert.Equal(t, -1, delta)
	assert.Equal(t, []float64{1, 2}, out)

	out, delta = reconcileWidth([]float64{1}, 3)
	assert.Equal(t, 2, delta)
	require.Len(t, out, 3)
	assert.True(t, math.IsNaN(out[2]))
}
