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

package seriestype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"labeled", Labeled, false},
		{"Labelled", Labeled, false},
		{" unlabeled ", Unlabeled, false},
		{"both", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLeadAnomalous(t *testing.T) {
	t.Run("labeled keeps a valid flag", func(t *testing.T) {
		in := []float64{1, 2, 3}
		out, err := Labeled.LeadAnomalous(in)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, out)

		out[1] = 99
		assert.Equal(t, float64(2), in[1], "input must not be aliased")
	})

	t.Run("labeled rejects other values", func(t *testing.T) {
		_, err := Labeled.LeadAnomalous([]float64{2, 1, 1})
		var ae AnomalousError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, float64(2), ae.Value)
	})

	t.Run("labeled rejects empty record", func(t *testing.T) {
		_, err := Labeled.LeadAnomalous(nil)
		assert.Error(t, err)
	})

	t.Run("unlabeled prepends sentinel", func(t *testing.T) {
		out, err := Unlabeled.LeadAnomalous([]float64{5, 6})
		require.NoError(t, err)
		assert.Equal(t, []float64{-1, 5, 6}, out)
	})
}

func TestStripAnomalous(t *testing.T) {
	assert.Equal(t, []float64{0, 1, 2}, Labeled.StripAnomalous(0, []float64{1, 2}))
	assert.Equal(t, []float64{1, 2}, Unlabeled.StripAnomalous(-1, []float64{1, 2}))
}

func TestSchemaColumns(t *testing.T) {
	s := Schema{SampleSize: 3, Label: "S", StartingIndex: 1}

	assert.Equal(t, []string{"timestamp", "ANOMALOUS", "S1", "S2", "S3"}, s.Columns())
	assert.Equal(t, "timestamp;ANOMALOUS;S1;S2;S3", s.Header(";"))
	assert.Equal(t, 5, s.Width())
}

func TestPolicyValidity(t *testing.T) {
	assert.True(t, FillLinear.Valid())
	assert.True(t, FillBackward.Valid())
	assert.False(t, NullFillingStrategy("pad").Valid())

	assert.True(t, DuplicatesDiscard.Valid())
	assert.False(t, DuplicatePolicy("keep").Valid())

	assert.True(t, MalformedSave.Valid())
	assert.False(t, MalformedPolicy("").Valid())
}

func TestConfigMaxNulls(t *testing.T) {
	c := Config{Schema: Schema{SampleSize: 10}, MaxNullFraction: 0.25, Malformed: MalformedSave}
	assert.InDelta(t, 2.5, c.MaxNulls(), 1e-9)
	assert.True(t, c.Quarantines())
}
