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

package outputstore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardinalhq/seriesingest/internal/series"
)

func TestDropDuplicates(t *testing.T) {
	existingA := row("2024-01-01 00:00:00", 0, 1, 2, 3)
	existingDup := row("2024-01-01 00:05:00", 0, 1, 2, 3)

	table := &Table{rows: []series.Row{existingA, existingDup}, existing: 2}
	table.Append(
		row("2024-02-01 00:00:00", 0, 1, 2, 3), // duplicates a stored row
		row("2024-02-01 00:10:00", 1, 1, 2, 3), // different flag
		row("2024-02-01 00:20:00", 0, 7, 8, 9),
		row("2024-02-01 00:30:00", 0, 7, 8, 9), // duplicates the previous fresh row
	)

	dropped := table.DropDuplicates()
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 4, table.Len())

	rows := table.Rows()
	assert.Equal(t, existingA.Timestamp, rows[0].Timestamp)
	assert.Equal(t, existingDup.Timestamp, rows[1].Timestamp, "stored duplicates must be kept")
	assert.Equal(t, 1, rows[2].Anomalous)
	assert.Equal(t, []float64{7, 8, 9}, rows[3].Samples)
}

func TestDropDuplicates_NoDuplicates(t *testing.T) {
	table := &Table{}
	table.Append(
		row("2024-01-01 00:00:00", 0, 1, 2, 3),
		row("2024-01-01 00:00:00", 0, 1, 2, 4),
	)
	assert.Equal(t, 0, table.DropDuplicates())
	assert.Equal(t, 2, table.Len())
}

func TestDedupKey(t *testing.T) {
	a := row("2024-01-01 00:00:00", 0, 1, math.NaN(), 3)
	b := row("2025-06-01 12:00:00", 0, 1, math.NaN(), 3)
	c := row("2024-01-01 00:00:00", 0, 1, 0, 3)
	assert.Equal(t, dedupKey(a), dedupKey(b))
	assert.NotEqual(t, dedupKey(a), dedupKey(c))
}
