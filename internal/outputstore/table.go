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
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/cardinalhq/seriesingest/internal/series"
)

// Table is the in-memory content of a store: the rows loaded from disk
// followed by the rows appended during the current run.
type Table struct {
	rows     []series.Row
	existing int
}

// Len returns the total number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Existing returns how many rows were present before anything was appended.
func (t *Table) Existing() int {
	return t.existing
}

// Rows returns the rows of the table; callers must not modify them.
func (t *Table) Rows() []series.Row {
	return t.rows
}

// Append adds rows after the existing content.
func (t *Table) Append(rows ...series.Row) {
	t.rows = append(t.rows, rows...)
}

// DropDuplicates removes appended rows whose values, timestamp excluded,
// equal those of any earlier row. Rows loaded from disk are never removed,
// even when they duplicate each other. It returns the number of rows dropped.
func (t *Table) DropDuplicates() int {
	seen := make(map[uint64]mapset.Set[string], len(t.rows))
	kept := make([]series.Row, 0, len(t.rows))
	dropped := 0

	for i, row := range t.rows {
		key := dedupKey(row)
		fp := xxhash.Sum64String(key)

		bucket, ok := seen[fp]
		if ok && i >= t.existing && bucket.Contains(key) {
			dropped++
			continue
		}
		if !ok {
			bucket = mapset.NewThreadUnsafeSet[string]()
			seen[fp] = bucket
		}
		bucket.Add(key)
		kept = append(kept, row)
	}

	t.rows = kept
	return dropped
}

// dedupKey renders every column but the timestamp.
func dedupKey(row series.Row) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(row.Anomalous))
	for _, v := range row.Samples {
		b.WriteByte(0x1f)
		b.WriteString(series.FormatSample(v))
	}
	return b.String()
}
