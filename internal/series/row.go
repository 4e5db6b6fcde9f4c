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
	"strconv"
	"time"
)

// TimestampLayout is the layout of the timestamp column in canonical tables.
const TimestampLayout = "2006-01-02 15:04:05"

// Row is a canonical series record: timestamp, ANOMALOUS flag and exactly
// SampleSize samples. A NaN sample is a null that no filling strategy could
// resolve.
type Row struct {
	Timestamp time.Time
	Anomalous int
	Samples   []float64
}

// Width is the number of columns the row occupies in a canonical table.
func (r Row) Width() int {
	return len(r.Samples) + 2
}

// Fields renders the row as canonical table cells.
func (r Row) Fields() []string {
	out := make([]string, 0, r.Width())
	out = append(out, r.Timestamp.Format(TimestampLayout), strconv.Itoa(r.Anomalous))
	for _, v := range r.Samples {
		out = append(out, FormatSample(v))
	}
	return out
}

// FormatSample renders one sample value; nulls become empty cells.
func FormatSample(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	if v == 0 {
		// collapse negative zero
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Batch is the ordered set of valid rows produced by one run or one worker.
type Batch []Row
