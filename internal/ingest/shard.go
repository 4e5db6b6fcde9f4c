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

// splitEvenly partitions files into n contiguous shards whose sizes differ by
// at most one; the first len(files)%n shards get the extra file.
func splitEvenly(files []string, n int) [][]string {
	if n <= 0 {
		return nil
	}
	shards := make([][]string, n)
	base, extra := len(files)/n, len(files)%n
	start := 0
	for i := range n {
		size := base
		if i < extra {
			size++
		}
		shards[i] = files[start : start+size : start+size]
		start += size
	}
	return shards
}
