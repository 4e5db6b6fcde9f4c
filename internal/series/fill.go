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
	"fmt"
	"math"

	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

// NullStats returns the total number of null samples and the length of the
// longest run of consecutive nulls.
func NullStats(samples []float64) (total, longestRun int) {
	run := 0
	for _, v := range samples {
		if !math.IsNaN(v) {
			run = 0
			continue
		}
		total++
		run++
		if run > longestRun {
			longestRun = run
		}
	}
	return total, longestRun
}

// Fill replaces null samples in place according to strategy.
//
// Nulls without a neighbour in the strategy's direction take the nearest
// valid sample on the other side, so a filled series has no nulls unless
// every sample was null, in which case all samples become zero.
func Fill(samples []float64, strategy seriestype.NullFillingStrategy) error {
	first, last := -1, -1
	for i, v := range samples {
		if math.IsNaN(v) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}

	if strategy == seriestype.FillZero || first < 0 {
		if !strategy.Valid() {
			return fmt.Errorf("unknown null filling strategy %q", strategy)
		}
		for i, v := range samples {
			if math.IsNaN(v) {
				samples[i] = 0
			}
		}
		return nil
	}

	switch strategy {
	case seriestype.FillLinear:
		fillLinear(samples, first, last)
	case seriestype.FillForward:
		fillForward(samples, first)
	case seriestype.FillBackward:
		fillBackward(samples, last)
	default:
		return fmt.Errorf("unknown null filling strategy %q", strategy)
	}
	return nil
}

func fillLinear(samples []float64, first, last int) {
	for i := 0; i < first; i++ {
		samples[i] = samples[first]
	}
	for i := last + 1; i < len(samples); i++ {
		samples[i] = samples[last]
	}

	prev := first
	for i := first + 1; i <= last; i++ {
		if math.IsNaN(samples[i]) {
			continue
		}
		if gap := i - prev; gap > 1 {
			step := (samples[i] - samples[prev]) / float64(gap)
			for j := prev + 1; j < i; j++ {
				samples[j] = samples[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
}

func fillForward(samples []float64, first int) {
	carry := samples[first]
	for i := range samples {
		if math.IsNaN(samples[i]) {
			samples[i] = carry
		} else {
			carry = samples[i]
		}
	}
}

func fillBackward(samples []float64, last int) {
	carry := samples[last]
	for i := len(samples) - 1; i >= 0; i-- {
		if math.IsNaN(samples[i]) {
			samples[i] = carry
		} else {
			carry = samples[i]
		}
	}
}
