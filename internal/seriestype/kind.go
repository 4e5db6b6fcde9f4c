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

// Package seriestype holds the immutable per-series-type settings and the
// rules that differ between labeled and unlabeled series.
package seriestype

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies the type of series being ingested.
type Kind int

const (
	Labeled Kind = iota
	Unlabeled
)

// UnlabeledAnomalous is the ANOMALOUS value stored for series without ground truth.
const UnlabeledAnomalous = -1

// Kinds lists every series kind in ingestion order.
var Kinds = []Kind{Labeled, Unlabeled}

func (k Kind) String() string {
	switch k {
	case Labeled:
		return "labeled"
	case Unlabeled:
		return "unlabeled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a case-insensitive name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "labeled", "labelled":
		return Labeled, nil
	case "unlabeled", "unlabelled":
		return Unlabeled, nil
	default:
		return 0, fmt.Errorf("unknown series type %q", s)
	}
}

// AnomalousError reports a labeled series whose first field is not 0 or 1.
type AnomalousError struct {
	Value float64
}

func (e AnomalousError) Error() string {
	return fmt.Sprintf("invalid ANOMALOUS value (%v)", e.Value)
}

// LeadAnomalous returns the record with a leading ANOMALOUS field applied.
//
// A labeled record must already start with a 0 or 1 flag; it is returned as is.
// An unlabeled record carries no flag, so the sentinel is prepended.
// The input slice is never modified.
func (k Kind) LeadAnomalous(fields []float64) ([]float64, error) {
	switch k {
	case Labeled:
		if len(fields) == 0 {
			return nil, AnomalousError{Value: math.NaN()}
		}
		if fields[0] != 0 && fields[0] != 1 {
			return nil, AnomalousError{Value: fields[0]}
		}
		out := make([]float64, len(fields))
		copy(out, fields)
		return out, nil
	case Unlabeled:
		out := make([]float64, 0, len(fields)+1)
		out = append(out, UnlabeledAnomalous)
		return append(out, fields...), nil
	default:
		return nil, fmt.Errorf("unsupported series type %s", k)
	}
}

// StripAnomalous returns the raw fields a producer would emit for a series of
// this kind: labeled series keep the flag, unlabeled series drop it.
func (k Kind) StripAnomalous(anomalous int, samples []float64) []float64 {
	if k == Unlabeled {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out
	}
	out := make([]float64, 0, len(samples)+1)
	out = append(out, float64(anomalous))
	return append(out, samples...)
}
