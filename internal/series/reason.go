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

import "fmt"

// ReasonKind names the check a malformed series failed.
type ReasonKind string

const (
	ReasonEmpty            ReasonKind = "empty series"
	ReasonParse            ReasonKind = "parse error"
	ReasonMultiRow         ReasonKind = "multi-row series"
	ReasonInvalidAnomalous ReasonKind = "invalid anomalous value"
	ReasonNullThreshold    ReasonKind = "null threshold exceeded"
	ReasonConsecutiveNulls ReasonKind = "consecutive null threshold exceeded"
)

// Reason explains why a series is malformed.
type Reason struct {
	Kind   ReasonKind
	Detail string
}

func newReason(kind ReasonKind, format string, args ...any) *Reason {
	return &Reason{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (r Reason) String() string {
	if r.Detail == "" {
		return string(r.Kind)
	}
	return string(r.Kind) + " (" + r.Detail + ")"
}

// Outcome is the result of validating one raw series file. Exactly one of a
// valid Row or a malformed Reason is meaningful.
type Outcome struct {
	Row       Row
	Malformed *Reason
}

func (o Outcome) Valid() bool {
	return o.Malformed == nil
}
