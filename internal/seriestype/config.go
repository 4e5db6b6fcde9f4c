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
	"strconv"
	"strings"
)

// NullFillingStrategy selects how null samples of a valid series are filled.
type NullFillingStrategy string

const (
	FillLinear   NullFillingStrategy = "linear"
	FillZero     NullFillingStrategy = "zero"
	FillForward  NullFillingStrategy = "forward"
	FillBackward NullFillingStrategy = "backward"
)

func (s NullFillingStrategy) Valid() bool {
	switch s {
	case FillLinear, FillZero, FillForward, FillBackward:
		return true
	}
	return false
}

// DuplicatePolicy tells whether valid series already present in the output
// store are saved again or discarded.
type DuplicatePolicy string

const (
	DuplicatesSave    DuplicatePolicy = "save"
	DuplicatesDiscard DuplicatePolicy = "discard"
)

func (p DuplicatePolicy) Valid() bool {
	return p == DuplicatesSave || p == DuplicatesDiscard
}

// MalformedPolicy tells whether malformed series are quarantined or dropped.
type MalformedPolicy string

const (
	MalformedDrop MalformedPolicy = "drop"
	MalformedSave MalformedPolicy = "save"
)

func (p MalformedPolicy) Valid() bool {
	return p == MalformedDrop || p == MalformedSave
}

// Schema describes the canonical column layout shared by every series kind.
type Schema struct {
	SampleSize    int
	Label         string
	StartingIndex int
}

const (
	ColumnTimestamp = "timestamp"
	ColumnAnomalous = "ANOMALOUS"
)

// Width is the number of columns of a canonical row.
func (s Schema) Width() int {
	return s.SampleSize + 2
}

// Columns returns a fresh copy of the canonical header columns.
func (s Schema) Columns() []string {
	cols := make([]string, 0, s.Width())
	cols = append(cols, ColumnTimestamp, ColumnAnomalous)
	for i := range s.SampleSize {
		cols = append(cols, s.Label+strconv.Itoa(s.StartingIndex+i))
	}
	return cols
}

// Header renders the canonical header line (without line terminator).
func (s Schema) Header(sep string) string {
	return strings.Join(s.Columns(), sep)
}

// Config is the immutable configuration of one series kind. It is passed by
// value so every worker owns its own copy.
type Config struct {
	Kind   Kind
	Schema Schema

	InputDir        string
	FileExtension   string
	FilenameLayout  string
	InputSeparator  string
	OutputFile      string
	OutputSeparator string

	MaxNullFraction    float64
	MaxConsecutiveNull int
	NullFilling        NullFillingStrategy

	Duplicates   DuplicatePolicy
	Malformed    MalformedPolicy
	MalformedDir string
}

// MaxNulls is the largest number of null samples a valid series may carry.
func (c Config) MaxNulls() float64 {
	return c.MaxNullFraction * float64(c.Schema.SampleSize)
}

// Quarantines reports whether malformed series are copied into MalformedDir.
func (c Config) Quarantines() bool {
	return c.Malformed == MalformedSave
}
