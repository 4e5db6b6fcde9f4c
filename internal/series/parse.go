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
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errNoData = errors.New("no data")

// ParseError reports a token that is not a number.
type ParseError struct {
	Line  int
	Field int
	Token string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d, field %d: cannot parse %q as a number", e.Line, e.Field, e.Token)
}

// parseRecords splits raw content into numeric records. Blank lines are
// skipped, empty tokens and NaN are nulls.
func parseRecords(data []byte, sep string) ([][]float64, error) {
	if sep == "" {
		sep = ","
	}

	var records [][]float64
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), max(len(data)+1, 64*1024))

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		tokens := strings.Split(text, sep)
		record := make([]float64, len(tokens))
		for i, tok := range tokens {
			v, err := parseToken(tok)
			if err != nil {
				return nil, ParseError{Line: line, Field: i, Token: tok}
			}
			record[i] = v
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errNoData
	}
	return records, nil
}

func parseToken(tok string) (float64, error) {
	trimmed := strings.TrimSpace(tok)
	if trimmed == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(trimmed, 64)
}

// reconcileWidth truncates or null-pads record to exactly width fields.
// The returned delta is width minus the original length.
func reconcileWidth(record []float64, width int) ([]float64, int) {
	delta := width - len(record)
	switch {
	case delta < 0:
		return record[:width], delta
	case delta > 0:
		out := make([]float64, width)
		copy(out, record)
		for i := len(record); i < width; i++ {
			out[i] = math.NaN()
		}
		return out, delta
	}
	return record, 0
}
