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

// Package outputstore reads and rewrites the canonical delimited table that
// valid series are appended to.
package outputstore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cardinalhq/seriesingest/internal/series"
	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

// ErrHeaderMismatch is returned when the first line of a store does not match
// the canonical schema.
var ErrHeaderMismatch = errors.New("output store header does not match the canonical schema")

const maxLineSize = 64 * 1024 * 1024

var timestampLayouts = []string{
	series.TimestampLayout,
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02",
}

// Store is a canonical table persisted as a delimited text file.
type Store struct {
	path   string
	sep    string
	schema seriestype.Schema
}

func New(path, sep string, schema seriestype.Schema) *Store {
	if sep == "" {
		sep = ","
	}
	return &Store{path: path, sep: sep, schema: schema}
}

// ForSeries returns the output store of a series kind.
func ForSeries(cfg seriestype.Config) *Store {
	return New(cfg.OutputFile, cfg.OutputSeparator, cfg.Schema)
}

func (s *Store) Path() string {
	return s.path
}

// ReadHeader returns the columns of the first line of the store, or nil when
// the file is empty.
func (s *Store) ReadHeader() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	line, err := bufio.NewReaderSize(f, 64*1024).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, nil
	}
	return strings.Split(line, s.sep), nil
}

// CheckHeader compares the first line of the store against the canonical schema.
func (s *Store) CheckHeader() error {
	found, err := s.ReadHeader()
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", s.path, err)
	}
	return s.matchHeader(found)
}

func (s *Store) matchHeader(found []string) error {
	expected := s.schema.Columns()
	if !slices.Equal(found, expected) {
		return fmt.Errorf("%w: %s (expected %s, found %s)", ErrHeaderMismatch, s.path, abbreviate(expected), abbreviate(found))
	}
	return nil
}

// WriteHeader replaces the store content with the canonical header,
// creating parent directories as needed.
func (s *Store) WriteHeader() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(s.schema.Header(s.sep)+"\n"), 0o644)
}

// Load reads the whole store. The ANOMALOUS column is coerced to an integer.
func (s *Store) Load() (*Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open output store %s: %w", s.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	table := &Table{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNo == 1 {
			if line == "" {
				continue
			}
			if err := s.matchHeader(strings.Split(line, s.sep)); err != nil {
				return nil, err
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := s.parseRow(line)
		if err != nil {
			return nil, fmt.Errorf("output store %s, line %d: %w", s.path, lineNo, err)
		}
		table.rows = append(table.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read output store %s: %w", s.path, err)
	}

	table.existing = len(table.rows)
	return table, nil
}

func (s *Store) parseRow(line string) (series.Row, error) {
	fields := strings.Split(line, s.sep)
	if len(fields) != s.schema.Width() {
		return series.Row{}, fmt.Errorf("row has %d columns, expected %d", len(fields), s.schema.Width())
	}

	ts, err := parseTimestamp(fields[0])
	if err != nil {
		return series.Row{}, err
	}

	flag, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil || math.IsNaN(flag) {
		return series.Row{}, fmt.Errorf("invalid %s value %q", seriestype.ColumnAnomalous, fields[1])
	}

	samples := make([]float64, s.schema.SampleSize)
	for i, cell := range fields[2:] {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			samples[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return series.Row{}, fmt.Errorf("invalid sample value %q in column %d", cell, i+2)
		}
		samples[i] = v
	}

	return series.Row{Timestamp: ts, Anomalous: int(flag), Samples: samples}, nil
}

func parseTimestamp(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, cell, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", cell)
}

// Save rewrites the store with the content of table. The new content is
// written next to the store and renamed over it, so readers never observe a
// partially written table.
func (s *Store) Save(table *Table) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary output file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	w := bufio.NewWriterSize(tmp, 256*1024)
	if err := s.write(w, table); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write output store %s: %w", s.path, err)
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to flush output store %s: %w", s.path, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace output store %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) write(w io.Writer, table *Table) error {
	if _, err := io.WriteString(w, s.schema.Header(s.sep)+"\n"); err != nil {
		return err
	}
	for _, row := range table.rows {
		if _, err := io.WriteString(w, strings.Join(row.Fields(), s.sep)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// abbreviate keeps the first and last five columns of long headers.
func abbreviate(cols []string) string {
	if len(cols) <= 10 {
		return "[" + strings.Join(cols, " ") + "]"
	}
	return "[" + strings.Join(cols[:5], " ") + " ... " + strings.Join(cols[len(cols)-5:], " ") + "]"
}
