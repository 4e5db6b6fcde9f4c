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

package simulate

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/seriesingest/internal/seriestype"
)

const dataset = "timestamp,ANOMALOUS,S0,S1\n" +
	"2024-01-01 00:00:00,0,1,2\n" +
	"2024-01-01 00:10:00,1,3,\n" +
	"2024-01-01 00:20:00,0,5,6\n"

func testType(t *testing.T, kind seriestype.Kind) (seriestype.Config, string) {
	t.Helper()
	root := t.TempDir()
	st := seriestype.Config{
		Kind:            kind,
		Schema:          seriestype.Schema{SampleSize: 2, Label: "S"},
		InputDir:        filepath.Join(root, "in"),
		FileExtension:   ".dat",
		FilenameLayout:  "2006-01-02 15-04-05",
		InputSeparator:  ";",
		OutputFile:      filepath.Join(root, "out.csv"),
		OutputSeparator: ",",
	}
	path := filepath.Join(root, "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte(dataset), 0o644))
	return st, path
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_CyclesWithShift(t *testing.T) {
	st, path := testType(t, seriestype.Labeled)

	n, err := Run(context.Background(), st, path, Options{Count: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, []string{
		"2024-01-01 00-00-00.dat",
		"2024-01-01 00-10-00.dat",
		"2024-01-01 00-20-00.dat",
		"2024-02-12 00-00-00.dat",
		"2024-02-12 00-10-00.dat",
	}, listDir(t, st.InputDir))

	assert.Equal(t, "1;3;\n", readFile(t, filepath.Join(st.InputDir, "2024-01-01 00-10-00.dat")))
	assert.Equal(t, "0;1;2\n", readFile(t, filepath.Join(st.InputDir, "2024-02-12 00-00-00.dat")))
}

func TestRun_UnlabeledDropsFlag(t *testing.T) {
	st, path := testType(t, seriestype.Unlabeled)

	_, err := Run(context.Background(), st, path, Options{Count: 1})
	require.NoError(t, err)
	assert.Equal(t, "1;2\n", readFile(t, filepath.Join(st.InputDir, "2024-01-01 00-00-00.dat")))
}

func TestRun_CleansInputAndOutput(t *testing.T) {
	st, path := testType(t, seriestype.Labeled)
	require.NoError(t, os.MkdirAll(st.InputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(st.InputDir, "stale.dat"), []byte("0;0;0"), 0o644))
	require.NoError(t, os.WriteFile(st.OutputFile, []byte("timestamp,ANOMALOUS,S0,S1\n2020-01-01 00:00:00,0,1,1\n"), 0o644))

	n, err := Run(context.Background(), st, path, Options{Count: 2, CleanOutput: true})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NotContains(t, listDir(t, st.InputDir), "stale.dat")
	assert.Equal(t, "timestamp,ANOMALOUS,S0,S1\n", readFile(t, st.OutputFile))
}

func TestRun_Errors(t *testing.T) {
	st, path := testType(t, seriestype.Labeled)

	_, err := Run(context.Background(), st, path, Options{Count: -1})
	assert.Error(t, err)

	_, err = Run(context.Background(), st, filepath.Join(t.TempDir(), "missing.csv"), Options{Count: 1})
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("timestamp,ANOMALOUS,S0,S1\n"), 0o644))
	_, err = Run(context.Background(), st, empty, Options{Count: 1})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := Run(ctx, st, path, Options{Count: 3})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}
