package frame

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAlignsByColumnName(t *testing.T) {
	combined := New()

	first := New("A", "B")
	first.AppendRow([]string{"1", "2"})
	combined.Append(first)

	// Same columns in a different order must land in the right cells.
	second := New("B", "A")
	second.AppendRow([]string{"20", "10"})
	combined.Append(second)

	require.Equal(t, []string{"A", "B"}, combined.Columns)
	require.Equal(t, 2, combined.NumRows())
	assert.Equal(t, []string{"1", "2"}, combined.Rows[0])
	assert.Equal(t, []string{"10", "20"}, combined.Rows[1])
}

func TestAppendUnionsDifferingSchemas(t *testing.T) {
	combined := New()

	first := New("A", "B")
	first.AppendRow([]string{"1", "2"})
	combined.Append(first)

	second := New("A", "C")
	second.AppendRow([]string{"3", "4"})
	combined.Append(second)

	require.Equal(t, []string{"A", "B", "C"}, combined.Columns)
	require.Equal(t, 2, combined.NumRows())
	// Columns missing on one side are filled with empty cells.
	assert.Equal(t, []string{"1", "2", ""}, combined.Rows[0])
	assert.Equal(t, []string{"3", "", "4"}, combined.Rows[1])
}

func TestInsertConst(t *testing.T) {
	table := New("X")
	table.AppendRow([]string{"1"})
	table.AppendRow([]string{"2"})

	table.InsertConst(0, "Latitude", "52.5")
	table.InsertConst(1, "Longitude", "13.4")

	require.Equal(t, []string{"Latitude", "Longitude", "X"}, table.Columns)
	assert.Equal(t, []string{"52.5", "13.4", "1"}, table.Rows[0])
	assert.Equal(t, []string{"52.5", "13.4", "2"}, table.Rows[1])
}

func TestSliceBoundsAreClamped(t *testing.T) {
	table := New("X")
	for _, v := range []string{"1", "2", "3"} {
		table.AppendRow([]string{v})
	}

	part := table.Slice(2, 10)
	require.Equal(t, 1, part.NumRows())
	assert.Equal(t, "3", part.Rows[0][0])
}

func TestCSVRoundTrip(t *testing.T) {
	table := New("Latitude", "Longitude", "Name")
	table.AppendRow([]string{"52.52", "13.405", "Berlin, Mitte"})
	table.AppendRow([]string{"48.85", "2.35", ""})

	path := filepath.Join(t.TempDir(), "locations.csv")
	require.NoError(t, table.WriteFile(path))

	back, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, table.Columns, back.Columns)
	assert.Equal(t, table.Rows, back.Rows)
}

func TestReadCSVEmptyInput(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, table.NumRows())
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old content"), 0644))

	table := New("A")
	table.AppendRow([]string{"1"})
	require.NoError(t, table.WriteFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\n1\n", string(raw))
}
