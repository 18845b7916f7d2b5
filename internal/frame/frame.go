package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Table is a small in-memory table backed by CSV files: an ordered list of
// column names plus string-valued rows. It carries the combined fetch results
// through the pipeline without imposing a schema on what the CAMS service
// returns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// NumRows returns the number of data rows (the header is not a row).
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1 if absent.
// Column names are case-sensitive.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// AppendRow adds a row, padding or truncating it to the current column count.
func (t *Table) AppendRow(row []string) {
	aligned := make([]string, len(t.Columns))
	copy(aligned, row)
	t.Rows = append(t.Rows, aligned)
}

// InsertConst inserts a new column at position idx with the same value in
// every row.
func (t *Table) InsertConst(idx int, name, value string) {
	if idx < 0 {
		idx = 0
	}
	if idx > len(t.Columns) {
		idx = len(t.Columns)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, t.Columns[:idx]...)
	cols = append(cols, name)
	cols = append(cols, t.Columns[idx:]...)
	t.Columns = cols

	for i, row := range t.Rows {
		next := make([]string, 0, len(row)+1)
		next = append(next, row[:idx]...)
		next = append(next, value)
		next = append(next, row[idx:]...)
		t.Rows[i] = next
	}
}

// Append concatenates another table onto this one. Columns are matched by
// name; columns present on only one side are unioned in, with empty cells
// filling the gaps.
func (t *Table) Append(other *Table) {
	if other == nil {
		return
	}

	if len(t.Columns) == 0 {
		t.Columns = append(t.Columns, other.Columns...)
	}

	// Union in columns this table has not seen yet.
	for _, c := range other.Columns {
		if t.ColumnIndex(c) == -1 {
			t.Columns = append(t.Columns, c)
			for i, row := range t.Rows {
				t.Rows[i] = append(row, "")
			}
		}
	}

	// Re-pad existing rows in case the union grew the schema.
	for i, row := range t.Rows {
		for len(row) < len(t.Columns) {
			row = append(row, "")
		}
		t.Rows[i] = row
	}

	for _, srcRow := range other.Rows {
		row := make([]string, len(t.Columns))
		for j, c := range other.Columns {
			if j >= len(srcRow) {
				break
			}
			row[t.ColumnIndex(c)] = srcRow[j]
		}
		t.Rows = append(t.Rows, row)
	}
}

// Slice returns a new table holding rows [from, to) and the same columns.
// Bounds are clamped to the available rows.
func (t *Table) Slice(from, to int) *Table {
	if from < 0 {
		from = 0
	}
	if to > len(t.Rows) {
		to = len(t.Rows)
	}
	out := New(t.Columns...)
	for _, row := range t.Rows[from:to] {
		out.AppendRow(row)
	}
	return out
}

// ReadCSV parses a comma-separated stream whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return New(), nil
	}

	t := New(records[0]...)
	for _, rec := range records[1:] {
		t.AppendRow(rec)
	}
	return t, nil
}

// ReadFile reads a CSV file into a table.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}

// WriteCSV writes the table as comma-separated values, header first.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path, overwriting any existing file.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
