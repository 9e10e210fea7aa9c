package csvetl

import (
	"errors"

	"golang.org/x/xerrors"
)

var (
	// ErrColumnNotFound is returned when a step refers to a column the frame doesn't have.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateColumn is returned when an operation would produce two columns with the same name.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Frame is an in-memory table of strings.
// Values are kept as they appear in the source; typing is left to the warehouse schema.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewFrame builds a frame. Short rows are padded with empty values
// and rows longer than columns are rejected.
func NewFrame(columns []string, rows [][]string) (*Frame, error) {
	f := &Frame{columns: append([]string{}, columns...)}
	if err := f.reindex(); err != nil {
		return nil, err
	}

	f.rows = make([][]string, 0, len(rows))
	for i, r := range rows {
		if len(r) > len(columns) {
			return nil, xerrors.Errorf("row %d has %d fields but frame has %d columns", i, len(r), len(columns))
		}

		row := make([]string, len(columns))
		copy(row, r)
		f.rows = append(f.rows, row)
	}

	return f, nil
}

func (f *Frame) reindex() error {
	f.index = make(map[string]int, len(f.columns))
	for i, c := range f.columns {
		if _, ok := f.index[c]; ok {
			return xerrors.Errorf("%q: %w", c, ErrDuplicateColumn)
		}
		f.index[c] = i
	}
	return nil
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string{}, f.columns...)
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Has reports whether the frame has the column.
func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Rows returns the rows without header.
func (f *Frame) Rows() [][]string {
	return f.rows
}

// Records returns the header followed by the rows.
func (f *Frame) Records() [][]string {
	rs := make([][]string, 0, len(f.rows)+1)
	rs = append(rs, f.Columns())
	return append(rs, f.rows...)
}

// Column returns the values of a column.
func (f *Frame) Column(col string) ([]string, error) {
	i, ok := f.index[col]
	if !ok {
		return nil, xerrors.Errorf("%q: %w", col, ErrColumnNotFound)
	}

	vs := make([]string, len(f.rows))
	for j, r := range f.rows {
		vs[j] = r[i]
	}

	return vs, nil
}

// Rename renames columns by mapping old names to new ones.
// Names absent from the frame are ignored.
func (f *Frame) Rename(mapping map[string]string) error {
	renamed := make([]string, len(f.columns))
	for i, c := range f.columns {
		if n, ok := mapping[c]; ok {
			renamed[i] = n
		} else {
			renamed[i] = c
		}
	}

	prev := f.columns
	f.columns = renamed
	if err := f.reindex(); err != nil {
		f.columns = prev
		_ = f.reindex()
		return xerrors.Errorf("failed to rename: %w", err)
	}

	return nil
}

// SetColumns replaces all column names positionally.
func (f *Frame) SetColumns(columns []string) error {
	if len(columns) != len(f.columns) {
		return xerrors.Errorf("frame has %d columns but %d names are given", len(f.columns), len(columns))
	}

	prev := f.columns
	f.columns = append([]string{}, columns...)
	if err := f.reindex(); err != nil {
		f.columns = prev
		_ = f.reindex()
		return err
	}

	return nil
}

// Select keeps the given columns in the given order.
func (f *Frame) Select(cols []string) error {
	idx := make([]int, len(cols))
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		j, ok := f.index[c]
		if !ok {
			return xerrors.Errorf("%q: %w", c, ErrColumnNotFound)
		}
		if seen[c] {
			return xerrors.Errorf("%q: %w", c, ErrDuplicateColumn)
		}
		seen[c] = true
		idx[i] = j
	}

	for k, r := range f.rows {
		row := make([]string, len(idx))
		for i, j := range idx {
			row[i] = r[j]
		}
		f.rows[k] = row
	}

	f.columns = append([]string{}, cols...)
	return f.reindex()
}

// Drop removes columns.
func (f *Frame) Drop(cols ...string) error {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		if !f.Has(c) {
			return xerrors.Errorf("%q: %w", c, ErrColumnNotFound)
		}
		drop[c] = true
	}

	keep := make([]string, 0, len(f.columns))
	for _, c := range f.columns {
		if !drop[c] {
			keep = append(keep, c)
		}
	}

	return f.Select(keep)
}

// Map replaces each value of a column with fn(value).
func (f *Frame) Map(col string, fn func(string) (string, error)) error {
	i, ok := f.index[col]
	if !ok {
		return xerrors.Errorf("%q: %w", col, ErrColumnNotFound)
	}

	for j, r := range f.rows {
		v, err := fn(r[i])
		if err != nil {
			return xerrors.Errorf("failed to map column %q at row %d: %w", col, j, err)
		}
		r[i] = v
	}

	return nil
}

// Derive sets a column to fn(row) for each row, appending the column when it is new.
func (f *Frame) Derive(col string, fn func(Row) (string, error)) error {
	values := make([]string, len(f.rows))
	for j := range f.rows {
		v, err := fn(Row{frame: f, i: j})
		if err != nil {
			return xerrors.Errorf("failed to derive column %q at row %d: %w", col, j, err)
		}
		values[j] = v
	}

	i, ok := f.index[col]
	if !ok {
		i = len(f.columns)
		f.columns = append(f.columns, col)
		f.index[col] = i
		for j, r := range f.rows {
			f.rows[j] = append(r, "")
		}
	}

	for j, r := range f.rows {
		r[i] = values[j]
	}

	return nil
}

// Filter keeps rows for which keep returns true.
func (f *Frame) Filter(keep func(Row) bool) {
	kept := f.rows[:0]
	for j := range f.rows {
		if keep(Row{frame: f, i: j}) {
			kept = append(kept, f.rows[j])
		}
	}
	f.rows = kept
}

// Append adds rows of other, which must have the same columns.
func (f *Frame) Append(other *Frame) error {
	if !equalStrings(f.columns, other.columns) {
		return xerrors.Errorf("cannot append frame with columns %v to %v", other.columns, f.columns)
	}
	f.rows = append(f.rows, other.rows...)
	return nil
}

// Row is a read-only view of a frame row.
type Row struct {
	frame *Frame
	i     int
}

// Index returns the position of the row in the frame.
func (r Row) Index() int {
	return r.i
}

// Get returns the value at the column, or "" if the frame doesn't have it.
func (r Row) Get(col string) string {
	j, ok := r.frame.index[col]
	if !ok {
		return ""
	}
	return r.frame.rows[r.i][j]
}

// Lookup is like Get but reports whether the column exists.
func (r Row) Lookup(col string) (string, bool) {
	j, ok := r.frame.index[col]
	if !ok {
		return "", false
	}
	return r.frame.rows[r.i][j], true
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
