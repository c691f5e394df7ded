// Package table provides the in-memory table the generator, repairer and
// table assembler pass around: an ordered set of uniquely named columns and
// positional rows of cells.
//
// Cell values are untyped. A nil cell is a missing value. Cells read from a
// file are strings; cells produced by the engine are string, int64,
// decimal.Decimal or time.Time.
//
// A Table is not safe for concurrent mutation. It is owned by the call stack
// that created or received it.
package table

import (
	"strconv"
)

// Row is one positional record aligned to the owning table's columns.
type Row struct {
	V    []any
	Line int // 1-based source record number, 0 for synthesized rows
}

// Table is an ordered, column-addressable collection of rows.
type Table struct {
	cols  []string
	index map[string]int
	rows  []*Row
}

// New returns an empty table with the given columns. Repeated names are
// disambiguated with a ".N" suffix ("a", "a.1", "a.2").
func New(columns []string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		t.addColumn(c)
	}
	return t
}

func (t *Table) addColumn(name string) int {
	name = t.uniqueName(name)
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, name)
	return len(t.cols) - 1
}

func (t *Table) uniqueName(name string) string {
	if _, taken := t.index[name]; !taken {
		return name
	}
	for n := 1; ; n++ {
		cand := name + "." + strconv.Itoa(n)
		if _, taken := t.index[cand]; !taken {
			return cand
		}
	}
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string { return append([]string(nil), t.cols...) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the table has column col.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// Rows returns the table's rows. The slice and rows are shared with the table.
func (t *Table) Rows() []*Row { return t.rows }

// Row returns the i-th row.
func (t *Table) Row(i int) *Row { return t.rows[i] }

// Append adds a row. vals is copied and padded with nils or truncated to the
// table width.
func (t *Table) Append(line int, vals ...any) *Row {
	r := &Row{V: make([]any, len(t.cols)), Line: line}
	copy(r.V, vals)
	t.rows = append(t.rows, r)
	return r
}

// Get returns the cell at row i, column col. Absent columns read as nil.
func (t *Table) Get(i int, col string) any {
	ci, ok := t.index[col]
	if !ok {
		return nil
	}
	return t.rows[i].V[ci]
}

// Set writes the cell at row i, column col, adding the column if needed.
func (t *Table) Set(i int, col string, v any) {
	ci := t.EnsureColumn(col)
	t.rows[i].V[ci] = v
}

// Column returns a copy of the values in col, or nil if col is absent.
func (t *Table) Column(col string) []any {
	ci, ok := t.index[col]
	if !ok {
		return nil
	}
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.V[ci]
	}
	return out
}

// EnsureColumn returns the index of col, appending it with nil cells when absent.
func (t *Table) EnsureColumn(col string) int {
	if ci, ok := t.index[col]; ok {
		return ci
	}
	return t.AddColumn(col)
}

// AddColumn appends a column with nil cells and returns its index. A taken
// name is disambiguated like in New.
func (t *Table) AddColumn(col string) int {
	ci := t.addColumn(col)
	for _, r := range t.rows {
		r.V = append(r.V, nil)
	}
	return ci
}

// RenameColumns renames every column through fn. Names that collide after
// renaming are disambiguated like in New.
func (t *Table) RenameColumns(fn func(string) string) {
	old := t.cols
	t.cols = make([]string, 0, len(old))
	t.index = make(map[string]int, len(old))
	for _, c := range old {
		t.addColumn(fn(c))
	}
}

// Project returns a new table holding only cols, in the given order. Absent
// columns and repeats are skipped. Cell values are shared, rows are not.
func (t *Table) Project(cols []string) *Table {
	keep := make([]string, 0, len(cols))
	src := make([]int, 0, len(cols))
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		ci, ok := t.index[c]
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		keep = append(keep, c)
		src = append(src, ci)
	}

	out := New(keep)
	out.rows = make([]*Row, len(t.rows))
	for i, r := range t.rows {
		nr := &Row{V: make([]any, len(src)), Line: r.Line}
		for j, ci := range src {
			nr.V[j] = r.V[ci]
		}
		out.rows[i] = nr
	}
	return out
}

// Clone returns a copy of t with its own rows.
func (t *Table) Clone() *Table { return t.Project(t.cols) }

// HasAll reports whether every name in cols is a column of t.
func (t *Table) HasAll(cols []string) bool {
	for _, c := range cols {
		if !t.Has(c) {
			return false
		}
	}
	return true
}
