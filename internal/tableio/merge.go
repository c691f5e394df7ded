package tableio

import (
	"crypto/sha256"

	"ecomdata/internal/table"
)

// Merge appends the rows of a after the rows of b into a new table. The
// columns are b's followed by any of a's that b lacks; cells a row has no
// column for are missing.
func Merge(a, b *table.Table) *table.Table {
	cols := b.Columns()
	for _, c := range a.Columns() {
		if !b.Has(c) {
			cols = append(cols, c)
		}
	}

	out := table.New(cols)
	for _, src := range []*table.Table{b, a} {
		ix := make([]int, len(cols))
		for i, c := range cols {
			ix[i] = src.Index(c)
		}
		vals := make([]any, len(cols))
		for _, row := range src.Rows() {
			for i, si := range ix {
				if si < 0 {
					vals[i] = nil
				} else {
					vals[i] = row.V[si]
				}
			}
			out.Append(row.Line, vals...)
		}
	}
	return out
}

// CountDuplicates returns the number of rows identical to an earlier row.
// Rows are compared by a SHA-256 over their canonical cell text, with
// missing cells kept distinct from empty strings.
func CountDuplicates(t *table.Table) int {
	seen := make(map[[sha256.Size]byte]struct{}, t.Len())
	dupes := 0
	for _, row := range t.Rows() {
		h := rowHash(row.V)
		if _, ok := seen[h]; ok {
			dupes++
			continue
		}
		seen[h] = struct{}{}
	}
	return dupes
}

// DropDuplicates returns a new table without the rows CountDuplicates counts.
func DropDuplicates(t *table.Table) *table.Table {
	out := table.New(t.Columns())
	seen := make(map[[sha256.Size]byte]struct{}, t.Len())
	for _, row := range t.Rows() {
		h := rowHash(row.V)
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out.Append(row.Line, row.V...)
	}
	return out
}

func rowHash(vals []any) [sha256.Size]byte {
	var b []byte
	for i, v := range vals {
		if i > 0 {
			b = append(b, '\x1f')
		}
		if v == nil {
			b = append(b, '\x00')
			continue
		}
		b = append(b, FormatCell(v)...)
	}
	return sha256.Sum256(b)
}
