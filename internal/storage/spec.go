package storage

import (
	"fmt"
	"strings"

	"ecomdata/internal/schema"
	"ecomdata/internal/table"
)

// TableSpec describes a table to create.
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
}

// ColumnSpec is one column. Backends map Kind to their own SQL type.
type ColumnSpec struct {
	Name string
	Kind schema.Kind
}

// Names returns the column names in order.
func (s TableSpec) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Validate checks that the spec has a name and distinct, non-empty columns.
func (s TableSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("storage: table name is empty")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("storage: table %s has no columns", s.Name)
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		n := strings.ToLower(strings.TrimSpace(c.Name))
		if n == "" {
			return fmt.Errorf("storage: table %s has an unnamed column", s.Name)
		}
		if seen[n] {
			return fmt.Errorf("storage: table %s repeats column %q", s.Name, c.Name)
		}
		seen[n] = true
	}
	return nil
}

// SpecFor derives a TableSpec from a table's columns. Canonical columns get
// their schema kind; anything else is stored as text.
func SpecFor(name string, t *table.Table) TableSpec {
	cols := t.Columns()
	spec := TableSpec{Name: name, Columns: make([]ColumnSpec, len(cols))}
	for i, c := range cols {
		spec.Columns[i] = ColumnSpec{Name: c, Kind: schema.KindOf(c)}
	}
	return spec
}

// BatchRows returns how many rows fit in one statement when each row binds
// width parameters and the backend allows at most maxParams per statement.
func BatchRows(width, maxParams int) int {
	if width <= 0 {
		return 1
	}
	return max(1, maxParams/width)
}

// SplitQualified splits "schema.table" into its parts. Names without a
// single dot come back as ("", name).
func SplitQualified(name string) (schemaName, tableName string) {
	name = strings.TrimSpace(name)
	parts := strings.Split(name, ".")
	if len(parts) != 2 {
		return "", name
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
