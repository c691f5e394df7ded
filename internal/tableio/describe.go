package tableio

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ecomdata/internal/schema"
	"ecomdata/internal/table"
)

// Inferred column types reported by Describe.
const (
	TypeEmpty    = "empty"
	TypeInt      = "int"
	TypeFloat    = "float"
	TypeDatetime = "datetime"
	TypeUUID     = "uuid"
	TypeString   = "string"
)

// ColumnInfo profiles one column.
type ColumnInfo struct {
	Name     string
	Type     string
	NonNull  int
	Nulls    int
	Distinct int
}

// Info profiles a table.
type Info struct {
	Rows       int
	Columns    []ColumnInfo
	Duplicates int
}

// Describe returns the shape of t and an inferred type per column. A column
// takes the narrowest type every non-missing cell satisfies, widening
// int → float → string and uuid/datetime → string.
func Describe(t *table.Table) Info {
	info := Info{Rows: t.Len(), Duplicates: CountDuplicates(t)}
	for ci, name := range t.Columns() {
		col := ColumnInfo{Name: name, Type: TypeEmpty}
		distinct := map[string]struct{}{}
		for _, row := range t.Rows() {
			v := row.V[ci]
			if v == nil {
				col.Nulls++
				continue
			}
			col.NonNull++
			distinct[FormatCell(v)] = struct{}{}
			col.Type = widen(col.Type, cellType(v))
		}
		col.Distinct = len(distinct)
		info.Columns = append(info.Columns, col)
	}
	return info
}

func cellType(v any) string {
	switch x := v.(type) {
	case int, int32, int64:
		return TypeInt
	case float32, float64, decimal.Decimal:
		return TypeFloat
	case time.Time:
		return TypeDatetime
	case string:
		s := strings.TrimSpace(x)
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			return TypeInt
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return TypeFloat
		}
		if _, err := uuid.Parse(s); err == nil && len(s) == 36 {
			return TypeUUID
		}
		if _, ok := schema.ParseTimestamp(s); ok {
			return TypeDatetime
		}
	}
	return TypeString
}

func widen(cur, next string) string {
	switch {
	case cur == TypeEmpty || cur == next:
		return next
	case (cur == TypeInt && next == TypeFloat) || (cur == TypeFloat && next == TypeInt):
		return TypeFloat
	default:
		return TypeString
	}
}

// ParseDates converts col to time.Time cells in place. Values that do not
// parse become missing. It returns the number of cells nulled this way and
// false when the column is absent.
func ParseDates(t *table.Table, col string) (int, bool) {
	ci := t.Index(col)
	if ci < 0 {
		return 0, false
	}
	nulled := 0
	for _, row := range t.Rows() {
		switch v := row.V[ci].(type) {
		case nil, time.Time:
		case string:
			if ts, ok := schema.ParseTimestamp(v); ok {
				row.V[ci] = ts
			} else {
				row.V[ci] = nil
				nulled++
			}
		default:
			row.V[ci] = nil
			nulled++
		}
	}
	return nulled, true
}
