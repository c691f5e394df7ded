package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ecomdata/internal/schema"
	"ecomdata/internal/table"
)

// DBValue converts a cell to the value bound for a column of kind k.
// Strings read from a file are parsed; anything that cannot be converted
// becomes NULL. Decimals are bound as float64, which every driver accepts.
func DBValue(k schema.Kind, v any) any {
	if v == nil {
		return nil
	}
	switch k {
	case schema.KindInteger:
		return toInt64(v)
	case schema.KindDecimal:
		return toFloat64(v)
	case schema.KindTimestamp:
		return toTime(v)
	default:
		return toText(v)
	}
}

func toInt64(v any) any {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		if t == float64(int64(t)) {
			return int64(t)
		}
	case decimal.Decimal:
		if t.IsInteger() {
			return t.IntPart()
		}
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if d, err := decimal.NewFromString(s); err == nil && d.IsInteger() {
			return d.IntPart()
		}
	}
	return nil
}

func toFloat64(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.InexactFloat64()
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(t)); err == nil {
			return d.InexactFloat64()
		}
	}
	return nil
}

func toTime(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		if ts, ok := schema.ParseTimestamp(t); ok {
			return ts.UTC()
		}
	}
	return nil
}

func toText(v any) any {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case decimal.Decimal:
		return t.String()
	case time.Time:
		return t.Format(schema.TimestampLayout)
	default:
		return fmt.Sprint(t)
	}
}

// TableRows converts every row of t with DBValue using spec's column kinds.
// spec must have been derived from t (see SpecFor).
func TableRows(spec TableSpec, t *table.Table) [][]any {
	out := make([][]any, t.Len())
	for i, r := range t.Rows() {
		vals := make([]any, len(spec.Columns))
		for j, c := range spec.Columns {
			if ci := t.Index(c.Name); ci >= 0 {
				vals[j] = DBValue(c.Kind, r.V[ci])
			}
		}
		out[i] = vals
	}
	return out
}

// Export creates the table described by t (if missing) and appends all its
// rows. It returns the number of rows written.
func Export(ctx context.Context, repo Repository, name string, t *table.Table) (int64, error) {
	spec := SpecFor(name, t)
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	if err := repo.EnsureTable(ctx, spec); err != nil {
		return 0, fmt.Errorf("ensure table %s: %w", name, err)
	}
	if t.Len() == 0 {
		return 0, nil
	}
	n, err := repo.InsertRows(ctx, name, spec.Names(), TableRows(spec, t))
	if err != nil {
		return n, fmt.Errorf("insert into %s: %w", name, err)
	}
	return n, nil
}
