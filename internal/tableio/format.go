package tableio

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ecomdata/internal/schema"
)

// FormatCell renders a cell the way it is written to a file. Missing values
// are empty; decimals keep their scale with at least two fraction digits;
// timestamps use schema.TimestampLayout.
func FormatCell(v any) string {
	var b strings.Builder
	appendCell(&b, v)
	return b.String()
}

// appendCell appends the canonical text of v. Common types are converted
// without fmt.Sprint.
func appendCell(b *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
	case string:
		b.WriteString(t)
	case []byte:
		b.Write(t)
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case int:
		b.WriteString(strconv.Itoa(t))
	case int32:
		b.WriteString(strconv.FormatInt(int64(t), 10))
	case int64:
		b.WriteString(strconv.FormatInt(t, 10))
	case uint64:
		b.WriteString(strconv.FormatUint(t, 10))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(t), 'f', -1, 32))
	case float64:
		b.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case decimal.Decimal:
		places := -t.Exponent()
		if places < 2 {
			places = 2
		}
		b.WriteString(t.StringFixed(places))
	case time.Time:
		b.WriteString(t.Format(schema.TimestampLayout))
	default:
		b.WriteString(fmt.Sprint(t))
	}
}
