package repair

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"ecomdata/internal/schema"
	"ecomdata/internal/table"
)

const (
	minQuantity = 1
	maxQuantity = 5
	minPrice    = 10.0
	maxPrice    = 1000.0
)

func (r *Repairer) repairIdentifiers(sel selection, t *table.Table) int {
	changed := 0
	for _, col := range schema.IdentifierColumns() {
		ci := t.Index(col)
		if ci < 0 || !sel[col] {
			continue
		}

		fresh := map[string]string{}
		for _, row := range t.Rows() {
			s, ok := row.V[ci].(string)
			if !ok || !schema.IsPlaceholder(s) {
				continue
			}
			id, drawn := fresh[s]
			if !drawn || r.opts.Policy == PolicyPerCell {
				id = r.fk.UUID()
				fresh[s] = id
			}
			if set(row, ci, id) {
				changed++
			}
		}
	}
	return changed
}

func (r *Repairer) regenerateCustomers(_ selection, t *table.Table) int {
	countryIx := t.EnsureColumn(schema.CustomerCountry)
	cityIx := t.EnsureColumn(schema.CustomerCity)
	nameIx := t.EnsureColumn(schema.CustomerName)

	countries := r.cat.Countries()
	changed := 0
	for _, row := range t.Rows() {
		country := r.fk.Choice(countries)
		cities, _ := r.cat.CitiesOf(country)
		city := r.fk.Choice(cities)
		name := r.fk.Name()

		for _, w := range []struct {
			ci int
			v  string
		}{{countryIx, country}, {cityIx, city}, {nameIx, name}} {
			if set(row, w.ci, w.v) {
				changed++
			}
		}
	}
	return changed
}

// regenerateProducts derives each row's category from its product name and
// then redraws the product from that category. A valid product may be
// replaced by another product of the same category.
func (r *Repairer) regenerateProducts(_ selection, t *table.Table) int {
	nameIx := t.Index(schema.ProductName)
	catIx := t.EnsureColumn(schema.ProductCategory)

	changed := 0
	for _, row := range t.Rows() {
		category := r.cat.CategoryOf(cellString(row.V[nameIx]), r.fk)
		products, _ := r.cat.ProductsOf(category)
		product := r.fk.Choice(products)

		if set(row, catIx, category) {
			changed++
		}
		if set(row, nameIx, product) {
			changed++
		}
	}
	return changed
}

func (r *Repairer) regeneratePaymentTypes(_ selection, t *table.Table) int {
	ci := t.Index(schema.PaymentType)
	types := r.cat.PaymentTypes()
	changed := 0
	for _, row := range t.Rows() {
		if set(row, ci, r.fk.Choice(types)) {
			changed++
		}
	}
	return changed
}

// repairNumerics normalizes every column name first, then patches
// Quantity_ordered and Price when present.
func (r *Repairer) repairNumerics(_ selection, t *table.Table) int {
	changed := 0
	if ci := t.Index(schema.Quantity); ci >= 0 {
		changed += r.repairQuantities(t, ci)
	}
	if ci := t.Index(schema.Price); ci >= 0 {
		changed += r.repairPrices(t, ci)
	}
	return changed
}

func (r *Repairer) repairQuantities(t *table.Table, ci int) int {
	var shared *int64
	replacement := func() int64 {
		if r.opts.Policy == PolicyPerCell {
			return int64(r.fk.IntRange(minQuantity, maxQuantity))
		}
		if shared == nil {
			q := int64(r.fk.IntRange(minQuantity, maxQuantity))
			shared = &q
		}
		return *shared
	}

	changed := 0
	for _, row := range t.Rows() {
		old := row.V[ci]
		q, ok := coerceQuantity(old)
		switch {
		case ok && q == -1:
			q = 1
		case !ok || q < minQuantity:
			q = replacement()
		}
		row.V[ci] = q
		if !sameNumber(old, q) {
			changed++
		}
	}
	return changed
}

func (r *Repairer) repairPrices(t *table.Table, ci int) int {
	var shared *decimal.Decimal
	replacement := func() decimal.Decimal {
		if r.opts.Policy == PolicyPerCell {
			return r.fk.Decimal(minPrice, maxPrice, 2)
		}
		if shared == nil {
			p := r.fk.Decimal(minPrice, maxPrice, 2)
			shared = &p
		}
		return *shared
	}

	changed := 0
	for _, row := range t.Rows() {
		old := row.V[ci]
		p, ok := coercePrice(old)
		if !ok || !p.IsPositive() {
			p = replacement()
		}
		row.V[ci] = p
		if !sameNumber(old, p) {
			changed++
		}
	}
	return changed
}

func (r *Repairer) fillFailureReasons(_ selection, t *table.Table) int {
	ci := t.Index(schema.PaymentFailureReason)
	changed := 0
	for _, row := range t.Rows() {
		if isMissing(row.V[ci]) {
			row.V[ci] = schema.NoReasonProvided
			changed++
		}
	}
	return changed
}

// coerceQuantity converts v to an integer quantity. Non-numeric, missing and
// non-integral values fail.
func coerceQuantity(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return integral(x)
	case decimal.Decimal:
		if !x.IsInteger() {
			return 0, false
		}
		return x.IntPart(), true
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return integral(f)
	default:
		return 0, false
	}
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// coercePrice converts v to a decimal. Non-numeric and missing values fail.
func coercePrice(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case int64:
		return decimal.NewFromInt(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(x), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// sameNumber reports whether old already denoted n, so that type coercion
// alone does not count as a repair.
func sameNumber(old, n any) bool {
	switch want := n.(type) {
	case int64:
		q, ok := coerceQuantity(old)
		return ok && q == want
	case decimal.Decimal:
		p, ok := coercePrice(old)
		return ok && p.Equal(want)
	}
	return false
}

func isMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

func cellString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
