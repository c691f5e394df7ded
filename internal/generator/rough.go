package generator

import (
	"ecomdata/internal/schema"
	"ecomdata/internal/table"
)

// DefaultDirtRatio is the share of cells GenerateRough corrupts by default.
const DefaultDirtRatio = 0.1

// GenerateRough synthesizes a table like Generate and then corrupts each
// cell with probability dirt, the way upstream exports tend to break:
// placeholder identifiers, -1 or text quantities, missing prices, cities of
// the wrong country, products of the wrong category, missing failure
// reasons and unparseable timestamps. The output is meant as repair input.
func (g *Generator) GenerateRough(n int, columns []string, dirt float64) (*table.Table, error) {
	cols, err := g.resolve(n, columns)
	if err != nil {
		return nil, err
	}

	t := table.New(cols)
	vals := make([]any, len(cols))
	for i := 0; i < n; i++ {
		rec := g.synthesize()
		for j, c := range cols {
			if g.fk.Chance(dirt) {
				vals[j] = g.corrupt(c, rec)
			} else {
				vals[j] = rec[c]
			}
		}
		t.Append(0, vals...)
	}
	return t, nil
}

func (g *Generator) corrupt(col string, rec record) any {
	switch col {
	case schema.ProductID:
		return schema.MarkerInvalidProductID
	case schema.CustomerID:
		return schema.MarkerInvalidCustomerID
	case schema.OrderID, schema.PaymentConfirmationID:
		return schema.MarkerInvalidUUID
	case schema.Quantity:
		switch g.fk.IntN(3) {
		case 0:
			return int64(-1)
		case 1:
			return "abc"
		default:
			return nil
		}
	case schema.Price:
		if g.fk.Chance(0.5) {
			return "invalid"
		}
		return nil
	case schema.CustomerCity:
		return g.foreignCity(rec[schema.CustomerCountry].(string))
	case schema.ProductName:
		return g.foreignProduct(rec[schema.ProductCategory].(string))
	case schema.OrderedAt:
		return "not-a-date"
	default:
		return nil
	}
}

func (g *Generator) foreignCity(country string) string {
	others := without(g.cat.Countries(), country)
	if len(others) == 0 {
		return g.cityOf(country)
	}
	return g.cityOf(g.fk.Choice(others))
}

func (g *Generator) foreignProduct(category string) string {
	others := without(g.cat.Categories(), category)
	if len(others) == 0 {
		return g.productOf(category)
	}
	return g.productOf(g.fk.Choice(others))
}

func without(xs []string, drop string) []string {
	out := xs[:0:0]
	for _, x := range xs {
		if x != drop {
			out = append(out, x)
		}
	}
	return out
}
