// Package generator synthesizes order tables from the reference catalog.
//
// Every row is drawn independently. Dependent columns are consistent by
// construction: a city is drawn from the row's country, a product from the
// row's category.
package generator

import (
	"errors"
	"fmt"
	"time"

	"ecomdata/internal/catalog"
	"ecomdata/internal/faker"
	"ecomdata/internal/schema"
	"ecomdata/internal/table"
)

// MaxRows is the default upper bound on rows per call.
const MaxRows = 100000

const (
	minQuantity = 1
	maxQuantity = 5
	minPrice    = 10.0
	maxPrice    = 1000.0

	orderWindow = 365 * 24 * time.Hour
)

var (
	ErrInvalidRowCount = errors.New("generator: invalid row count")
	ErrUnknownColumn   = errors.New("generator: unknown column")
)

// Generator builds order tables. It is not safe for concurrent use because it
// owns its Faker.
type Generator struct {
	cat     *catalog.Catalog
	fk      *faker.Faker
	now     func() time.Time
	maxRows int
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the clock used to place order timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithMaxRows overrides MaxRows.
func WithMaxRows(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxRows = n
		}
	}
}

// New returns a Generator drawing vocabularies from cat and randomness from fk.
func New(cat *catalog.Catalog, fk *faker.Faker, opts ...Option) *Generator {
	g := &Generator{cat: cat, fk: fk, now: time.Now, maxRows: MaxRows}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns a table of exactly n rows holding exactly columns. An
// empty column list means every canonical column, in canonical order.
func (g *Generator) Generate(n int, columns []string) (*table.Table, error) {
	cols, err := g.resolve(n, columns)
	if err != nil {
		return nil, err
	}

	t := table.New(cols)
	vals := make([]any, len(cols))
	for i := 0; i < n; i++ {
		rec := g.synthesize()
		for j, c := range cols {
			vals[j] = rec[c]
		}
		t.Append(0, vals...)
	}
	return t, nil
}

func (g *Generator) resolve(n int, columns []string) ([]string, error) {
	if n <= 0 || n > g.maxRows {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidRowCount, n, g.maxRows)
	}
	if len(columns) == 0 {
		return schema.CanonicalOrder(), nil
	}
	for _, c := range columns {
		if !schema.IsCanonical(c) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}
	return columns, nil
}

type record map[string]any

// synthesize draws one self-consistent order.
func (g *Generator) synthesize() record {
	rec := make(record, 16)

	for _, c := range schema.IdentifierColumns() {
		rec[c] = g.fk.UUID()
	}

	country := g.fk.Choice(g.cat.Countries())
	rec[schema.CustomerCountry] = country
	rec[schema.CustomerCity] = g.cityOf(country)
	rec[schema.CustomerName] = g.fk.Name()

	category := g.fk.Choice(g.cat.Categories())
	rec[schema.ProductCategory] = category
	rec[schema.ProductName] = g.productOf(category)

	rec[schema.PaymentType] = g.fk.Choice(g.cat.PaymentTypes())
	rec[schema.Quantity] = int64(g.fk.IntRange(minQuantity, maxQuantity))
	rec[schema.Price] = g.fk.Decimal(minPrice, maxPrice, 2)

	now := g.now()
	rec[schema.OrderedAt] = g.fk.Time(now.Add(-orderWindow), now)
	rec[schema.Site] = g.fk.Choice(g.cat.Sites())

	if g.fk.Chance(0.8) {
		rec[schema.PaymentStatus] = schema.PaymentSucceeded
		rec[schema.PaymentFailureReason] = schema.NoReasonProvided
	} else {
		rec[schema.PaymentStatus] = schema.PaymentFailed
		rec[schema.PaymentFailureReason] = g.fk.Choice(g.cat.FailureReasons())
	}
	return rec
}

// cityOf and productOf only ever see catalog-enumerated keys.
func (g *Generator) cityOf(country string) string {
	cities, _ := g.cat.CitiesOf(country)
	return g.fk.Choice(cities)
}

func (g *Generator) productOf(category string) string {
	products, _ := g.cat.ProductsOf(category)
	return g.fk.Choice(products)
}
