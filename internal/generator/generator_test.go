package generator

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdata/internal/catalog"
	"ecomdata/internal/faker"
	"ecomdata/internal/schema"
	"ecomdata/internal/table"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newGen(seed uint64, opts ...Option) *Generator {
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return New(catalog.Default(), faker.New(seed), opts...)
}

func TestGenerateShape(t *testing.T) {
	t.Parallel()

	tbl, err := newGen(1).Generate(50, nil)
	require.NoError(t, err)
	assert.Equal(t, 50, tbl.Len())
	assert.Equal(t, schema.CanonicalOrder(), tbl.Columns())

	sel := []string{schema.Price, schema.OrderID}
	tbl, err = newGen(1).Generate(3, sel)
	require.NoError(t, err)
	assert.Equal(t, sel, tbl.Columns())
}

func TestGenerateRowsAreConsistent(t *testing.T) {
	t.Parallel()

	cat := catalog.Default()
	tbl, err := newGen(2).Generate(500, nil)
	require.NoError(t, err)

	minP, maxP := decimal.NewFromInt(10), decimal.NewFromInt(1000)
	for i := 0; i < tbl.Len(); i++ {
		get := func(c string) any { return tbl.Get(i, c) }

		for _, c := range schema.IdentifierColumns() {
			_, err := uuid.Parse(get(c).(string))
			require.NoError(t, err, c)
		}
		assert.True(t, cat.HasCity(get(schema.CustomerCountry).(string), get(schema.CustomerCity).(string)))
		assert.True(t, cat.HasProduct(get(schema.ProductCategory).(string), get(schema.ProductName).(string)))
		assert.Contains(t, cat.PaymentTypes(), get(schema.PaymentType))
		assert.Contains(t, cat.Sites(), get(schema.Site))
		assert.NotEmpty(t, get(schema.CustomerName))

		q := get(schema.Quantity).(int64)
		assert.True(t, q >= 1 && q <= 5, q)
		p := get(schema.Price).(decimal.Decimal)
		assert.True(t, p.GreaterThanOrEqual(minP) && p.LessThanOrEqual(maxP), p.String())

		at := get(schema.OrderedAt).(time.Time)
		assert.False(t, at.After(now))
		assert.True(t, at.After(now.Add(-orderWindow-time.Second)))

		switch get(schema.PaymentStatus) {
		case schema.PaymentSucceeded:
			assert.Equal(t, schema.NoReasonProvided, get(schema.PaymentFailureReason))
		case schema.PaymentFailed:
			assert.Contains(t, cat.FailureReasons(), get(schema.PaymentFailureReason))
		default:
			t.Fatalf("row %d: unexpected status %v", i, get(schema.PaymentStatus))
		}
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	t.Parallel()

	a, err := newGen(9).Generate(20, nil)
	require.NoError(t, err)
	b, err := newGen(9).Generate(20, nil)
	require.NoError(t, err)
	assert.Equal(t, rowsOf(a), rowsOf(b))
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	g := newGen(3, WithMaxRows(10))
	_, err := g.Generate(0, nil)
	assert.ErrorIs(t, err, ErrInvalidRowCount)
	_, err = g.Generate(11, nil)
	assert.ErrorIs(t, err, ErrInvalidRowCount)
	_, err = g.Generate(10, nil)
	assert.NoError(t, err)
	_, err = g.Generate(1, []string{schema.OrderID, "Discount"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
	_, err = g.GenerateRough(-1, nil, 0.5)
	assert.ErrorIs(t, err, ErrInvalidRowCount)
}

func TestGenerateRoughCorrupts(t *testing.T) {
	t.Parallel()

	cat := catalog.Default()
	tbl, err := newGen(4).GenerateRough(200, nil, 1)
	require.NoError(t, err)

	for i := 0; i < tbl.Len(); i++ {
		assert.Equal(t, schema.MarkerInvalidUUID, tbl.Get(i, schema.OrderID))
		assert.Equal(t, schema.MarkerInvalidProductID, tbl.Get(i, schema.ProductID))
		assert.Equal(t, schema.MarkerInvalidCustomerID, tbl.Get(i, schema.CustomerID))
		assert.Equal(t, "not-a-date", tbl.Get(i, schema.OrderedAt))
		assert.Nil(t, tbl.Get(i, schema.CustomerCountry))

		switch q := tbl.Get(i, schema.Quantity).(type) {
		case nil:
		case int64:
			assert.Equal(t, int64(-1), q)
		case string:
			assert.Equal(t, "abc", q)
		default:
			t.Fatalf("unexpected quantity %T", q)
		}

		city := tbl.Get(i, schema.CustomerCity).(string)
		owners := 0
		for _, c := range cat.Countries() {
			if cat.HasCity(c, city) {
				owners++
			}
		}
		assert.Equal(t, 1, owners, city)
	}
}

func TestGenerateRoughWithoutDirtMatchesShape(t *testing.T) {
	t.Parallel()

	tbl, err := newGen(5).GenerateRough(30, []string{schema.OrderID, schema.Quantity}, 0)
	require.NoError(t, err)
	for i := 0; i < tbl.Len(); i++ {
		_, err := uuid.Parse(tbl.Get(i, schema.OrderID).(string))
		assert.NoError(t, err)
		assert.IsType(t, int64(0), tbl.Get(i, schema.Quantity))
	}
}

func rowsOf(t *table.Table) [][]any {
	out := make([][]any, t.Len())
	for i, r := range t.Rows() {
		out[i] = r.V
	}
	return out
}
