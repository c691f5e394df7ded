package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdata/internal/schema"
	"ecomdata/internal/table"
)

type fakeRepo struct {
	spec    TableSpec
	table   string
	columns []string
	rows    [][]any
	err     error
}

func (f *fakeRepo) EnsureTable(_ context.Context, spec TableSpec) error {
	f.spec = spec
	return nil
}

func (f *fakeRepo) InsertRows(_ context.Context, table string, columns []string, rows [][]any) (int64, error) {
	f.table, f.columns, f.rows = table, columns, rows
	return int64(len(rows)), f.err
}

func (f *fakeRepo) Query(context.Context, string, ...any) (*Result, error) { return &Result{}, nil }
func (f *fakeRepo) Close() error                                          { return nil }

func TestRegistry(t *testing.T) {
	Register("fake-registry-test", func(context.Context, Config) (Repository, error) { return &fakeRepo{}, nil })

	assert.Contains(t, Kinds(), "fake-registry-test")
	repo, err := New(context.Background(), Config{Kind: "fake-registry-test"})
	require.NoError(t, err)
	assert.NotNil(t, repo)

	_, err = New(context.Background(), Config{Kind: "nope"})
	assert.ErrorIs(t, err, ErrUnsupportedKind)
	_, err = New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrUnsupportedKind)

	assert.Panics(t, func() {
		Register("fake-registry-test", func(context.Context, Config) (Repository, error) { return nil, nil })
	})
	assert.Panics(t, func() { Register("", func(context.Context, Config) (Repository, error) { return nil, nil }) })
	assert.Panics(t, func() { Register("x-nil", nil) })
}

func TestDBValue(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		kind schema.Kind
		in   any
		want any
	}{
		{"nil", schema.KindInteger, nil, nil},
		{"int_string", schema.KindInteger, " 7 ", int64(7)},
		{"int_decimal_string", schema.KindInteger, "3.0", int64(3)},
		{"int_fraction", schema.KindInteger, "3.5", nil},
		{"int_garbage", schema.KindInteger, "abc", nil},
		{"int_float", schema.KindInteger, 2.0, int64(2)},
		{"dec_decimal", schema.KindDecimal, decimal.RequireFromString("10.25"), 10.25},
		{"dec_string", schema.KindDecimal, "99.9", 99.9},
		{"dec_garbage", schema.KindDecimal, "invalid", nil},
		{"ts_time", schema.KindTimestamp, ts, ts},
		{"ts_string", schema.KindTimestamp, "2024-01-02 03:04:05", ts},
		{"ts_garbage", schema.KindTimestamp, "not-a-date", nil},
		{"text_string", schema.KindText, "Alice", "Alice"},
		{"text_int", schema.KindText, int64(5), "5"},
		{"ident_bytes", schema.KindIdentifier, []byte("abc"), "abc"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, DBValue(tc.kind, tc.in))
		})
	}
}

func TestSpecForAndExport(t *testing.T) {
	t.Parallel()

	tbl := table.New([]string{schema.OrderID, schema.Price, "Extra"})
	tbl.Append(2, "o1", "12.00", "x")

	spec := SpecFor("orders", tbl)
	require.NoError(t, spec.Validate())
	assert.Equal(t, []ColumnSpec{
		{Name: schema.OrderID, Kind: schema.KindIdentifier},
		{Name: schema.Price, Kind: schema.KindDecimal},
		{Name: "Extra", Kind: schema.KindText},
	}, spec.Columns)

	fr := &fakeRepo{}
	n, err := Export(context.Background(), fr, "orders", tbl)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, "orders", fr.table)
	assert.Equal(t, [][]any{{"o1", 12.0, "x"}}, fr.rows)

	fr.err = errors.New("disk full")
	_, err = Export(context.Background(), fr, "orders", tbl)
	assert.ErrorIs(t, err, fr.err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.Error(t, TableSpec{}.Validate())
	assert.Error(t, TableSpec{Name: "t"}.Validate())
	assert.Error(t, TableSpec{Name: "t", Columns: []ColumnSpec{{Name: "a"}, {Name: "A"}}}.Validate())
	assert.Error(t, TableSpec{Name: "t", Columns: []ColumnSpec{{Name: " "}}}.Validate())
}

func TestBatchRowsAndSplit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 125, BatchRows(16, 2000))
	assert.Equal(t, 1, BatchRows(5000, 2000))
	assert.Equal(t, 1, BatchRows(0, 2000))

	s, n := SplitQualified("dbo.orders")
	assert.Equal(t, "dbo", s)
	assert.Equal(t, "orders", n)
	s, n = SplitQualified("orders")
	assert.Empty(t, s)
	assert.Equal(t, "orders", n)
}
