package mssql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdata/internal/schema"
	"ecomdata/internal/storage"
)

func TestRegistered(t *testing.T) {
	t.Parallel()
	assert.Contains(t, storage.Kinds(), "mssql")
}

func TestBuildCreateSQL(t *testing.T) {
	t.Parallel()

	got, err := buildCreateSQL(storage.TableSpec{
		Name: "dbo.orders",
		Columns: []storage.ColumnSpec{
			{Name: schema.OrderID, Kind: schema.KindIdentifier},
			{Name: schema.Price, Kind: schema.KindDecimal},
			{Name: schema.OrderedAt, Kind: schema.KindTimestamp},
			{Name: "Notes", Kind: schema.KindText},
		},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"IF OBJECT_ID(N'dbo.orders', N'U') IS NULL BEGIN CREATE TABLE [dbo].[orders] ("+
			"[Order_Id] NVARCHAR(64) NULL, [Price] DECIMAL(12,2) NULL, "+
			"[Date_and_Time_When_Order_Was_Placed] DATETIME2 NULL, [Notes] NVARCHAR(4000) NULL); END;",
		got)
}

func TestBuildBulkInsertSQL(t *testing.T) {
	t.Parallel()

	q, args, err := buildBulkInsertSQL("dbo.orders", []string{"a", "b]"}, [][]any{{1, "x"}, {2, nil}})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO [dbo].[orders] ([a], [b]]]) VALUES (@p1, @p2), (@p3, @p4)", q)
	assert.Equal(t, []any{1, "x", 2, nil}, args)

	_, _, err = buildBulkInsertSQL("t", nil, nil)
	assert.Error(t, err)
	_, _, err = buildBulkInsertSQL("t", []string{"a"}, [][]any{{1, 2}})
	assert.Error(t, err)
}

func TestBatchFitsParameterLimit(t *testing.T) {
	t.Parallel()

	width := len(schema.CanonicalOrder())
	batch := min(storage.BatchRows(width, maxParams), 1000)
	assert.LessOrEqual(t, batch*width, 2100)
	assert.Equal(t, 125, batch)
}
