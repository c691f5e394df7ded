package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdata/internal/cli"
	"ecomdata/internal/config"
	"ecomdata/internal/storage/sqlite"
)

func testDeps(dsn string) cli.Deps {
	cfg := &config.Config{LogLevel: "error", LogFormat: "json", MaxRows: 1000, StorageKind: "sqlite", StorageDSN: dsn}
	return cli.Deps{
		LoadConfig:  func() (*config.Config, error) { return cfg, nil },
		InitMetrics: func(context.Context, *config.Config) (func() error, error) { return func() error { return nil }, nil },
		Now:         time.Now,
	}
}

const sample = `Order_Id,Quantity_ordered,Price,Date_and_Time_When_Order_Was_Placed
1b4e28ba-2fa1-11d2-883f-0016d3cca427,2,19.99,2024-01-02 10:00:00
6fa459ea-ee8a-3ca4-894e-db77e160355e,abc,,2024-01-03 11:30:00
`

func TestRunMain_AppendsToSQLite(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(in, []byte(sample), 0o644))
	dsn := filepath.Join(dir, "orders.db")

	for i := 0; i < 2; i++ {
		var stdout, stderr bytes.Buffer
		code := runMain(context.Background(), []string{"-in", in}, &stdout, &stderr, testDeps(dsn))
		require.Equal(t, cli.ExitOK, code, stderr.String())
		assert.Contains(t, stdout.String(), "exported 2 rows to orders (sqlite)")
	}

	repo, err := sqlite.Open(context.Background(), dsn)
	require.NoError(t, err)
	defer repo.Close()

	res, err := repo.Query(context.Background(), `SELECT COUNT(*), COUNT(Quantity_ordered), SUM(Price) FROM orders`)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.EqualValues(t, 4, res.Rows[0][0])
	assert.EqualValues(t, 2, res.Rows[0][1])
	assert.InDelta(t, 39.98, res.Rows[0][2], 1e-9)
}

func TestRunMain_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(in, []byte(sample), 0o644))
	dsn := filepath.Join(dir, "other.db")
	var stdout, stderr bytes.Buffer

	code := runMain(context.Background(), []string{"-in", in, "-kind", "sqlite", "-dsn", dsn, "-table", "sales_orders"}, &stdout, &stderr, testDeps(filepath.Join(dir, "unused.db")))
	require.Equal(t, cli.ExitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "to sales_orders")

	_, err := os.Stat(dsn)
	assert.NoError(t, err)
}

func TestRunMain_UnknownKind(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(in, []byte(sample), 0o644))
	var stdout, stderr bytes.Buffer

	code := runMain(context.Background(), []string{"-in", in, "-kind", "oracle"}, &stdout, &stderr, testDeps(""))
	assert.Equal(t, cli.ExitUsage, code)
	assert.Contains(t, stderr.String(), "unsupported kind")
}
