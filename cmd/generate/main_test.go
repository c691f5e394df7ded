package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdata/internal/cli"
	"ecomdata/internal/config"
	"ecomdata/internal/schema"
	"ecomdata/internal/tableio"
)

func testDeps(cfg *config.Config) cli.Deps {
	return cli.Deps{
		LoadConfig:  func() (*config.Config, error) { return cfg, nil },
		InitMetrics: func(context.Context, *config.Config) (func() error, error) { return func() error { return nil }, nil },
		Now:         func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func testConfig() *config.Config {
	return &config.Config{LogLevel: "error", LogFormat: "json", MaxRows: 1000}
}

func TestRunMain_WritesCanonicalTable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "orders.csv")
	var stdout, stderr bytes.Buffer

	code := runMain(context.Background(), []string{"-rows", "25", "-out", out, "-seed", "7"}, &stdout, &stderr, testDeps(testConfig()))
	require.Equal(t, cli.ExitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "wrote 25 rows x 16 columns")

	got, err := tableio.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Len())
	assert.Equal(t, schema.CanonicalOrder(), got.Columns())
}

func TestRunMain_SameSeedSameFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.csv"} {
		var stdout, stderr bytes.Buffer
		code := runMain(context.Background(), []string{"-rows", "10", "-out", filepath.Join(dir, name), "-seed", "99"}, &stdout, &stderr, testDeps(testConfig()))
		require.Equal(t, cli.ExitOK, code, stderr.String())
	}
	a, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "b.csv"))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRunMain_Selection(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ids.csv")
	var stdout, stderr bytes.Buffer

	code := runMain(context.Background(), []string{"-rows", "3", "-out", out, "-columns", "Price,Order_Id"}, &stdout, &stderr, testDeps(testConfig()))
	require.Equal(t, cli.ExitOK, code, stderr.String())

	got, err := tableio.Load(out)
	require.NoError(t, err)
	assert.Equal(t, []string{schema.Price, schema.OrderID}, got.Columns())
}

func TestRunMain_UsageErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
	}{
		{"no_args", nil},
		{"missing_out", []string{"-rows", "5"}},
		{"bad_flag", []string{"-rows", "5", "-out", filepath.Join(dir, "x.csv"), "-nope"}},
		{"over_max_rows", []string{"-rows", "5000", "-out", filepath.Join(dir, "x.csv")}},
		{"unknown_column", []string{"-rows", "5", "-out", filepath.Join(dir, "x.csv"), "-columns", "Nope"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := runMain(context.Background(), tc.args, &stdout, &stderr, testDeps(testConfig()))
			assert.Equal(t, cli.ExitUsage, code)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunMain_ConfigError(t *testing.T) {
	deps := testDeps(nil)
	deps.LoadConfig = func() (*config.Config, error) { return nil, errors.New("bad env") }
	var stdout, stderr bytes.Buffer

	code := runMain(context.Background(), []string{"-rows", "1", "-out", filepath.Join(t.TempDir(), "x.csv")}, &stdout, &stderr, deps)
	assert.Equal(t, cli.ExitFailure, code)
	assert.Contains(t, stderr.String(), "bad env")
}
