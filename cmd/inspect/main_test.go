package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomdata/internal/cli"
	"ecomdata/internal/config"
)

func testDeps() cli.Deps {
	cfg := &config.Config{LogLevel: "error", LogFormat: "json", MaxRows: 1000}
	return cli.Deps{
		LoadConfig:  func() (*config.Config, error) { return cfg, nil },
		InitMetrics: func(context.Context, *config.Config) (func() error, error) { return func() error { return nil }, nil },
		Now:         time.Now,
	}
}

const sample = `Order_Id,Quantity_ordered,Date_and_Time_When_Order_Was_Placed,Payment_Failure_Reason
1b4e28ba-2fa1-11d2-883f-0016d3cca427,2,2024-01-02 10:00:00,NA
1b4e28ba-2fa1-11d2-883f-0016d3cca427,2,2024-01-02 10:00:00,NA
InvalidUUID,3,yesterday,Card declined
`

func TestRunMain_Profile(t *testing.T) {
	in := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(in, []byte(sample), 0o644))
	var stdout, stderr bytes.Buffer

	code := runMain(context.Background(), []string{"-in", in, "-dates"}, &stdout, &stderr, testDeps())
	require.Equal(t, cli.ExitOK, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "rows: 3\n")
	assert.Contains(t, out, "columns: 4\n")
	assert.Contains(t, out, "duplicates: 1\n")
	assert.Contains(t, out, "unparseable timestamps: 1\n")

	fields := map[string][]string{}
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) == 5 {
			fields[f[0]] = f[1:]
		}
	}
	assert.Equal(t, []string{"int", "3", "0", "2"}, fields["Quantity_ordered"])
	assert.Equal(t, []string{"datetime", "2", "1", "1"}, fields["Date_and_Time_When_Order_Was_Placed"])
	assert.Equal(t, []string{"string", "1", "2", "1"}, fields["Payment_Failure_Reason"])
	assert.Equal(t, "string", fields["Order_Id"][0])
}

func TestRunMain_RequiresInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, cli.ExitUsage, runMain(context.Background(), nil, &stdout, &stderr, testDeps()))
	assert.Equal(t, cli.ExitFailure, runMain(context.Background(), []string{"-in", filepath.Join(t.TempDir(), "missing.csv")}, &stdout, &stderr, testDeps()))
}
