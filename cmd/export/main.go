// Command export appends an order file to a database table, creating the
// table on first use.
//
//	export -in clean.csv [-table sales.orders] [-kind sqlite|postgres|mssql] [-dsn DSN]
//
// -kind and -dsn default to ECOMDATA_STORAGE_KIND and ECOMDATA_STORAGE_DSN.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"go.uber.org/multierr"

	"ecomdata/internal/cli"
	"ecomdata/internal/config"
	"ecomdata/internal/logger"
	"ecomdata/internal/metrics"
	"ecomdata/internal/storage"
	_ "ecomdata/internal/storage/all"
	"ecomdata/internal/tableio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := runMain(ctx, os.Args[1:], os.Stdout, os.Stderr, cli.DefaultDeps())
	stop()
	os.Exit(code)
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer, deps cli.Deps) int {
	fs := cli.NewFlagSet("export", stderr)
	in := fs.String("in", "", "input file, CSV or JSON by extension (required)")
	tableName := fs.String("table", "orders", "destination table, optionally schema-qualified")
	kind := fs.String("kind", "", "storage backend; defaults to the configured one")
	dsn := fs.String("dsn", "", "backend DSN; defaults to the configured one")
	if code, ok := cli.Parse(fs, args); !ok {
		return code
	}
	if *in == "" || *tableName == "" {
		fmt.Fprintln(stderr, "usage: export -in file.csv [-table name] [-kind sqlite|postgres|mssql] [-dsn DSN]")
		return cli.ExitUsage
	}

	return cli.Execute(ctx, "export", stderr, deps, func(ctx context.Context, cfg *config.Config, log *logger.Logger) (err error) {
		sc := storage.Config{Kind: cfg.StorageKind, DSN: cfg.StorageDSN}
		if *kind != "" {
			sc.Kind = *kind
		}
		if *dsn != "" {
			sc.DSN = *dsn
		}
		ctx = log.WithFields(ctx, map[string]any{"kind": sc.Kind, "table": *tableName})

		t, err := tableio.Load(*in)
		if err != nil {
			return err
		}
		metrics.AddRows("loaded", t.Len())

		repo, err := storage.New(ctx, sc)
		if errors.Is(err, storage.ErrUnsupportedKind) {
			return cli.Usagef("%v (have %v)", err, storage.Kinds())
		}
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, repo.Close()) }()

		started := time.Now()
		n, err := storage.Export(ctx, repo, *tableName, t)
		metrics.ObserveStep("export."+sc.Kind, started, err)
		if err != nil {
			return err
		}
		metrics.AddRows("exported", int(n))
		log.Info(log.WithField(ctx, "rows", n), "table exported")
		fmt.Fprintf(stdout, "exported %d rows to %s (%s)\n", n, *tableName, sc.Kind)
		return nil
	})
}
