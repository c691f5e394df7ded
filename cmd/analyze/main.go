// Command analyze runs the built-in order reports.
//
//	analyze -in orders.csv -report top_locations
//	analyze -in orders.csv -report all -out-dir reports/
//	analyze -list
//
// A single report is written to stdout as CSV. "all" writes one
// <report>.csv per report into -out-dir and skips reports whose columns the
// input lacks.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"ecomdata/internal/analytics"
	"ecomdata/internal/cli"
	"ecomdata/internal/config"
	"ecomdata/internal/logger"
	"ecomdata/internal/metrics"
	"ecomdata/internal/table"
	"ecomdata/internal/tableio"
)

const allReports = "all"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := runMain(ctx, os.Args[1:], os.Stdout, os.Stderr, cli.DefaultDeps())
	stop()
	os.Exit(code)
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer, deps cli.Deps) int {
	fs := cli.NewFlagSet("analyze", stderr)
	in := fs.String("in", "", "input file, CSV or JSON by extension")
	report := fs.String("report", "", "report name, or \"all\"")
	outDir := fs.String("out-dir", "", "directory for -report all")
	list := fs.Bool("list", false, "list the available reports and exit")
	if code, ok := cli.Parse(fs, args); !ok {
		return code
	}
	if *list {
		for _, r := range analytics.Reports() {
			fmt.Fprintf(stdout, "%-26s %s (needs %s)\n", r.Name, r.Title, strings.Join(r.Required, ", "))
		}
		return cli.ExitOK
	}
	if *in == "" || *report == "" || (*report == allReports && *outDir == "") {
		fmt.Fprintln(stderr, "usage: analyze -in file.csv -report name|all [-out-dir dir] [-list]")
		return cli.ExitUsage
	}

	return cli.Execute(ctx, "analyze", stderr, deps, func(ctx context.Context, _ *config.Config, log *logger.Logger) error {
		t, err := tableio.Load(*in)
		if err != nil {
			return err
		}
		metrics.AddRows("loaded", t.Len())

		if *report != allReports {
			out, err := analytics.Run(ctx, t, *report)
			if errors.Is(err, analytics.ErrUnknownReport) {
				return cli.Usagef("%v (see -list)", err)
			}
			if err != nil {
				return err
			}
			return tableio.Write(stdout, out)
		}
		return runAll(ctx, log, t, *outDir, stdout)
	})
}

func runAll(ctx context.Context, log *logger.Logger, t *table.Table, dir string, stdout io.Writer) (err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	e, err := analytics.Open(ctx, t)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, e.Close()) }()

	written := 0
	for _, name := range analytics.Names() {
		out, err := e.Run(ctx, name)
		if errors.Is(err, analytics.ErrMissingColumns) {
			log.Warn(log.WithField(ctx, "report", name), err.Error())
			continue
		}
		if err != nil {
			return err
		}
		path := filepath.Join(dir, name+".csv")
		if err := tableio.Save(out, path); err != nil {
			return err
		}
		written++
		fmt.Fprintf(stdout, "%s: %d rows -> %s\n", name, out.Len(), path)
	}
	if written == 0 {
		return fmt.Errorf("%w: no report could run on %d columns", analytics.ErrMissingColumns, t.Width())
	}
	return nil
}
