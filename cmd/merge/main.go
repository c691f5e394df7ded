// Command merge appends one order file to another.
//
//	merge -a first.csv -b second.csv -out final.csv [-dupes]
//
// Rows of -b come first, followed by rows of -a; the column set is the
// union of both. The number of repeated rows is always reported; -dupes
// drops them before saving.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"ecomdata/internal/cli"
	"ecomdata/internal/config"
	"ecomdata/internal/logger"
	"ecomdata/internal/metrics"
	"ecomdata/internal/tableio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := runMain(ctx, os.Args[1:], os.Stdout, os.Stderr, cli.DefaultDeps())
	stop()
	os.Exit(code)
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer, deps cli.Deps) int {
	fs := cli.NewFlagSet("merge", stderr)
	a := fs.String("a", "", "first input file (required)")
	b := fs.String("b", "", "second input file; its rows come first (required)")
	out := fs.String("out", "", "output CSV path (required)")
	dupes := fs.Bool("dupes", false, "drop repeated rows before saving")
	if code, ok := cli.Parse(fs, args); !ok {
		return code
	}
	if *a == "" || *b == "" || *out == "" {
		fmt.Fprintln(stderr, "usage: merge -a f1.csv -b f2.csv -out final.csv [-dupes]")
		return cli.ExitUsage
	}

	return cli.Execute(ctx, "merge", stderr, deps, func(ctx context.Context, _ *config.Config, log *logger.Logger) error {
		ta, err := tableio.Load(*a)
		if err != nil {
			return err
		}
		tb, err := tableio.Load(*b)
		if err != nil {
			return err
		}
		metrics.AddRows("loaded", ta.Len()+tb.Len())

		merged := tableio.Merge(ta, tb)
		repeated := tableio.CountDuplicates(merged)
		if *dupes && repeated > 0 {
			merged = tableio.DropDuplicates(merged)
		}
		if err := tableio.Save(merged, *out); err != nil {
			return err
		}
		metrics.AddRows("merged", merged.Len())

		log.Info(log.WithFields(ctx, map[string]any{
			"rows":       merged.Len(),
			"duplicates": repeated,
			"dropped":    *dupes,
		}), "tables merged")
		fmt.Fprintf(stdout, "wrote %d rows to %s (%d duplicate rows", merged.Len(), *out, repeated)
		if *dupes {
			fmt.Fprint(stdout, " dropped")
		}
		fmt.Fprintln(stdout, ")")
		return nil
	})
}
