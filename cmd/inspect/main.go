// Command inspect prints the shape of an order file: row and column
// counts, the inferred type and null count of every column, and the number
// of duplicate rows.
//
//	inspect -in orders.csv [-dates]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"ecomdata/internal/cli"
	"ecomdata/internal/config"
	"ecomdata/internal/logger"
	"ecomdata/internal/metrics"
	"ecomdata/internal/schema"
	"ecomdata/internal/tableio"
)

func main() {
	os.Exit(runMain(context.Background(), os.Args[1:], os.Stdout, os.Stderr, cli.DefaultDeps()))
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer, deps cli.Deps) int {
	fs := cli.NewFlagSet("inspect", stderr)
	in := fs.String("in", "", "input file, CSV or JSON by extension (required)")
	dates := fs.Bool("dates", false, "parse the order timestamp column before profiling")
	if code, ok := cli.Parse(fs, args); !ok {
		return code
	}
	if *in == "" {
		fmt.Fprintln(stderr, "usage: inspect -in file.csv [-dates]")
		return cli.ExitUsage
	}

	return cli.Execute(ctx, "inspect", stderr, deps, func(ctx context.Context, _ *config.Config, log *logger.Logger) error {
		t, err := tableio.Load(*in)
		if err != nil {
			return err
		}
		metrics.AddRows("loaded", t.Len())

		nulled, parsed := 0, false
		if *dates {
			nulled, parsed = tableio.ParseDates(t, schema.OrderedAt)
			if !parsed {
				log.Warn(ctx, "no "+schema.OrderedAt+" column to parse")
			}
		}

		info := tableio.Describe(t)
		fmt.Fprintf(stdout, "rows: %d\ncolumns: %d\nduplicates: %d\n", info.Rows, len(info.Columns), info.Duplicates)
		if parsed {
			fmt.Fprintf(stdout, "unparseable timestamps: %d\n", nulled)
		}
		fmt.Fprintln(stdout)

		tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "COLUMN\tTYPE\tNON-NULL\tNULL\tDISTINCT")
		for _, c := range info.Columns {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", c.Name, c.Type, c.NonNull, c.Nulls, c.Distinct)
		}
		return tw.Flush()
	})
}
