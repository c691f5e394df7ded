// Command generate writes a synthetic, self-consistent order table to CSV.
//
//	generate -rows 1000 -out orders.csv [-columns Order_Id,Price] [-seed 42]
//
// An empty -columns selects every canonical column. -seed 0 (the default
// unless ECOMDATA_SEED is set) seeds from the operating system.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"ecomdata/internal/catalog"
	"ecomdata/internal/cli"
	"ecomdata/internal/config"
	"ecomdata/internal/faker"
	"ecomdata/internal/generator"
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
	fs := cli.NewFlagSet("generate", stderr)
	rows := fs.Int("rows", 0, "number of rows to generate (required)")
	columns := fs.String("columns", "", "comma-separated columns; empty means all canonical columns")
	out := fs.String("out", "", "output CSV path (required)")
	seed := fs.Uint64("seed", 0, "random seed; 0 seeds from the OS")
	if code, ok := cli.Parse(fs, args); !ok {
		return code
	}
	if *rows <= 0 || *out == "" {
		fmt.Fprintln(stderr, "usage: generate -rows N -out file.csv [-columns a,b] [-seed S]")
		return cli.ExitUsage
	}

	return cli.Execute(ctx, "generate", stderr, deps, func(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
		s := cfg.Seed
		if cli.IsSet(fs, "seed") {
			s = *seed
		}
		fk := faker.New(s)
		ctx = log.WithFields(ctx, map[string]any{"rows": *rows, "seed": fk.Seed(), "out": *out})

		g := generator.New(catalog.Default(), fk,
			generator.WithClock(deps.Now),
			generator.WithMaxRows(cfg.MaxRows))

		started := time.Now()
		t, err := g.Generate(*rows, cli.SplitList(*columns))
		metrics.ObserveStep("generate.rows", started, err)
		if errors.Is(err, generator.ErrInvalidRowCount) || errors.Is(err, generator.ErrUnknownColumn) {
			return cli.Usagef("%v", err)
		}
		if err != nil {
			return err
		}

		if err := tableio.Save(t, *out); err != nil {
			return err
		}
		metrics.AddRows("generated", t.Len())
		log.Info(ctx, "table generated")
		fmt.Fprintf(stdout, "wrote %d rows x %d columns to %s\n", t.Len(), t.Width(), *out)
		return nil
	})
}
