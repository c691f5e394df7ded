// Command roughgen writes an order table with deliberately corrupted cells,
// the kind of input cleanse is meant to repair.
//
//	roughgen -rows 1000 -out rough.csv [-dirt 0.1] [-columns ...] [-seed 42]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

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
	fs := cli.NewFlagSet("roughgen", stderr)
	rows := fs.Int("rows", 0, "number of rows to generate (required)")
	columns := fs.String("columns", "", "comma-separated columns; empty means all canonical columns")
	out := fs.String("out", "", "output CSV path (required)")
	dirt := fs.Float64("dirt", generator.DefaultDirtRatio, "probability that a cell is corrupted, in [0,1]")
	seed := fs.Uint64("seed", 0, "random seed; 0 seeds from the OS")
	if code, ok := cli.Parse(fs, args); !ok {
		return code
	}
	if *rows <= 0 || *out == "" || *dirt < 0 || *dirt > 1 {
		fmt.Fprintln(stderr, "usage: roughgen -rows N -out file.csv [-dirt 0..1] [-columns a,b] [-seed S]")
		return cli.ExitUsage
	}

	return cli.Execute(ctx, "roughgen", stderr, deps, func(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
		s := cfg.Seed
		if cli.IsSet(fs, "seed") {
			s = *seed
		}
		fk := faker.New(s)
		ctx = log.WithFields(ctx, map[string]any{"rows": *rows, "dirt": *dirt, "seed": fk.Seed()})

		g := generator.New(catalog.Default(), fk,
			generator.WithClock(deps.Now),
			generator.WithMaxRows(cfg.MaxRows))
		t, err := g.GenerateRough(*rows, cli.SplitList(*columns), *dirt)
		if errors.Is(err, generator.ErrInvalidRowCount) || errors.Is(err, generator.ErrUnknownColumn) {
			return cli.Usagef("%v", err)
		}
		if err != nil {
			return err
		}
		if err := tableio.Save(t, *out); err != nil {
			return err
		}
		metrics.AddRows("rough", t.Len())
		log.Info(ctx, "rough table generated")
		fmt.Fprintf(stdout, "wrote %d rows x %d columns to %s\n", t.Len(), t.Width(), *out)
		return nil
	})
}
