// Command cleanse repairs a dirty order table and writes the result.
//
//	cleanse -in rough.csv -out clean.csv [-columns a,b] [-per-cell] [-seed 42]
//
// -columns is the selection that decides which repair steps run and which
// columns are kept; it defaults to every canonical column. The per-step
// report is logged and published to the configured metrics backend.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"ecomdata/internal/catalog"
	"ecomdata/internal/cli"
	"ecomdata/internal/config"
	"ecomdata/internal/faker"
	"ecomdata/internal/logger"
	"ecomdata/internal/metrics"
	"ecomdata/internal/repair"
	"ecomdata/internal/schema"
	"ecomdata/internal/tableio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := runMain(ctx, os.Args[1:], os.Stdout, os.Stderr, cli.DefaultDeps())
	stop()
	os.Exit(code)
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer, deps cli.Deps) int {
	fs := cli.NewFlagSet("cleanse", stderr)
	in := fs.String("in", "", "input file, CSV or JSON by extension (required)")
	out := fs.String("out", "", "output CSV path (required)")
	columns := fs.String("columns", "", "comma-separated selection; empty means all canonical columns")
	perCell := fs.Bool("per-cell", false, "draw a fresh replacement for every offending cell")
	seed := fs.Uint64("seed", 0, "random seed; 0 seeds from the OS")
	if code, ok := cli.Parse(fs, args); !ok {
		return code
	}
	if *in == "" || *out == "" {
		fmt.Fprintln(stderr, "usage: cleanse -in dirty.csv -out clean.csv [-columns a,b] [-per-cell] [-seed S]")
		return cli.ExitUsage
	}

	return cli.Execute(ctx, "cleanse", stderr, deps, func(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
		selected := cli.SplitList(*columns)
		if len(selected) == 0 {
			selected = schema.CanonicalOrder()
		}
		opts := repair.Options{Policy: repair.PolicyShared}
		if *perCell {
			opts.Policy = repair.PolicyPerCell
		}
		s := cfg.Seed
		if cli.IsSet(fs, "seed") {
			s = *seed
		}
		fk := faker.New(s)
		ctx = log.WithFields(ctx, map[string]any{"in": *in, "policy": opts.Policy.String(), "seed": fk.Seed()})

		started := time.Now()
		t, err := tableio.Load(*in)
		metrics.ObserveStep("cleanse.load", started, err)
		if err != nil {
			return err
		}
		metrics.AddRows("loaded", t.Len())

		started = time.Now()
		cleaned, rep := repair.New(catalog.Default(), fk, opts).Repair(t, selected)
		metrics.ObserveStep("cleanse.repair", started, nil)
		for _, st := range rep.Steps {
			metrics.AddRepairedCells(st.Step, st.Cells)
			if st.Applied {
				log.Info(log.WithFields(log.WithStep(ctx, st.Step), map[string]any{
					"mode":  string(st.Mode),
					"cells": st.Cells,
				}), "repair step applied")
			}
		}
		metrics.AddRows("repaired", rep.Rows)

		started = time.Now()
		err = tableio.Save(cleaned, *out)
		metrics.ObserveStep("cleanse.save", started, err)
		if err != nil {
			return err
		}
		log.Info(log.WithField(ctx, "cells", rep.Cells()), "table cleansed")
		fmt.Fprintf(stdout, "repaired %d cells in %d rows; wrote %d columns to %s\n",
			rep.Cells(), rep.Rows, len(rep.Columns), *out)
		return nil
	})
}
