// Package analytics runs the fixed set of order reports. A table is copied
// into a private in-memory SQLite database and each report is a single
// query over it; there is no way to run caller-supplied queries.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"ecomdata/internal/metrics"
	"ecomdata/internal/storage"
	"ecomdata/internal/storage/sqlite"
	"ecomdata/internal/table"
)

var (
	ErrUnknownReport  = errors.New("analytics: unknown report")
	ErrMissingColumns = errors.New("analytics: missing columns")
)

const tableName = "orders"

// Info describes one report.
type Info struct {
	Name     string
	Title    string
	Required []string
}

// Reports lists the available reports in a stable order.
func Reports() []Info {
	out := make([]Info, len(reports))
	for i, r := range reports {
		out[i] = Info{Name: r.name, Title: r.title, Required: append([]string(nil), r.required...)}
	}
	return out
}

// Names lists the report names.
func Names() []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.name
	}
	return out
}

// Engine holds one loaded table. It is not safe for concurrent use.
type Engine struct {
	repo storage.Repository
	cols *table.Table // header only, used for column checks
}

// Open loads t into a fresh in-memory database. Only columns some report
// reads are copied.
func Open(ctx context.Context, t *table.Table) (*Engine, error) {
	repo, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("analytics: open database: %w", err)
	}
	e, err := load(ctx, repo, t)
	if err != nil {
		return nil, multierr.Append(err, repo.Close())
	}
	return e, nil
}

func load(ctx context.Context, repo storage.Repository, t *table.Table) (*Engine, error) {
	var wanted []string
	for _, r := range reports {
		wanted = append(wanted, r.required...)
	}
	data := t.Project(wanted)
	if data.Width() == 0 {
		return nil, fmt.Errorf("%w: table has none of the report columns", ErrMissingColumns)
	}
	if _, err := storage.Export(ctx, repo, tableName, data); err != nil {
		return nil, fmt.Errorf("analytics: load: %w", err)
	}
	return &Engine{repo: repo, cols: table.New(data.Columns())}, nil
}

// Close releases the database.
func (e *Engine) Close() error { return e.repo.Close() }

// Run executes the named report.
func (e *Engine) Run(ctx context.Context, name string) (_ *table.Table, err error) {
	r, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	if missing := missingColumns(e.cols, r.required); len(missing) > 0 {
		return nil, fmt.Errorf("%w: report %s needs %v", ErrMissingColumns, name, missing)
	}

	started := time.Now()
	defer func() { metrics.ObserveStep("analytics."+name, started, err) }()

	res, err := e.repo.Query(ctx, r.query)
	if err != nil {
		return nil, fmt.Errorf("analytics: %s: %w", name, err)
	}
	out := table.New(res.Columns)
	for i, row := range res.Rows {
		out.Append(i+1, row...)
	}
	return out, nil
}

// Run loads t and executes a single report.
func Run(ctx context.Context, t *table.Table, name string) (_ *table.Table, err error) {
	if _, ok := lookup(name); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	e, err := Open(ctx, t)
	if err != nil {
		return nil, err
	}
	defer func() { err = multierr.Append(err, e.Close()) }()
	return e.Run(ctx, name)
}

func missingColumns(t *table.Table, cols []string) []string {
	var out []string
	for _, c := range cols {
		if !t.Has(c) {
			out = append(out, c)
		}
	}
	return out
}
