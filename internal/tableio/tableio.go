// Package tableio loads and persists order tables as comma-separated text
// and provides the whole-table utilities around them: merging, duplicate
// detection, column profiling and timestamp parsing. JSON exports can be
// loaded as well.
package tableio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"

	csvparser "ecomdata/internal/parser/csv"
	"ecomdata/internal/schema"
	"ecomdata/internal/table"
)

// Load reads the file at path. Files ending in .json, .ndjson or .jsonl are
// read with ReadJSON, everything else as CSV.
func Load(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	read := Read
	if isJSONPath(path) {
		read = ReadJSON
	}
	t, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// Read parses CSV with a header row from r. Header names are kept as
// written apart from a leading byte-order mark and edge whitespace.
func Read(r io.Reader) (*table.Table, error) {
	var t *table.Table
	err := csvparser.StreamRecords(
		context.Background(),
		r,
		csvparser.DefaultOptions(),
		func(header []string) error {
			t = table.New(header)
			return nil
		},
		func(line int, vals []any) error {
			t.Append(line, vals...)
			return nil
		},
		nil,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Save writes t to path, replacing any existing file.
func Save(t *table.Table, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	if err := Write(f, t); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Write writes t as CSV with a header row, in the column order chosen by
// Order.
func Write(w io.Writer, t *table.Table) error {
	t = Order(t)

	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	rec := make([]string, t.Width())
	for _, row := range t.Rows() {
		for i, v := range row.V {
			rec[i] = FormatCell(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Order returns t projected onto the canonical column order when t has every
// canonical column. Otherwise t is returned unchanged.
func Order(t *table.Table) *table.Table {
	canonical := schema.CanonicalOrder()
	if !t.HasAll(canonical) {
		return t
	}
	return t.Project(canonical)
}
