package tableio

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"

	jsonparser "ecomdata/internal/parser/json"
	"ecomdata/internal/table"
)

// isJSONPath reports whether Load should read path as JSON.
func isJSONPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".ndjson", ".jsonl":
		return true
	}
	return false
}

// ReadJSON reads order records from a JSON export (see package
// ecomdata/internal/parser/json for the accepted layouts). Columns appear in
// the order keys are first seen; new keys of one record are added in sorted
// order. Keys are trimmed; distinct keys that trim to the same name get
// their own columns with a ".N" suffix, the exact spelling first. Cells are
// text like the CSV reader's, with null and blank values missing.
func ReadJSON(r io.Reader) (*table.Table, error) {
	t := table.New(nil)
	cols := map[string]int{}
	err := jsonparser.StreamRecords(context.Background(), r, func(n int, obj map[string]any) error {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, b := strings.TrimSpace(keys[i]), strings.TrimSpace(keys[j])
			if a != b {
				return a < b
			}
			if (a == keys[i]) != (b == keys[j]) {
				return a == keys[i]
			}
			return keys[i] < keys[j]
		})

		row := t.Append(n)
		for _, k := range keys {
			ci, ok := cols[k]
			if !ok {
				ci = t.AddColumn(strings.TrimSpace(k))
				cols[k] = ci
			}
			row.V[ci] = jsonparser.Cell(obj[k])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
