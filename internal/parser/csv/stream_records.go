// Package csv streams delimited text into positional records aligned to the
// file's header.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Options controls how records are read.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// TrimSpace trims leading/trailing whitespace of header names and cells.
	TrimSpace bool

	// LazyQuotes relaxes quote handling (see encoding/csv).
	LazyQuotes bool

	// NullTokens are cell spellings read as missing values. The empty cell is
	// always missing.
	NullTokens []string
}

// DefaultNullTokens are the missing-value spellings common in exported
// spreadsheets and dataframe dumps.
var DefaultNullTokens = []string{
	"NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan",
	"null", "NULL", "None", "<NA>", "#N/A",
}

// DefaultOptions returns comma-delimited, trimmed reading with DefaultNullTokens.
func DefaultOptions() Options {
	return Options{Comma: ',', TrimSpace: true, NullTokens: DefaultNullTokens}
}

// ErrNoHeader is returned for input without a header record.
var ErrNoHeader = errors.New("csv: missing header")

// StreamRecords reads the header, hands it to onHeader, then calls emit for
// every record with cells aligned to the header. Missing cells are nil and
// fields beyond the header width are ignored. vals is reused between calls,
// so emit must copy what it keeps.
//
// When onErr is nil the first malformed record aborts the stream with its
// error. Otherwise the error is reported with its line and the record is
// skipped.
func StreamRecords(
	ctx context.Context,
	src io.Reader,
	opt Options,
	onHeader func(header []string) error,
	emit func(line int, vals []any) error,
	onErr func(line int, err error),
) error {
	comma := opt.Comma
	if comma == 0 {
		comma = ','
	}

	cr := csv.NewReader(src)
	cr.Comma = comma
	cr.ReuseRecord = true
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1

	nulls := make(map[string]struct{}, len(opt.NullTokens))
	for _, tok := range opt.NullTokens {
		nulls[tok] = struct{}{}
	}

	var line int
	readRec := func() ([]string, error) {
		line++
		return cr.Read()
	}

	hdr, err := readRec()
	if err == io.EOF {
		return ErrNoHeader
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	header := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		if opt.TrimSpace && HasEdgeSpace(h) {
			h = strings.TrimSpace(h)
		}
		header[i] = h
	}
	if err := onHeader(header); err != nil {
		return err
	}

	vals := make([]any, len(header))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := readRec()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if onErr == nil {
				return fmt.Errorf("csv read line %d: %w", line, err)
			}
			onErr(line, fmt.Errorf("csv read: %w", err))
			continue
		}

		for i := range vals {
			if i >= len(rec) {
				vals[i] = nil
				continue
			}
			v := rec[i]
			if opt.TrimSpace && HasEdgeSpace(v) {
				v = strings.TrimSpace(v)
			}
			if _, null := nulls[v]; v == "" || null {
				vals[i] = nil
			} else {
				vals[i] = v
			}
		}

		if err := emit(line, vals); err != nil {
			return err
		}
	}
}

// HasEdgeSpace reports whether s starts or ends with ASCII whitespace, so
// callers can skip strings.TrimSpace allocations on the common path.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
