// Package json streams order records out of JSON exports.
//
// Accepted layouts:
//   - a root array of objects: [{...}, {...}]
//   - an envelope: {"orders": [{...}, ...], "next": ...}; the first field
//     holding an array of objects is streamed and the other fields are
//     skipped
//   - a single object: {...}
//   - newline-delimited objects, alone or after any of the above
package json

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ArraySeparator joins arrays of scalars into one cell.
const ArraySeparator = ","

// StreamRecords decodes r and calls emit for every record object with its
// 1-based record number. Numbers are kept as json.Number.
func StreamRecords(ctx context.Context, r io.Reader, emit func(n int, obj map[string]any) error) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	n := 0
	next := func(obj map[string]any) error {
		n++
		return emit(n, obj)
	}

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("json: read first token: %w", err)
	}

	switch tok {
	case json.Delim('['):
		if err := streamArray(ctx, dec, next); err != nil {
			return err
		}
		if err := expect(dec, json.Delim(']')); err != nil {
			return err
		}
	case json.Delim('{'):
		streamed, single, err := streamEnvelope(ctx, dec, next)
		if err != nil {
			return err
		}
		if err := expect(dec, json.Delim('}')); err != nil {
			return err
		}
		if !streamed {
			if err := next(single); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("json: unsupported root token %v (want object or array)", tok)
	}
	return streamTrailing(ctx, dec, next)
}

func expect(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("json: read %q: %w", want, err)
	}
	if tok != want {
		return fmt.Errorf("json: expected %q, got %v", want, tok)
	}
	return nil
}

func streamTrailing(ctx context.Context, dec *json.Decoder, emit func(map[string]any) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var obj map[string]any
		err := dec.Decode(&obj)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("json: decode trailing object: %w", err)
		}
		if obj == nil {
			continue
		}
		if err := emit(obj); err != nil {
			return err
		}
	}
}

// streamArray emits the elements of the array whose '[' was just consumed.
// null elements are skipped; anything else that is not an object fails.
func streamArray(ctx context.Context, dec *json.Decoder, emit func(map[string]any) error) error {
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("json: decode array element: %w", err)
		}
		if raw == nil {
			continue
		}
		obj, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("json: array element is %T, want object", raw)
		}
		if err := emit(obj); err != nil {
			return err
		}
	}
	return nil
}

// streamEnvelope walks the root object whose '{' was just consumed. The first
// field holding an array of objects is streamed as the record list and the
// remaining fields are skipped. Arrays of anything else stay plain fields.
// Without a record list the object itself is returned as a single record,
// except that an object holding nothing but an empty array has no records.
func streamEnvelope(ctx context.Context, dec *json.Decoder, emit func(map[string]any) error) (bool, map[string]any, error) {
	single := map[string]any{}
	sawEmpty := false
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return false, nil, fmt.Errorf("json: read key: %w", err)
		}
		key, _ := keyTok.(string)

		first, err := dec.Token()
		if err != nil {
			return false, nil, fmt.Errorf("json: read value of %q: %w", key, err)
		}
		if first != json.Delim('[') {
			v, err := materialize(dec, first)
			if err != nil {
				return false, nil, fmt.Errorf("json: value of %q: %w", key, err)
			}
			single[key] = v
			continue
		}

		head, nulls, err := arrayHead(dec)
		if err != nil {
			return false, nil, fmt.Errorf("json: value of %q: %w", key, err)
		}
		switch {
		case head == nil:
			sawEmpty = true
			single[key] = make([]any, nulls)
			continue
		case head != json.Delim('{'):
			v, err := materialize(dec, head)
			if err != nil {
				return false, nil, fmt.Errorf("json: value of %q: %w", key, err)
			}
			rest, err := materialize(dec, json.Delim('['))
			if err != nil {
				return false, nil, fmt.Errorf("json: value of %q: %w", key, err)
			}
			arr := append(make([]any, nulls, nulls+1), v)
			single[key] = append(arr, rest.([]any)...)
			continue
		}

		obj, err := materialize(dec, head)
		if err != nil {
			return false, nil, fmt.Errorf("json: record of %q: %w", key, err)
		}
		if err := emit(obj.(map[string]any)); err != nil {
			return true, nil, err
		}
		if err := streamArray(ctx, dec, emit); err != nil {
			return true, nil, err
		}
		if err := expect(dec, json.Delim(']')); err != nil {
			return true, nil, err
		}
		for dec.More() {
			if _, err := dec.Token(); err != nil {
				return true, nil, fmt.Errorf("json: skip key: %w", err)
			}
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return true, nil, fmt.Errorf("json: skip value: %w", err)
			}
		}
		return true, nil, nil
	}
	if sawEmpty && len(single) == 1 {
		return true, nil, nil
	}
	return false, single, nil
}

// arrayHead skips leading null elements of the array whose '[' was just
// consumed and returns the first token of the first other element. For an
// array of nulls only, the closing ']' is consumed and head is nil.
func arrayHead(dec *json.Decoder) (head json.Token, nulls int, err error) {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nulls, err
		}
		if tok != nil {
			return tok, nulls, nil
		}
		nulls++
	}
	return nil, nulls, expect(dec, json.Delim(']'))
}

// materialize builds the value whose first token has already been read.
func materialize(dec *json.Decoder, tok json.Token) (any, error) {
	switch tok {
	case json.Delim('{'):
		m := map[string]any{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			vt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			v, err := materialize(dec, vt)
			if err != nil {
				return nil, err
			}
			k, _ := kt.(string)
			m[k] = v
		}
		return m, expect(dec, json.Delim('}'))
	case json.Delim('['):
		var arr []any
		for dec.More() {
			vt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			v, err := materialize(dec, vt)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, expect(dec, json.Delim(']'))
	}
	return tok, nil
}

// Cell turns a decoded JSON value into a table cell: text for scalars,
// joined text for arrays of scalars, compact JSON for anything nested.
// null and empty strings are missing.
func Cell(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil
		}
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			c := Cell(it)
			if c == nil {
				continue
			}
			s, ok := c.(string)
			if !ok {
				return compact(v)
			}
			if _, nested := it.(map[string]any); nested {
				return compact(v)
			}
			parts = append(parts, s)
		}
		if len(parts) == 0 {
			return nil
		}
		return strings.Join(parts, ArraySeparator)
	default:
		return compact(v)
	}
}

func compact(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
