// Package storage defines the backend-agnostic repository used to persist
// order tables and run queries against them. Backends register themselves
// from init(); import ecomdata/internal/storage/all to get every backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnsupportedKind is returned by New for an unregistered backend kind.
var ErrUnsupportedKind = errors.New("storage: unsupported kind")

// Config selects and configures a backend.
//
// DSN is passed through to the backend; validation is backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Repository is the set of operations the CLIs and the analytics engine need.
// Each backend implements them in its own idiom (COPY for Postgres,
// multi-row INSERT for SQLite and SQL Server).
type Repository interface {
	// EnsureTable creates the table if it does not exist yet.
	EnsureTable(ctx context.Context, spec TableSpec) error

	// InsertRows appends rows to table. Every row must have len(columns)
	// values already converted with DBValue.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Query runs a read-only statement and materializes the result.
	Query(ctx context.Context, query string, args ...any) (*Result, error)

	Close() error
}

// Result is a materialized query result.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Factory opens a repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. It panics on an empty kind,
// a nil factory or a duplicate registration.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New opens a repository with the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind: %w", ErrUnsupportedKind)
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: kind=%q: %w", cfg.Kind, ErrUnsupportedKind)
	}
	return f(ctx, cfg)
}

// Kinds lists the registered backend kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
