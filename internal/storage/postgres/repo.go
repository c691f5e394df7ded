// Package postgres is the PostgreSQL storage backend built on pgx/v5.
// Inserts go through the COPY protocol.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecomdata/internal/schema"
	"ecomdata/internal/storage"
)

func init() {
	storage.Register("postgres", New)
}

// pool is the subset of *pgxpool.Pool the repository uses.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

// Repo implements storage.Repository for Postgres.
type Repo struct {
	pool pool
}

// New creates a pool for cfg.DSN and checks connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	p, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return &Repo{pool: p}, nil
}

// Close closes the connection pool.
func (r *Repo) Close() error {
	r.pool.Close()
	return nil
}

// EnsureTable creates the schema (for qualified names) and the table.
func (r *Repo) EnsureTable(ctx context.Context, spec storage.TableSpec) error {
	schemaSQL, tableSQL, err := buildCreateSQL(spec)
	if err != nil {
		return err
	}
	if schemaSQL != "" {
		if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema for %s: %w", spec.Name, err)
		}
	}
	if _, err := r.pool.Exec(ctx, tableSQL); err != nil {
		return fmt.Errorf("create table %s: %w", spec.Name, err)
	}
	return nil
}

// InsertRows copies rows into table with COPY FROM STDIN.
func (r *Repo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	return r.pool.CopyFrom(ctx, identifier(table), columns, pgx.CopyFromRows(rows))
}

// Query runs q and materializes the result.
func (r *Repo) Query(ctx context.Context, q string, args ...any) (*storage.Result, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	res := &storage.Result{Columns: make([]string, len(fds))}
	for i, fd := range fds {
		res.Columns[i] = fd.Name
	}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, vals)
	}
	return res, rows.Err()
}

func identifier(name string) pgx.Identifier {
	if s, t := storage.SplitQualified(name); s != "" {
		return pgx.Identifier{s, t}
	}
	return pgx.Identifier{strings.TrimSpace(name)}
}

func pgIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func sqlType(k schema.Kind) string {
	switch k {
	case schema.KindInteger:
		return "bigint"
	case schema.KindDecimal:
		return "numeric(12,2)"
	case schema.KindTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// buildCreateSQL returns an optional CREATE SCHEMA statement and the
// CREATE TABLE statement for spec.
func buildCreateSQL(spec storage.TableSpec) (schemaSQL, tableSQL string, err error) {
	if err := spec.Validate(); err != nil {
		return "", "", err
	}
	if s, _ := storage.SplitQualified(spec.Name); s != "" {
		schemaSQL = "CREATE SCHEMA IF NOT EXISTS " + pgIdent(s) + ";"
	}

	defs := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		defs[i] = pgIdent(c.Name) + " " + sqlType(c.Kind)
	}
	tableSQL = fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		identifier(spec.Name).Sanitize(), strings.Join(defs, ",\n  "))
	return schemaSQL, tableSQL, nil
}
