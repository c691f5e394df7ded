// Package sqlite is the SQLite storage backend (modernc.org/sqlite, no cgo).
//
// SQLite has no timestamp type, so timestamps are stored as TEXT in
// schema.TimestampLayout, which strftime understands. Decimals are REAL.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ecomdata/internal/schema"
	"ecomdata/internal/storage"
)

// maxParams stays under SQLITE_MAX_VARIABLE_NUMBER for every build we use.
const maxParams = 32000

// Repo implements storage.Repository for SQLite.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

// New opens cfg.DSN. ":memory:" gives a private in-memory database; the pool
// is limited to one connection so every statement sees the same database.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	return Open(ctx, cfg.DSN)
}

// Open is New with a concrete return type.
func Open(ctx context.Context, dsn string) (*Repo, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() error { return r.db.Close() }

// EnsureTable runs CREATE TABLE IF NOT EXISTS.
func (r *Repo) EnsureTable(ctx context.Context, spec storage.TableSpec) error {
	ddl, err := buildCreateTableSQL(spec)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", spec.Name, err)
	}
	return nil
}

// InsertRows writes rows in multi-row INSERT batches inside one transaction.
func (r *Repo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	batch := storage.BatchRows(len(columns), maxParams)
	for start := 0; start < len(rows); start += batch {
		end := min(start+batch, len(rows))
		q, args, err := buildInsertSQL(table, columns, rows[start:end])
		if err != nil {
			return total, err
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return total, err
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

// Query runs q and materializes the result.
func (r *Repo) Query(ctx context.Context, q string, args ...any) (*storage.Result, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return storage.ScanRows(rows)
}

func sqlIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func sqlType(k schema.Kind) string {
	switch k {
	case schema.KindInteger:
		return "INTEGER"
	case schema.KindDecimal:
		return "REAL"
	default:
		return "TEXT"
	}
}

func buildCreateTableSQL(spec storage.TableSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(spec.Columns))
	for _, c := range spec.Columns {
		parts = append(parts, fmt.Sprintf("%s %s", sqlIdent(c.Name), sqlType(c.Kind)))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", sqlIdent(spec.Name), strings.Join(parts, ",\n  ")), nil
}

func buildInsertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("sqlite: insert into %s without columns", table)
	}

	colList := make([]string, len(columns))
	for i, c := range columns {
		colList[i] = sqlIdent(c)
	}
	placeholders := "(" + strings.TrimRight(strings.Repeat("?,", len(columns)), ",") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	b.WriteString(strings.Join(colList, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("sqlite: row %d has %d values, want %d", i, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholders)
		for _, v := range row {
			args = append(args, bindValue(v))
		}
	}
	return b.String(), args, nil
}

// bindValue stores timestamps as text so strftime and lexical ordering work.
func bindValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(schema.TimestampLayout)
	}
	return v
}
