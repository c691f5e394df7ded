// Package mssql is the Microsoft SQL Server storage backend
// (database/sql with github.com/microsoft/go-mssqldb).
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"ecomdata/internal/schema"
	"ecomdata/internal/storage"
)

// SQL Server accepts at most 2100 parameters per request.
const maxParams = 2000

func init() {
	storage.Register("mssql", New)
}

// Repo implements storage.Repository for SQL Server.
type Repo struct {
	db *sql.DB
}

// New opens cfg.DSN with the "sqlserver" driver and pings it.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

// Close releases the connection pool.
func (r *Repo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// EnsureTable creates the table unless OBJECT_ID already finds it.
func (r *Repo) EnsureTable(ctx context.Context, spec storage.TableSpec) error {
	ddl, err := buildCreateSQL(spec)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", spec.Name, err)
	}
	return nil
}

// InsertRows writes rows in batched multi-row INSERTs inside a transaction.
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
	// A VALUES list is limited to 1000 row constructors.
	batch := min(storage.BatchRows(len(columns), maxParams), 1000)
	for start := 0; start < len(rows); start += batch {
		end := min(start+batch, len(rows))
		q, args, err := buildBulkInsertSQL(table, columns, rows[start:end])
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

// Query runs q and materializes the result. Use @p1.. placeholders.
func (r *Repo) Query(ctx context.Context, q string, args ...any) (*storage.Result, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return storage.ScanRows(rows)
}

func sqlType(k schema.Kind) string {
	switch k {
	case schema.KindIdentifier:
		return "NVARCHAR(64)"
	case schema.KindInteger:
		return "BIGINT"
	case schema.KindDecimal:
		return "DECIMAL(12,2)"
	case schema.KindTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(4000)"
	}
}

// buildCreateSQL wraps CREATE TABLE in an OBJECT_ID guard since SQL Server
// has no CREATE TABLE IF NOT EXISTS.
func buildCreateSQL(spec storage.TableSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}
	defs := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		defs[i] = mssqlIdent(c.Name) + " " + sqlType(c.Kind) + " NULL"
	}
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN CREATE TABLE %s (%s); END;",
		strings.ReplaceAll(spec.Name, "'", "''"),
		mssqlTableIdent(spec.Name),
		strings.Join(defs, ", "),
	), nil
}

// buildBulkInsertSQL builds a single INSERT ... VALUES statement for rows.
func buildBulkInsertSQL(table string, columns []string, rows [][]any) (string, []any, error) {
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("mssql: insert into %s without columns", table)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(mssqlTableIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(mssqlIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	p := 1
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mssql: row %d has %d values, want %d", i, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "@p%d", p)
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}
	return b.String(), args, nil
}

// mssqlIdent returns a bracket-quoted identifier, escaping ']' as ']]'.
func mssqlIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// mssqlTableIdent quotes each part of a possibly schema-qualified name:
// "dbo.orders" -> [dbo].[orders].
func mssqlTableIdent(name string) string {
	parts := strings.Split(name, ".")
	for i := range parts {
		parts[i] = mssqlIdent(strings.TrimSpace(parts[i]))
	}
	return strings.Join(parts, ".")
}
