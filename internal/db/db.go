// Package db connects to the target databases evolutions are applied to.
package db

import (
	"context"
	"fmt"
	"strings"
)

// Client executes DDL against one database and inspects its tables.
type Client interface {
	// Dialect is the backend adapter name matching the database.
	Dialect() string
	// ExecDDL runs stmts in order inside one transaction where the database
	// allows it.
	ExecDDL(ctx context.Context, stmts []string) error
	// TableColumns lists the columns of table in ordinal order.
	TableColumns(ctx context.Context, table string) ([]Column, error)
	Close(ctx context.Context) error
}

// Column describes a column as the database reports it.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Default  *string
}

// Open connects to the database named by url. The scheme selects the client:
// postgres:// and postgresql:// use pgx, mysql:// takes a go-sql-driver DSN
// after the scheme, and sqlite:// (or a bare path) opens a SQLite file.
func Open(ctx context.Context, url string) (Client, error) {
	dialect, dsn := parseDatabaseURL(url)
	switch dialect {
	case "postgres":
		return NewPostgresClient(ctx, dsn)
	case "mysql":
		return NewMySQLClient(ctx, dsn)
	case "sqlite":
		return NewSQLiteClient(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database url: %s", url)
	}
}

// parseDatabaseURL splits url into a dialect name and the DSN handed to the
// driver.
func parseDatabaseURL(url string) (dialect, dsn string) {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		if url == "" {
			return "", ""
		}
		return "sqlite", url
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return "postgres", url
	case "mysql":
		return "mysql", rest
	case "sqlite", "sqlite3", "file":
		return "sqlite", rest
	default:
		return scheme, url
	}
}

func ddlError(i int, stmt string, err error) error {
	return fmt.Errorf("failed to execute statement %d (%s): %w", i+1, firstLine(stmt), err)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
