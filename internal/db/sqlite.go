package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

func (c *SQLiteClient) Dialect() string { return "sqlite" }

func (c *SQLiteClient) ExecDDL(ctx context.Context, stmts []string) error {
	return execInTx(ctx, c.db, stmts)
}

// TableColumns reads the columns of table through pragma_table_info.
func (c *SQLiteClient) TableColumns(ctx context.Context, table string) ([]Column, error) {
	query := `SELECT name, type, "notnull" = 0, dflt_value FROM pragma_table_info(?) ORDER BY cid`
	columns, err := queryColumns(ctx, c.db, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	return columns, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close(context.Context) error {
	return c.db.Close()
}
