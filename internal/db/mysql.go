package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db}, nil
}

func (c *MySQLClient) Dialect() string { return "mysql" }

// ExecDDL runs the statements in a transaction. MySQL commits implicitly
// after each DDL statement, so statements before a failing one stay applied.
func (c *MySQLClient) ExecDDL(ctx context.Context, stmts []string) error {
	return execInTx(ctx, c.db, stmts)
}

// TableColumns reads the columns of table in the connected database.
func (c *MySQLClient) TableColumns(ctx context.Context, table string) ([]Column, error) {
	query := `
		SELECT column_name, column_type, is_nullable = 'YES', column_default
		FROM information_schema.columns
		WHERE table_schema = DATABASE() AND table_name = ?
		ORDER BY ordinal_position
	`
	columns, err := queryColumns(ctx, c.db, query, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	return columns, nil
}

// Close closes the database connection
func (c *MySQLClient) Close(context.Context) error {
	return c.db.Close()
}
