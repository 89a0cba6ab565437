package db

import (
	"context"
	"database/sql"
	"fmt"
)

// execInTx runs stmts on db inside one transaction.
func execInTx(ctx context.Context, db *sql.DB, stmts []string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return ddlError(i, stmt, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// queryColumns scans rows of (name, type, nullable, default).
func queryColumns(ctx context.Context, db *sql.DB, query string, args ...any) ([]Column, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var (
			col      Column
			fallback sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable, &fallback); err != nil {
			return nil, err
		}
		if fallback.Valid {
			col.Default = &fallback.String
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}
