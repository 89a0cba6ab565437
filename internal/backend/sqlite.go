package backend

import (
	"fmt"

	"github.com/tordrt/schemaevolve/internal/signature"
)

// SQLite renders SQLite DDL. SQLite cannot alter a column in place, so only
// index and uniqueness changes are supported by AlterColumn.
type SQLite struct {
	base
}

// NewSQLite returns the SQLite adapter.
func NewSQLite() *SQLite {
	return &SQLite{base: base{
		name:    "sqlite",
		quote:   func(name string) string { return quoteDoubled(name, `"`) },
		literal: func(v any) string { return standardLiteral(v, "1", "0") },
		columnTypes: map[signature.FieldType]string{
			signature.FieldTypeAutoKey:    "integer",
			signature.FieldTypeBigInteger: "bigint",
			signature.FieldTypeBoolean:    "bool",
			signature.FieldTypeDate:       "date",
			signature.FieldTypeDateTime:   "datetime",
			signature.FieldTypeFloat:      "real",
			signature.FieldTypeForeignKey: "integer",
			signature.FieldTypeInteger:    "integer",
			signature.FieldTypeText:       "text",
			signature.FieldTypeTime:       "time",
		},
		autoKeySuffix:    " AUTOINCREMENT",
		inlineReferences: true,
		uniqueIndexes:    true,
	}}
}

// AddColumn keeps the backfill default in place: SQLite has no way to drop a
// column default afterwards.
func (s *SQLite) AddColumn(table string, col ColumnDef) []string {
	stmts := []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", s.quote(table), s.columnDefinition(col))}
	return append(stmts, s.columnExtras(table, col)...)
}

func (s *SQLite) AlterColumn(table string, col ColumnDef, changes []ColumnChange) ([]string, error) {
	var stmts []string
	for _, change := range changes {
		switch change.Kind {
		case ChangeUnique:
			if col.Unique {
				stmts = append(stmts, s.addUnique(table, UniqueName(table, col.Name), []string{col.Name}))
			} else {
				stmts = append(stmts, s.dropUnique(table, UniqueName(table, change.dropName(col))))
			}
		case ChangeIndex:
			if col.Index {
				stmts = append(stmts, s.createIndex(table, col.Name))
			} else {
				stmts = append(stmts, fmt.Sprintf("DROP INDEX %s;", s.quote(IndexName(table, change.dropName(col)))))
			}
		default:
			return nil, fmt.Errorf("%w: sqlite cannot apply a %s change to %s.%s", ErrUnsupported, change.Kind, table, col.Name)
		}
	}
	return stmts, nil
}

func (s *SQLite) SetTablespace(table, _ string) ([]string, error) {
	return nil, fmt.Errorf("%w: sqlite has no tablespaces (table %s)", ErrUnsupported, table)
}
