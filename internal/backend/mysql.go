package backend

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemaevolve/internal/signature"
)

// MySQL renders MySQL DDL.
type MySQL struct {
	base
}

// NewMySQL returns the MySQL adapter.
func NewMySQL() *MySQL {
	return &MySQL{base: base{
		name:    "mysql",
		quote:   func(name string) string { return quoteDoubled(name, "`") },
		literal: mysqlLiteral,
		columnTypes: map[signature.FieldType]string{
			signature.FieldTypeAutoKey:    "integer",
			signature.FieldTypeBigInteger: "bigint",
			signature.FieldTypeBoolean:    "bool",
			signature.FieldTypeDate:       "date",
			signature.FieldTypeDateTime:   "datetime(6)",
			signature.FieldTypeFloat:      "double precision",
			signature.FieldTypeForeignKey: "integer",
			signature.FieldTypeInteger:    "integer",
			signature.FieldTypeText:       "longtext",
			signature.FieldTypeTime:       "time(6)",
		},
		autoKeySuffix: " AUTO_INCREMENT",
	}}
}

func mysqlLiteral(v any) string {
	if s, ok := v.(string); ok {
		return quoteDoubled(strings.ReplaceAll(s, `\`, `\\`), "'")
	}
	return standardLiteral(v, "TRUE", "FALSE")
}

func (m *MySQL) RenameTable(oldName, newName string) []string {
	return []string{fmt.Sprintf("RENAME TABLE %s TO %s;", m.quote(oldName), m.quote(newName))}
}

func (m *MySQL) DropUnique(table, name string) []string {
	return []string{m.dropIndex(table, name)}
}

func (m *MySQL) dropIndex(table, name string) string {
	return fmt.Sprintf("DROP INDEX %s ON %s;", m.quote(name), m.quote(table))
}

// AlterColumn folds type, nullability and default changes into one
// MODIFY COLUMN carrying the full column definition.
func (m *MySQL) AlterColumn(table string, col ColumnDef, changes []ColumnChange) ([]string, error) {
	t := m.quote(table)

	var (
		stmts  []string
		modify bool
	)
	for _, change := range changes {
		switch change.Kind {
		case ChangeType, ChangeDefault:
			modify = true
		case ChangeNull:
			modify = true
			if !col.Null && col.Initial != nil {
				stmts = append(stmts, m.backfill(table, col))
			}
		}
	}
	if modify {
		def := col
		def.PrimaryKey = false
		def.Initial = nil
		def.References = nil
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s;", t, m.columnDefinition(def)))
	}

	for _, change := range changes {
		switch change.Kind {
		case ChangeType, ChangeNull, ChangeDefault:
		case ChangeUnique:
			if col.Unique {
				stmts = append(stmts, m.addUnique(table, UniqueName(table, col.Name), []string{col.Name}))
			} else {
				stmts = append(stmts, m.dropIndex(table, UniqueName(table, change.dropName(col))))
			}
		case ChangeIndex:
			if col.Index {
				stmts = append(stmts, m.createIndex(table, col.Name))
			} else {
				stmts = append(stmts, m.dropIndex(table, IndexName(table, change.dropName(col))))
			}
		case ChangePrimaryKey:
			if col.PrimaryKey {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s);", t, m.quote(col.Name)))
			} else {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY;", t))
			}
		case ChangeReference:
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s;", t, m.quote(ForeignKeyName(table, change.dropName(col)))))
			if col.References != nil {
				stmts = append(stmts, m.addForeignKey(table, col))
			}
		default:
			return nil, fmt.Errorf("%w: %s change", ErrUnsupported, change.Kind)
		}
	}
	return stmts, nil
}

func (m *MySQL) SetTablespace(table, tablespace string) ([]string, error) {
	ts := "innodb_file_per_table"
	if tablespace != "" {
		ts = m.quote(tablespace)
	}
	return []string{fmt.Sprintf("ALTER TABLE %s TABLESPACE %s;", m.quote(table), ts)}, nil
}
