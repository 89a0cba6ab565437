package backend

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/tordrt/schemaevolve/internal/signature"
)

// Postgres renders PostgreSQL DDL. It is the reference dialect: identifiers
// are double quoted and column drops cascade.
type Postgres struct {
	base
}

// NewPostgres returns the PostgreSQL adapter.
func NewPostgres() *Postgres {
	return &Postgres{base: base{
		name:    "postgres",
		quote:   func(name string) string { return pgx.Identifier{name}.Sanitize() },
		literal: postgresLiteral,
		columnTypes: map[signature.FieldType]string{
			signature.FieldTypeAutoKey:    "serial",
			signature.FieldTypeBigInteger: "bigint",
			signature.FieldTypeBoolean:    "boolean",
			signature.FieldTypeDate:       "date",
			signature.FieldTypeDateTime:   "timestamp with time zone",
			signature.FieldTypeFloat:      "double precision",
			signature.FieldTypeForeignKey: "integer",
			signature.FieldTypeInteger:    "integer",
			signature.FieldTypeText:       "text",
			signature.FieldTypeTime:       "time",
		},
		cascade:    true,
		deferrable: true,
	}}
}

func postgresLiteral(v any) string {
	if s, ok := v.(string); ok {
		return pq.QuoteLiteral(s)
	}
	return standardLiteral(v, "TRUE", "FALSE")
}

// AlterColumn renders one statement group per change, in the given order.
func (p *Postgres) AlterColumn(table string, col ColumnDef, changes []ColumnChange) ([]string, error) {
	t := p.quote(table)
	c := p.quote(col.Name)

	var stmts []string
	for _, change := range changes {
		switch change.Kind {
		case ChangeType:
			typ := col.Type
			if typ == "serial" {
				typ = "integer"
			}
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s;", t, c, typ, c, typ))
		case ChangeNull:
			if col.Null {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL;", t, c))
				continue
			}
			if col.Initial != nil {
				stmts = append(stmts, p.backfill(table, col))
			}
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;", t, c))
		case ChangeDefault:
			if col.Default != nil {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s;", t, c, *col.Default))
			} else {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", t, c))
			}
		case ChangeUnique:
			if col.Unique {
				stmts = append(stmts, p.addUnique(table, UniqueName(table, col.Name), []string{col.Name}))
			} else {
				stmts = append(stmts, p.dropUnique(table, UniqueName(table, change.dropName(col))))
			}
		case ChangeIndex:
			if col.Index {
				stmts = append(stmts, p.createIndex(table, col.Name))
			} else {
				stmts = append(stmts, fmt.Sprintf("DROP INDEX %s;", p.quote(IndexName(table, change.dropName(col)))))
			}
		case ChangePrimaryKey:
			if col.PrimaryKey {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);", t, p.quote(PrimaryKeyName(table)), c))
			} else {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", t, p.quote(PrimaryKeyName(table))))
			}
		case ChangeReference:
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s;", t, p.quote(ForeignKeyName(table, change.dropName(col)))))
			if col.References != nil {
				stmts = append(stmts, p.addForeignKey(table, col))
			}
		default:
			return nil, fmt.Errorf("%w: %s change", ErrUnsupported, change.Kind)
		}
	}
	return stmts, nil
}

func (p *Postgres) SetTablespace(table, tablespace string) ([]string, error) {
	if tablespace == "" {
		tablespace = "pg_default"
	}
	return []string{fmt.Sprintf("ALTER TABLE %s SET TABLESPACE %s;", p.quote(table), p.quote(tablespace))}, nil
}
