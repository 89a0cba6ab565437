package backend

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemaevolve/internal/signature"
)

// base holds the statement shapes shared by all dialects. Dialects embed it
// and override what differs.
type base struct {
	name        string
	quote       func(string) string
	literal     func(any) string
	columnTypes map[signature.FieldType]string
	// autoKeySuffix follows PRIMARY KEY on auto-incrementing columns.
	autoKeySuffix string
	cascade       bool
	// inlineReferences renders REFERENCES inside the column definition instead
	// of as a separate constraint statement.
	inlineReferences bool
	deferrable       bool
	// uniqueIndexes renders unique constraints as unique indexes.
	uniqueIndexes bool
}

func (b *base) Name() string { return b.name }

func (b *base) QuoteIdentifier(name string) string { return b.quote(name) }

func (b *base) QuoteLiteral(v any) string { return b.literal(v) }

func (b *base) ColumnType(f *signature.Field) (string, error) {
	switch f.Type {
	case signature.FieldTypeChar:
		if f.MaxLength == nil {
			return "", fmt.Errorf("char field requires max_length")
		}
		return fmt.Sprintf("varchar(%d)", *f.MaxLength), nil
	case signature.FieldTypeDecimal:
		if f.MaxDigits == nil || f.DecimalPlaces == nil {
			return "", fmt.Errorf("decimal field requires max_digits and decimal_places")
		}
		return fmt.Sprintf("numeric(%d, %d)", *f.MaxDigits, *f.DecimalPlaces), nil
	}
	t, ok := b.columnTypes[f.Type]
	if !ok {
		return "", fmt.Errorf("%s: no column type for %s", b.name, f.Type)
	}
	return t, nil
}

func (b *base) qualifiedColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = b.quote(c)
	}
	return strings.Join(quoted, ", ")
}

// columnDefinition renders `"name" type [NOT NULL] ...` without a trailing
// semicolon. The initial value, when present, is rendered as the default.
// Unique columns get a separately named constraint, see columnExtras.
func (b *base) columnDefinition(col ColumnDef) string {
	var sb strings.Builder
	sb.WriteString(b.quote(col.Name))
	sb.WriteString(" ")
	sb.WriteString(col.Type)
	if col.Null {
		sb.WriteString(" NULL")
	} else {
		sb.WriteString(" NOT NULL")
	}
	switch {
	case col.Default != nil:
		sb.WriteString(" DEFAULT " + *col.Default)
	case col.Initial != nil:
		sb.WriteString(" DEFAULT " + *col.Initial)
	}
	if col.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
		if col.AutoIncrement {
			sb.WriteString(b.autoKeySuffix)
		}
	}
	if col.References != nil && b.inlineReferences {
		sb.WriteString(" " + b.referenceClause(*col.References))
	}
	return sb.String()
}

func (b *base) referenceClause(ref Reference) string {
	clause := fmt.Sprintf("REFERENCES %s (%s)", b.quote(ref.Table), b.quote(ref.Column))
	if b.deferrable {
		clause += " DEFERRABLE INITIALLY DEFERRED"
	}
	return clause
}

func (b *base) addForeignKey(table string, col ColumnDef) string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) %s;",
		b.quote(table), b.quote(ForeignKeyName(table, col.Name)), b.quote(col.Name), b.referenceClause(*col.References))
}

func (b *base) createIndex(table, column string) string {
	return fmt.Sprintf("CREATE INDEX %s ON %s (%s);", b.quote(IndexName(table, column)), b.quote(table), b.quote(column))
}

func (b *base) CreateTable(table string, columns []ColumnDef, opts TableOptions) []string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = "    " + b.columnDefinition(col)
	}
	create := fmt.Sprintf("CREATE TABLE %s (\n%s\n)", b.quote(table), strings.Join(defs, ",\n"))
	if opts.Tablespace != "" {
		create += " TABLESPACE " + b.quote(opts.Tablespace)
	}
	stmts := []string{create + ";"}

	for _, col := range columns {
		stmts = append(stmts, b.columnExtras(table, col)...)
	}
	for _, group := range opts.UniqueTogether {
		stmts = append(stmts, b.addUnique(table, UniqueName(table, group...), group))
	}
	return stmts
}

// columnExtras renders the constraints and indexes of a column that are not
// part of its definition.
func (b *base) columnExtras(table string, col ColumnDef) []string {
	var stmts []string
	if col.References != nil && !b.inlineReferences {
		stmts = append(stmts, b.addForeignKey(table, col))
	}
	if col.Unique && !col.PrimaryKey {
		stmts = append(stmts, b.addUnique(table, UniqueName(table, col.Name), []string{col.Name}))
	} else if col.Index && !col.PrimaryKey {
		stmts = append(stmts, b.createIndex(table, col.Name))
	}
	return stmts
}

func (b *base) DropTable(table string) []string {
	return []string{fmt.Sprintf("DROP TABLE %s;", b.quote(table))}
}

func (b *base) RenameTable(oldName, newName string) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", b.quote(oldName), b.quote(newName))}
}

func (b *base) AddColumn(table string, col ColumnDef) []string {
	stmts := []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", b.quote(table), b.columnDefinition(col))}
	if col.Initial != nil && col.Default == nil {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;", b.quote(table), b.quote(col.Name)))
	}
	return append(stmts, b.columnExtras(table, col)...)
}

func (b *base) DropColumn(table, column string, cascade bool) []string {
	stmt := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", b.quote(table), b.quote(column))
	if cascade && b.cascade {
		stmt += " CASCADE"
	}
	return []string{stmt + ";"}
}

func (b *base) RenameColumn(table, oldName, newName string) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s;", b.quote(table), b.quote(oldName), b.quote(newName))}
}

func (b *base) addUnique(table, name string, columns []string) string {
	if b.uniqueIndexes {
		return fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s);", b.quote(name), b.quote(table), b.qualifiedColumns(columns))
	}
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s);", b.quote(table), b.quote(name), b.qualifiedColumns(columns))
}

func (b *base) AddUnique(table, name string, columns []string) []string {
	return []string{b.addUnique(table, name, columns)}
}

func (b *base) dropUnique(table, name string) string {
	if b.uniqueIndexes {
		return fmt.Sprintf("DROP INDEX %s;", b.quote(name))
	}
	return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", b.quote(table), b.quote(name))
}

func (b *base) DropUnique(table, name string) []string {
	return []string{b.dropUnique(table, name)}
}

func (b *base) backfill(table string, col ColumnDef) string {
	return fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s IS NULL;",
		b.quote(table), b.quote(col.Name), *col.Initial, b.quote(col.Name))
}

// quoteDoubled wraps s in q, doubling any embedded q.
func quoteDoubled(s string, q string) string {
	return q + strings.ReplaceAll(s, q, q+q) + q
}

// standardLiteral renders a value as an ANSI SQL literal.
func standardLiteral(v any, trueLit, falseLit string) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return trueLit
		}
		return falseLit
	case int, int32, int64, float32, float64:
		return fmt.Sprintf("%v", val)
	case string:
		return quoteDoubled(val, "'")
	default:
		return quoteDoubled(fmt.Sprintf("%v", val), "'")
	}
}
