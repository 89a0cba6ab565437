// Package backend renders schema-mutation DDL for a specific SQL dialect.
//
// Mutations never build SQL themselves: they resolve table and column names
// from the working signature and hand them to an Adapter, which owns quoting,
// type names and statement shapes.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tordrt/schemaevolve/internal/signature"
)

// ErrUnsupported is returned when a dialect cannot express a change in place.
var ErrUnsupported = errors.New("operation not supported by dialect")

// Adapter renders DDL statements. Every method is pure.
type Adapter interface {
	Name() string
	QuoteIdentifier(name string) string
	QuoteLiteral(v any) string
	ColumnType(f *signature.Field) (string, error)

	CreateTable(table string, columns []ColumnDef, opts TableOptions) []string
	DropTable(table string) []string
	RenameTable(oldName, newName string) []string

	AddColumn(table string, col ColumnDef) []string
	DropColumn(table, column string, cascade bool) []string
	RenameColumn(table, oldName, newName string) []string
	AlterColumn(table string, col ColumnDef, changes []ColumnChange) ([]string, error)

	AddUnique(table, name string, columns []string) []string
	DropUnique(table, name string) []string
	SetTablespace(table, tablespace string) ([]string, error)
}

// ColumnDef describes a column as it should exist after the statement runs.
type ColumnDef struct {
	Name          string
	Type          string
	Null          bool
	Unique        bool
	PrimaryKey    bool
	Index         bool
	AutoIncrement bool
	// Default is a raw SQL default expression.
	Default *string
	// Initial is a rendered literal used to backfill existing rows.
	Initial    *string
	References *Reference
}

// Reference is the target of a foreign-key column.
type Reference struct {
	Table  string
	Column string
}

// TableOptions carries table-level properties for CreateTable.
type TableOptions struct {
	Tablespace     string
	UniqueTogether [][]string
}

// ChangeKind identifies what an AlterColumn change touches.
type ChangeKind int

const (
	ChangeType ChangeKind = iota
	ChangeNull
	ChangeDefault
	ChangeUnique
	ChangeIndex
	ChangePrimaryKey
	ChangeReference
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeType:
		return "type"
	case ChangeNull:
		return "null"
	case ChangeDefault:
		return "default"
	case ChangeUnique:
		return "unique"
	case ChangeIndex:
		return "index"
	case ChangePrimaryKey:
		return "primary key"
	case ChangeReference:
		return "reference"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// ColumnChange is one in-place alteration of a column. The new state is read
// from the ColumnDef passed alongside it.
type ColumnChange struct {
	Kind ChangeKind
	// OldName is the column name the existing constraint or index was created
	// under. Empty means the column was not renamed.
	OldName string
}

// dropName returns the column name used to derive the names of objects being
// dropped.
func (c ColumnChange) dropName(col ColumnDef) string {
	if c.OldName != "" {
		return c.OldName
	}
	return col.Name
}

// ForName returns the adapter for a dialect name.
func ForName(name string) (Adapter, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql":
		return NewPostgres(), nil
	case "mysql":
		return NewMySQL(), nil
	case "sqlite", "sqlite3":
		return NewSQLite(), nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", name)
	}
}

// Names lists the supported dialect names.
func Names() []string {
	return []string{"mysql", "postgres", "sqlite"}
}

// UniqueName is the constraint name for a unique column set.
func UniqueName(table string, columns ...string) string {
	return table + "_" + strings.Join(columns, "_") + "_key"
}

// IndexName is the name of a single-column index.
func IndexName(table, column string) string {
	return table + "_" + column + "_idx"
}

// ForeignKeyName is the constraint name of a foreign-key column.
func ForeignKeyName(table, column string) string {
	return table + "_" + column + "_fkey"
}

// PrimaryKeyName is the constraint name of a table's primary key.
func PrimaryKeyName(table string) string {
	return table + "_pkey"
}
