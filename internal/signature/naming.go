package signature

import (
	"strings"
)

// DefaultTableName derives a model's table name from its namespace and name.
func DefaultTableName(namespace, model string) string {
	return strings.ToLower(namespace + "_" + model)
}

// DefaultColumnName derives the column a field is stored in when no explicit
// db_column is set. Foreign keys get an "_id" suffix. Many-to-many fields have
// no column and yield "".
func DefaultColumnName(fieldName string, t FieldType) string {
	switch t {
	case FieldTypeManyToMany:
		return ""
	case FieldTypeForeignKey:
		return fieldName + "_id"
	default:
		return fieldName
	}
}

// ColumnName resolves the column currently holding the field: the explicit
// db_column if set, else the derived default.
func ColumnName(fieldName string, f *Field) string {
	if !f.Type.HasColumn() {
		return ""
	}
	if f.DBColumn != nil {
		return *f.DBColumn
	}
	return DefaultColumnName(fieldName, f.Type)
}

// DefaultJoinTableName derives the join table of a many-to-many field.
func DefaultJoinTableName(modelTable, fieldName string) string {
	return modelTable + "_" + fieldName
}

// JoinTableName resolves the join table currently backing a many-to-many
// field: the explicit db_table if set, else the derived default.
func JoinTableName(modelTable, fieldName string, f *Field) string {
	if f.DBTable != nil {
		return *f.DBTable
	}
	return DefaultJoinTableName(modelTable, fieldName)
}

// SplitModelRef splits a namespace-qualified model reference ("blog.Post").
// An unqualified reference resolves against defaultNamespace.
func SplitModelRef(ref, defaultNamespace string) (namespace, model string) {
	if i := strings.LastIndex(ref, "."); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return defaultNamespace, ref
}

// JoinColumnNames returns the two foreign-key columns of a join table between
// a model and its related model. Self references use from_/to_ prefixes.
func JoinColumnNames(model, related string) (from, to string) {
	m := strings.ToLower(model)
	r := strings.ToLower(related)
	if m == r {
		return "from_" + m + "_id", "to_" + r + "_id"
	}
	return m + "_id", r + "_id"
}
