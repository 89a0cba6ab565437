package mutation

import (
	"fmt"

	"github.com/tordrt/schemaevolve/internal/backend"
	"github.com/tordrt/schemaevolve/internal/signature"
)

// relatedTable returns the table and primary-key column a relation points to.
// Models missing from the signature fall back to the derived names.
func relatedTable(namespace string, proj *signature.Project, ref string) (table, pk string) {
	ns, model := signature.SplitModelRef(ref, namespace)
	if m := proj.Model(ns, model); m != nil {
		return m.Meta.DBTable, m.Meta.PKColumn
	}
	return signature.DefaultTableName(ns, model), "id"
}

// columnDef builds the adapter column definition of a column-holding field.
func columnDef(a backend.Adapter, namespace string, proj *signature.Project, fieldName string, f *signature.Field) (backend.ColumnDef, error) {
	typ, err := a.ColumnType(f)
	if err != nil {
		return backend.ColumnDef{}, fmt.Errorf("failed to resolve column type of %s: %w", fieldName, err)
	}
	resolved, err := signature.Resolve(f)
	if err != nil {
		return backend.ColumnDef{}, err
	}

	col := backend.ColumnDef{
		Name:          signature.ColumnName(fieldName, f),
		Type:          typ,
		Null:          resolved[signature.AttrNull] == true,
		Unique:        resolved[signature.AttrUnique] == true,
		PrimaryKey:    resolved[signature.AttrPrimaryKey] == true,
		Index:         resolved[signature.AttrDBIndex] == true,
		AutoIncrement: f.Type == signature.FieldTypeAutoKey,
		Default:       f.Default,
	}
	if f.Type == signature.FieldTypeForeignKey && f.RelatedModel != nil {
		table, pk := relatedTable(namespace, proj, *f.RelatedModel)
		col.References = &backend.Reference{Table: table, Column: pk}
	}
	return col, nil
}

// createJoinTable renders the join table backing a many-to-many field.
func createJoinTable(a backend.Adapter, namespace string, proj *signature.Project, modelName string, m *signature.Model, fieldName string, f *signature.Field) ([]string, error) {
	if f.RelatedModel == nil {
		return nil, fmt.Errorf("many-to-many field %s has no related_model", fieldName)
	}
	idType, err := a.ColumnType(&signature.Field{Type: signature.FieldTypeAutoKey})
	if err != nil {
		return nil, err
	}
	refType, err := a.ColumnType(&signature.Field{Type: signature.FieldTypeForeignKey})
	if err != nil {
		return nil, err
	}

	_, relatedModel := signature.SplitModelRef(*f.RelatedModel, namespace)
	relTable, relPK := relatedTable(namespace, proj, *f.RelatedModel)
	from, to := signature.JoinColumnNames(modelName, relatedModel)

	table := signature.JoinTableName(m.Meta.DBTable, fieldName, f)
	columns := []backend.ColumnDef{
		{Name: "id", Type: idType, PrimaryKey: true, AutoIncrement: true},
		{Name: from, Type: refType, Index: true, References: &backend.Reference{Table: m.Meta.DBTable, Column: m.Meta.PKColumn}},
		{Name: to, Type: refType, Index: true, References: &backend.Reference{Table: relTable, Column: relPK}},
	}
	return a.CreateTable(table, columns, backend.TableOptions{
		UniqueTogether: [][]string{{from, to}},
	}), nil
}
