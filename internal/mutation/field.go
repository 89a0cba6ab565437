package mutation

import (
	"fmt"

	"github.com/tordrt/schemaevolve/internal/backend"
	"github.com/tordrt/schemaevolve/internal/signature"
)

// AddField adds a field to an existing model. Initial backfills existing rows
// when the new column is NOT NULL without a default.
type AddField struct {
	Model     string
	Field     string
	Signature *signature.Field
	Initial   any
}

func (m *AddField) Target() (string, string) { return m.Model, m.Field }
func (m *AddField) InitialValue() any { return m.Initial }
func (m *AddField) SetInitial(v any) { m.Initial = v }

func (m *AddField) check(namespace string, proj *signature.Project) (*signature.Model, error) {
	if m.Signature == nil {
		return nil, fmt.Errorf("field %s.%s.%s has no signature", namespace, m.Model, m.Field)
	}
	if err := m.Signature.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signature for %s.%s.%s: %w", namespace, m.Model, m.Field, err)
	}
	model, err := lookupModel(namespace, proj, m.Model)
	if err != nil {
		return nil, err
	}
	if _, exists := model.Fields[m.Field]; exists {
		return nil, fmt.Errorf("field %s.%s.%s already exists", namespace, m.Model, m.Field)
	}
	return model, nil
}

func (m *AddField) Mutate(namespace string, proj *signature.Project, a backend.Adapter) ([]string, error) {
	model, err := m.check(namespace, proj)
	if err != nil {
		return nil, err
	}
	if m.Signature.Type == signature.FieldTypeManyToMany {
		return createJoinTable(a, namespace, proj, m.Model, model, m.Field, m.Signature)
	}

	col, err := columnDef(a, namespace, proj, m.Field, m.Signature)
	if err != nil {
		return nil, err
	}
	if RequiresInitial(m.Signature) {
		if col.Initial, err = renderInitial(a, m.Initial); err != nil {
			return nil, fmt.Errorf("%w: %s.%s.%s is NOT NULL without a default", err, namespace, m.Model, m.Field)
		}
	}
	return a.AddColumn(model.Meta.DBTable, col), nil
}

func (m *AddField) Simulate(namespace string, proj *signature.Project) error {
	model, err := m.check(namespace, proj)
	if err != nil {
		return err
	}
	f := m.Signature.Clone()
	if err := signature.Elide(f); err != nil {
		return err
	}
	model.Fields[m.Field] = f
	if f.PrimaryKey != nil && *f.PrimaryKey {
		updatePKColumn(model)
	}
	return nil
}

// String renders e.g. AddField('TestModel', 'full_name', char, initial=<<USER VALUE REQUIRED>>, max_length=20).
func (m *AddField) String() string {
	args := []string{signature.FormatValue(m.Model), signature.FormatValue(m.Field)}
	if m.Signature == nil {
		return formatCall("AddField", args...)
	}
	args = append(args, m.Signature.Type.String())
	if m.Initial != nil {
		args = append(args, formatInitial(m.Initial))
	}
	args = append(args, formatAttrs(m.Signature)...)
	return formatCall("AddField", args...)
}

// DeleteField removes a field. Column-holding fields drop their column with
// CASCADE; many-to-many fields drop their join table.
type DeleteField struct {
	Model string
	Field string
}

func (m *DeleteField) Mutate(namespace string, proj *signature.Project, a backend.Adapter) ([]string, error) {
	model, f, err := lookupField(namespace, proj, m.Model, m.Field)
	if err != nil {
		return nil, err
	}
	if f.Type == signature.FieldTypeManyToMany {
		return a.DropTable(signature.JoinTableName(model.Meta.DBTable, m.Field, f)), nil
	}
	return a.DropColumn(model.Meta.DBTable, signature.ColumnName(m.Field, f), true), nil
}

func (m *DeleteField) Simulate(namespace string, proj *signature.Project) error {
	model, f, err := lookupField(namespace, proj, m.Model, m.Field)
	if err != nil {
		return err
	}
	delete(model.Fields, m.Field)
	if f.PrimaryKey != nil && *f.PrimaryKey {
		updatePKColumn(model)
	}
	return nil
}

func (m *DeleteField) String() string {
	return formatCall("DeleteField", signature.FormatValue(m.Model), signature.FormatValue(m.Field))
}

// RenameField renames a field. NewDBColumn applies to column-holding fields
// and NewDBTable to many-to-many fields; the other one is ignored.
type RenameField struct {
	Model       string
	OldName     string
	NewName     string
	NewDBColumn *string
	NewDBTable  *string
}

func (m *RenameField) check(namespace string, proj *signature.Project) (*signature.Model, *signature.Field, error) {
	model, f, err := lookupField(namespace, proj, m.Model, m.OldName)
	if err != nil {
		return nil, nil, err
	}
	if m.NewName != m.OldName {
		if _, exists := model.Fields[m.NewName]; exists {
			return nil, nil, fmt.Errorf("cannot rename %s.%s.%s: field %s already exists", namespace, m.Model, m.OldName, m.NewName)
		}
	}
	return model, f, nil
}

// IgnoredArguments reports the arguments that have no effect for the field
// being renamed: db_table on a column-holding field, db_column on a
// many-to-many field.
func (m *RenameField) IgnoredArguments(namespace string, proj *signature.Project) []signature.Attr {
	_, f, err := lookupField(namespace, proj, m.Model, m.OldName)
	if err != nil {
		return nil
	}
	var ignored []signature.Attr
	if f.Type == signature.FieldTypeManyToMany {
		if m.NewDBColumn != nil {
			ignored = append(ignored, signature.AttrDBColumn)
		}
	} else if m.NewDBTable != nil {
		ignored = append(ignored, signature.AttrDBTable)
	}
	return ignored
}

func (m *RenameField) renamed(f *signature.Field) *signature.Field {
	nf := f.Clone()
	if f.Type == signature.FieldTypeManyToMany {
		nf.DBTable = copyString(m.NewDBTable)
	} else {
		nf.DBColumn = copyString(m.NewDBColumn)
	}
	// f comes from the working signature, so its type is known.
	_ = signature.Elide(nf)
	return nf
}

func (m *RenameField) Mutate(namespace string, proj *signature.Project, a backend.Adapter) ([]string, error) {
	model, f, err := m.check(namespace, proj)
	if err != nil {
		return nil, err
	}
	nf := m.renamed(f)
	table := model.Meta.DBTable

	if f.Type == signature.FieldTypeManyToMany {
		oldTable := signature.JoinTableName(table, m.OldName, f)
		newTable := signature.JoinTableName(table, m.NewName, nf)
		if oldTable == newTable {
			return nil, nil
		}
		return a.RenameTable(oldTable, newTable), nil
	}

	oldColumn := signature.ColumnName(m.OldName, f)
	newColumn := signature.ColumnName(m.NewName, nf)
	if oldColumn == newColumn {
		return nil, nil
	}
	return a.RenameColumn(table, oldColumn, newColumn), nil
}

func (m *RenameField) Simulate(namespace string, proj *signature.Project) error {
	model, f, err := m.check(namespace, proj)
	if err != nil {
		return err
	}
	nf := m.renamed(f)
	delete(model.Fields, m.OldName)
	model.Fields[m.NewName] = nf
	if nf.PrimaryKey != nil && *nf.PrimaryKey {
		updatePKColumn(model)
	}
	return nil
}

// String renders e.g. RenameField('TestModel', 'int_field', 'renamed_field').
func (m *RenameField) String() string {
	args := []string{signature.FormatValue(m.Model), signature.FormatValue(m.OldName), signature.FormatValue(m.NewName)}
	if m.NewDBColumn != nil {
		args = append(args, "db_column="+signature.FormatValue(*m.NewDBColumn))
	}
	if m.NewDBTable != nil {
		args = append(args, "db_table="+signature.FormatValue(*m.NewDBTable))
	}
	return formatCall("RenameField", args...)
}
