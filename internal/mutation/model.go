package mutation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tordrt/schemaevolve/internal/backend"
	"github.com/tordrt/schemaevolve/internal/signature"
)

// AddModel creates a model's table and the join tables of its many-to-many
// fields.
type AddModel struct {
	Model     string
	Signature *signature.Model
}

func (m *AddModel) check(namespace string, proj *signature.Project) error {
	if m.Signature == nil {
		return fmt.Errorf("model %s.%s has no signature", namespace, m.Model)
	}
	if proj.Model(namespace, m.Model) != nil {
		return fmt.Errorf("model %s.%s already exists", namespace, m.Model)
	}
	for _, name := range m.Signature.FieldNames() {
		if err := m.Signature.Fields[name].Validate(); err != nil {
			return fmt.Errorf("invalid signature for %s.%s.%s: %w", namespace, m.Model, name, err)
		}
	}
	return nil
}

// normalized returns the model as it is stored in the signature.
func (m *AddModel) normalized(namespace string) *signature.Model {
	model := m.Signature.Clone()
	if model.Meta.DBTable == "" {
		model.Meta.DBTable = signature.DefaultTableName(namespace, m.Model)
	}
	// check has validated every field type.
	for _, f := range model.Fields {
		_ = signature.Elide(f)
	}
	if model.Meta.PKColumn == "" {
		updatePKColumn(model)
	}
	return model
}

func (m *AddModel) Mutate(namespace string, proj *signature.Project, a backend.Adapter) ([]string, error) {
	if err := m.check(namespace, proj); err != nil {
		return nil, err
	}
	model := m.normalized(namespace)

	// Primary key first, then the remaining columns by name.
	names := model.FieldNames()
	slices.SortStableFunc(names, func(x, y string) int {
		return boolRank(isPrimaryKey(model.Fields[y])) - boolRank(isPrimaryKey(model.Fields[x]))
	})

	var (
		columns []backend.ColumnDef
		m2m     []string
	)
	for _, name := range names {
		f := model.Fields[name]
		if f.Type == signature.FieldTypeManyToMany {
			m2m = append(m2m, name)
			continue
		}
		col, err := columnDef(a, namespace, proj, name, f)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	unique, err := uniqueColumns(model, model.Meta.UniqueTogether)
	if err != nil {
		return nil, fmt.Errorf("model %s.%s: %w", namespace, m.Model, err)
	}
	stmts := a.CreateTable(model.Meta.DBTable, columns, backend.TableOptions{
		Tablespace:     model.Meta.DBTablespace,
		UniqueTogether: unique,
	})
	for _, name := range m2m {
		join, err := createJoinTable(a, namespace, proj, m.Model, model, name, model.Fields[name])
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, join...)
	}
	return stmts, nil
}

func (m *AddModel) Simulate(namespace string, proj *signature.Project) error {
	if err := m.check(namespace, proj); err != nil {
		return err
	}
	proj.EnsureNamespace(namespace).Models[m.Model] = m.normalized(namespace)
	return nil
}

func (m *AddModel) String() string {
	return formatCall("AddModel", signature.FormatValue(m.Model))
}

// DeleteModel drops a model's join tables and then its table.
type DeleteModel struct {
	Model string
}

func (m *DeleteModel) Mutate(namespace string, proj *signature.Project, a backend.Adapter) ([]string, error) {
	model, err := lookupModel(namespace, proj, m.Model)
	if err != nil {
		return nil, err
	}
	var stmts []string
	for _, name := range model.FieldNames() {
		f := model.Fields[name]
		if f.Type == signature.FieldTypeManyToMany {
			stmts = append(stmts, a.DropTable(signature.JoinTableName(model.Meta.DBTable, name, f))...)
		}
	}
	return append(stmts, a.DropTable(model.Meta.DBTable)...), nil
}

func (m *DeleteModel) Simulate(namespace string, proj *signature.Project) error {
	if _, err := lookupModel(namespace, proj, m.Model); err != nil {
		return err
	}
	delete(proj.Namespace(namespace).Models, m.Model)
	return nil
}

func (m *DeleteModel) String() string {
	return formatCall("DeleteModel", signature.FormatValue(m.Model))
}

// MetaProp names a model meta property ChangeMeta can alter.
type MetaProp string

const (
	MetaDBTable        MetaProp = "db_table"
	MetaDBTablespace   MetaProp = "db_tablespace"
	MetaUniqueTogether MetaProp = "unique_together"
)

// ChangeMeta alters one meta property of a model. Value is a string for
// db_table and db_tablespace and a [][]string for unique_together.
type ChangeMeta struct {
	Model string
	Prop  MetaProp
	Value any
}

func (m *ChangeMeta) check(namespace string, proj *signature.Project) (*signature.Model, error) {
	model, err := lookupModel(namespace, proj, m.Model)
	if err != nil {
		return nil, err
	}
	switch m.Prop {
	case MetaDBTable:
		v, ok := m.Value.(string)
		if !ok || v == "" {
			return nil, fmt.Errorf("db_table of %s.%s must be a non-empty string", namespace, m.Model)
		}
	case MetaDBTablespace:
		if _, ok := m.Value.(string); !ok {
			return nil, fmt.Errorf("db_tablespace of %s.%s must be a string", namespace, m.Model)
		}
	case MetaUniqueTogether:
		groups, ok := m.Value.([][]string)
		if !ok && m.Value != nil {
			return nil, fmt.Errorf("unique_together of %s.%s must be a list of field name lists", namespace, m.Model)
		}
		if _, err := uniqueColumns(model, groups); err != nil {
			return nil, fmt.Errorf("model %s.%s: %w", namespace, m.Model, err)
		}
	default:
		return nil, fmt.Errorf("unknown meta property %q", m.Prop)
	}
	return model, nil
}

func (m *ChangeMeta) Mutate(namespace string, proj *signature.Project, a backend.Adapter) ([]string, error) {
	model, err := m.check(namespace, proj)
	if err != nil {
		return nil, err
	}
	table := model.Meta.DBTable

	switch m.Prop {
	case MetaDBTable:
		newTable := m.Value.(string)
		if newTable == table {
			return nil, nil
		}
		stmts := a.RenameTable(table, newTable)
		// Join tables named after the model table follow it.
		for _, name := range model.FieldNames() {
			f := model.Fields[name]
			if f.Type == signature.FieldTypeManyToMany && f.DBTable == nil {
				stmts = append(stmts, a.RenameTable(
					signature.DefaultJoinTableName(table, name),
					signature.DefaultJoinTableName(newTable, name))...)
			}
		}
		return stmts, nil
	case MetaDBTablespace:
		return a.SetTablespace(table, m.Value.(string))
	default:
		groups, _ := m.Value.([][]string)
		oldCols := existingUniqueColumns(model, model.Meta.UniqueTogether)
		newCols, _ := uniqueColumns(model, groups)

		var stmts []string
		for _, cols := range oldCols {
			if !containsGroup(newCols, cols) {
				stmts = append(stmts, a.DropUnique(table, backend.UniqueName(table, cols...))...)
			}
		}
		for _, cols := range newCols {
			if !containsGroup(oldCols, cols) {
				stmts = append(stmts, a.AddUnique(table, backend.UniqueName(table, cols...), cols)...)
			}
		}
		return stmts, nil
	}
}

func (m *ChangeMeta) Simulate(namespace string, proj *signature.Project) error {
	model, err := m.check(namespace, proj)
	if err != nil {
		return err
	}
	switch m.Prop {
	case MetaDBTable:
		model.Meta.DBTable = m.Value.(string)
	case MetaDBTablespace:
		model.Meta.DBTablespace = m.Value.(string)
	case MetaUniqueTogether:
		groups, _ := m.Value.([][]string)
		model.Meta.UniqueTogether = signature.Meta{UniqueTogether: groups}.Clone().UniqueTogether
	}
	return nil
}

// String renders e.g. ChangeMeta('TestModel', 'unique_together', [('a', 'b')]).
func (m *ChangeMeta) String() string {
	return formatCall("ChangeMeta", signature.FormatValue(m.Model), signature.FormatValue(string(m.Prop)), formatMetaValue(m.Value))
}

func formatMetaValue(v any) string {
	groups, ok := v.([][]string)
	if !ok {
		return signature.FormatValue(v)
	}
	parts := make([]string, len(groups))
	for i, group := range groups {
		names := make([]string, len(group))
		for j, name := range group {
			names[j] = signature.FormatValue(name)
		}
		parts[i] = "(" + strings.Join(names, ", ") + ")"
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// uniqueColumns maps unique_together field groups to column groups.
func uniqueColumns(model *signature.Model, groups [][]string) ([][]string, error) {
	return mapUniqueGroups(model, groups, true)
}

// existingUniqueColumns is uniqueColumns for groups already in the database.
// Groups naming a deleted field are skipped: dropping the column with CASCADE
// removed their constraint.
func existingUniqueColumns(model *signature.Model, groups [][]string) [][]string {
	cols, _ := mapUniqueGroups(model, groups, false)
	return cols
}

func mapUniqueGroups(model *signature.Model, groups [][]string, strict bool) ([][]string, error) {
	out := make([][]string, 0, len(groups))
next:
	for _, group := range groups {
		cols := make([]string, 0, len(group))
		for _, name := range group {
			f, ok := model.Fields[name]
			if !ok && !strict {
				continue next
			}
			if !ok {
				return nil, fmt.Errorf("%w: unique_together names unknown field %s", ErrStaleFieldReference, name)
			}
			if !f.Type.HasColumn() {
				if !strict {
					continue next
				}
				return nil, fmt.Errorf("unique_together cannot include many-to-many field %s", name)
			}
			cols = append(cols, signature.ColumnName(name, f))
		}
		out = append(out, cols)
	}
	return out, nil
}

func containsGroup(groups [][]string, cols []string) bool {
	return slices.ContainsFunc(groups, func(g []string) bool { return slices.Equal(g, cols) })
}

func isPrimaryKey(f *signature.Field) bool {
	return f.PrimaryKey != nil && *f.PrimaryKey
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
