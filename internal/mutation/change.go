package mutation

import (
	"fmt"

	"github.com/tordrt/schemaevolve/internal/backend"
	"github.com/tordrt/schemaevolve/internal/signature"
)

// ChangeField alters attributes of an existing field. Changes maps attribute
// names to their new values; a nil value resets the attribute to the type
// default. The pseudo attribute field_type carries a signature.FieldType.
type ChangeField struct {
	Model   string
	Field   string
	Changes map[signature.Attr]any
	Initial any
}

func (m *ChangeField) Target() (string, string) { return m.Model, m.Field }
func (m *ChangeField) InitialValue() any { return m.Initial }
func (m *ChangeField) SetInitial(v any) { m.Initial = v }

// Apply returns f with the changes applied, elided against the resulting type.
func (m *ChangeField) Apply(f *signature.Field) (*signature.Field, error) {
	resolved, err := signature.Resolve(f)
	if err != nil {
		return nil, err
	}
	t := f.Type
	for name, v := range m.Changes {
		if name == signature.AttrFieldType {
			ft, ok := v.(signature.FieldType)
			if !ok {
				return nil, fmt.Errorf("field_type change expects a FieldType, got %T", v)
			}
			t = ft
			continue
		}
		resolved[name] = v
	}

	nf, err := signature.FromResolved(t, resolved)
	if err != nil {
		return nil, err
	}
	if err := nf.Validate(); err != nil {
		return nil, err
	}
	return nf, nil
}

// RequiresInitial reports whether the change turns a nullable column without
// a default into a NOT NULL one.
func (m *ChangeField) RequiresInitial(old *signature.Field) bool {
	nf, err := m.Apply(old)
	if err != nil || !nf.Type.HasColumn() {
		return false
	}
	// A column replacing a join table is added like a new field.
	if !old.Type.HasColumn() {
		return RequiresInitial(nf)
	}
	ro, _ := signature.Resolve(old)
	return ro[signature.AttrNull] == true && RequiresInitial(nf)
}

func (m *ChangeField) check(namespace string, proj *signature.Project) (*signature.Model, *signature.Field, *signature.Field, error) {
	model, f, err := lookupField(namespace, proj, m.Model, m.Field)
	if err != nil {
		return nil, nil, nil, err
	}
	nf, err := m.Apply(f)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cannot change %s.%s.%s: %w", namespace, m.Model, m.Field, err)
	}
	return model, f, nf, nil
}

func (m *ChangeField) Mutate(namespace string, proj *signature.Project, a backend.Adapter) ([]string, error) {
	model, f, nf, err := m.check(namespace, proj)
	if err != nil {
		return nil, err
	}
	table := model.Meta.DBTable

	switch {
	case f.Type == signature.FieldTypeManyToMany && nf.Type == signature.FieldTypeManyToMany:
		return m.mutateJoinTable(namespace, proj, a, model, f, nf)
	case f.Type == signature.FieldTypeManyToMany:
		col, err := m.newColumn(namespace, proj, a, nf, RequiresInitial(nf))
		if err != nil {
			return nil, err
		}
		stmts := a.DropTable(signature.JoinTableName(table, m.Field, f))
		return append(stmts, a.AddColumn(table, col)...), nil
	case nf.Type == signature.FieldTypeManyToMany:
		join, err := createJoinTable(a, namespace, proj, m.Model, model, m.Field, nf)
		if err != nil {
			return nil, err
		}
		stmts := a.DropColumn(table, signature.ColumnName(m.Field, f), true)
		return append(stmts, join...), nil
	}

	col, err := m.newColumn(namespace, proj, a, nf, m.RequiresInitial(f))
	if err != nil {
		return nil, err
	}
	oldColumn := signature.ColumnName(m.Field, f)
	changes, err := columnChanges(a, f, nf, oldColumn)
	if err != nil {
		return nil, err
	}

	var stmts []string
	if oldColumn != col.Name {
		stmts = append(stmts, a.RenameColumn(table, oldColumn, col.Name)...)
	}
	if len(changes) == 0 {
		return stmts, nil
	}
	alter, err := a.AlterColumn(table, col, changes)
	if err != nil {
		return nil, fmt.Errorf("cannot change %s.%s.%s: %w", namespace, m.Model, m.Field, err)
	}
	return append(stmts, alter...), nil
}

func (m *ChangeField) newColumn(namespace string, proj *signature.Project, a backend.Adapter, nf *signature.Field, needsInitial bool) (backend.ColumnDef, error) {
	col, err := columnDef(a, namespace, proj, m.Field, nf)
	if err != nil {
		return col, err
	}
	if needsInitial {
		if col.Initial, err = renderInitial(a, m.Initial); err != nil {
			return col, fmt.Errorf("%w: %s.%s.%s becomes NOT NULL without a default", err, namespace, m.Model, m.Field)
		}
	}
	return col, nil
}

func (m *ChangeField) mutateJoinTable(namespace string, proj *signature.Project, a backend.Adapter, model *signature.Model, f, nf *signature.Field) ([]string, error) {
	oldTable := signature.JoinTableName(model.Meta.DBTable, m.Field, f)
	if !ptrEqual(f.RelatedModel, nf.RelatedModel) {
		create, err := createJoinTable(a, namespace, proj, m.Model, model, m.Field, nf)
		if err != nil {
			return nil, err
		}
		return append(a.DropTable(oldTable), create...), nil
	}
	if newTable := signature.JoinTableName(model.Meta.DBTable, m.Field, nf); newTable != oldTable {
		return a.RenameTable(oldTable, newTable), nil
	}
	return nil, nil
}

// columnChanges lists the in-place alterations between two column-holding
// fields, in the order they are applied.
// columnChanges lists the alterations from f to nf. Objects being dropped are
// named after oldColumn, the column they were created for.
func columnChanges(a backend.Adapter, f, nf *signature.Field, oldColumn string) ([]backend.ColumnChange, error) {
	oldType, err := a.ColumnType(f)
	if err != nil {
		return nil, err
	}
	newType, err := a.ColumnType(nf)
	if err != nil {
		return nil, err
	}
	ro, err := signature.Resolve(f)
	if err != nil {
		return nil, err
	}
	rn, err := signature.Resolve(nf)
	if err != nil {
		return nil, err
	}

	var changes []backend.ColumnChange
	add := func(k backend.ChangeKind) { changes = append(changes, backend.ColumnChange{Kind: k, OldName: oldColumn}) }

	if oldType != newType {
		add(backend.ChangeType)
	}
	if ro[signature.AttrNull] != rn[signature.AttrNull] {
		add(backend.ChangeNull)
	}
	if ro[signature.AttrDefault] != rn[signature.AttrDefault] {
		add(backend.ChangeDefault)
	}
	if ro[signature.AttrUnique] != rn[signature.AttrUnique] {
		add(backend.ChangeUnique)
	}
	if ro[signature.AttrDBIndex] != rn[signature.AttrDBIndex] {
		add(backend.ChangeIndex)
	}
	if ro[signature.AttrPrimaryKey] != rn[signature.AttrPrimaryKey] {
		add(backend.ChangePrimaryKey)
	}
	if f.Type == signature.FieldTypeForeignKey || nf.Type == signature.FieldTypeForeignKey {
		if f.Type != nf.Type || ro[signature.AttrRelatedModel] != rn[signature.AttrRelatedModel] {
			add(backend.ChangeReference)
		}
	}
	return changes, nil
}

func (m *ChangeField) Simulate(namespace string, proj *signature.Project) error {
	model, f, nf, err := m.check(namespace, proj)
	if err != nil {
		return err
	}
	model.Fields[m.Field] = nf
	wasPK := f.PrimaryKey != nil && *f.PrimaryKey
	isPK := nf.PrimaryKey != nil && *nf.PrimaryKey
	if wasPK || isPK {
		updatePKColumn(model)
	}
	return nil
}

// ChangedAttrs returns the changed attribute names, sorted.
func (m *ChangeField) ChangedAttrs() []signature.Attr {
	names := make([]signature.Attr, 0, len(m.Changes))
	for name := range m.Changes {
		names = append(names, name)
	}
	signature.SortAttrs(names)
	return names
}

// String renders e.g. ChangeField('TestModel', 'age', null=True).
func (m *ChangeField) String() string {
	args := []string{signature.FormatValue(m.Model), signature.FormatValue(m.Field)}
	if m.Initial != nil {
		args = append(args, formatInitial(m.Initial))
	}
	for _, name := range m.ChangedAttrs() {
		args = append(args, fmt.Sprintf("%s=%s", name, signature.FormatValue(m.Changes[name])))
	}
	return formatCall("ChangeField", args...)
}

func ptrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

