// Package diff compares two project signatures and derives the mutations that
// carry the old one to the new one.
//
// Renames are never inferred: a renamed field shows up as an added field
// followed by a deleted one. Callers that know better layer explicit rename
// hints on top (see package evolution).
package diff

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tordrt/schemaevolve/internal/mutation"
	"github.com/tordrt/schemaevolve/internal/signature"
)

// Result is the difference between two project signatures.
type Result struct {
	from *signature.Project
	to   *signature.Project

	// Namespaces holds the differences per namespace. Namespaces without
	// differences are absent.
	Namespaces map[string]*Namespace
}

// Namespace is the difference within one namespace.
type Namespace struct {
	AddedModels   []string
	DeletedModels []string
	ChangedModels map[string]*Model
}

// Model is the difference within a model present on both sides.
type Model struct {
	AddedFields   []string
	DeletedFields []string
	// ChangedFields maps field names to the attributes whose resolved values
	// differ, sorted.
	ChangedFields map[string][]signature.Attr
	ChangedMeta   []mutation.MetaProp
}

func (m *Model) empty() bool {
	return len(m.AddedFields) == 0 && len(m.DeletedFields) == 0 &&
		len(m.ChangedFields) == 0 && len(m.ChangedMeta) == 0
}

// Compute diffs from against to. It never fails: nil projects, namespaces and
// models are treated as empty. Fields whose type is unknown are reported as
// changed when their types differ and as unchanged otherwise.
func Compute(from, to *signature.Project) *Result {
	r := &Result{
		from:       from.Clone(),
		to:         to.Clone(),
		Namespaces: make(map[string]*Namespace),
	}

	for _, nsName := range union(r.from.NamespaceNames(), r.to.NamespaceNames()) {
		oldNs := r.from.Namespace(nsName)
		newNs := r.to.Namespace(nsName)
		nd := &Namespace{ChangedModels: make(map[string]*Model)}

		for _, modelName := range union(oldNs.ModelNames(), newNs.ModelNames()) {
			oldModel := r.from.Model(nsName, modelName)
			newModel := r.to.Model(nsName, modelName)
			switch {
			case newModel == nil:
				nd.DeletedModels = append(nd.DeletedModels, modelName)
			case oldModel == nil:
				nd.AddedModels = append(nd.AddedModels, modelName)
			default:
				if md := compareModels(oldModel, newModel); !md.empty() {
					nd.ChangedModels[modelName] = md
				}
			}
		}

		if len(nd.AddedModels) > 0 || len(nd.DeletedModels) > 0 || len(nd.ChangedModels) > 0 {
			r.Namespaces[nsName] = nd
		}
	}
	return r
}

func compareModels(before, after *signature.Model) *Model {
	md := &Model{ChangedFields: make(map[string][]signature.Attr)}

	for _, name := range after.FieldNames() {
		if _, ok := before.Fields[name]; !ok {
			md.AddedFields = append(md.AddedFields, name)
		}
	}
	for _, name := range before.FieldNames() {
		afterField, ok := after.Fields[name]
		if !ok {
			md.DeletedFields = append(md.DeletedFields, name)
			continue
		}
		changed, err := signature.DiffAttributes(before.Fields[name], afterField)
		if err != nil {
			if before.Fields[name].Type != afterField.Type {
				changed = []signature.Attr{signature.AttrFieldType}
			} else {
				changed = nil
			}
		}
		if len(changed) > 0 {
			md.ChangedFields[name] = changed
		}
	}

	if before.Meta.DBTable != after.Meta.DBTable {
		md.ChangedMeta = append(md.ChangedMeta, mutation.MetaDBTable)
	}
	if before.Meta.DBTablespace != after.Meta.DBTablespace {
		md.ChangedMeta = append(md.ChangedMeta, mutation.MetaDBTablespace)
	}
	if !equalGroups(before.Meta.UniqueTogether, after.Meta.UniqueTogether) {
		md.ChangedMeta = append(md.ChangedMeta, mutation.MetaUniqueTogether)
	}
	return md
}

// IsEmpty reports whether the two signatures are equivalent.
func (r *Result) IsEmpty() bool {
	return r == nil || len(r.Namespaces) == 0
}

// NamespaceNames returns the sorted names of namespaces with differences.
func (r *Result) NamespaceNames() []string {
	names := make([]string, 0, len(r.Namespaces))
	for name := range r.Namespaces {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Evolution returns the mutations carrying the old signature to the new one,
// per namespace. Within a namespace, added models come first, then per changed
// model its added, deleted and changed fields followed by meta changes, and
// finally deleted models. Each group is ordered by name.
func (r *Result) Evolution() map[string][]mutation.Mutation {
	evolution := make(map[string][]mutation.Mutation)
	if r.IsEmpty() {
		return evolution
	}

	for nsName, nd := range r.Namespaces {
		var muts []mutation.Mutation

		for _, modelName := range nd.AddedModels {
			muts = append(muts, &mutation.AddModel{
				Model:     modelName,
				Signature: r.to.Model(nsName, modelName).Clone(),
			})
		}

		for _, modelName := range sortedModelNames(nd.ChangedModels) {
			md := nd.ChangedModels[modelName]
			oldModel := r.from.Model(nsName, modelName)
			newModel := r.to.Model(nsName, modelName)

			for _, fieldName := range md.AddedFields {
				f := newModel.Fields[fieldName].Clone()
				add := &mutation.AddField{Model: modelName, Field: fieldName, Signature: f}
				if mutation.RequiresInitial(f) {
					add.Initial = mutation.UserValueRequired
				}
				muts = append(muts, add)
			}
			for _, fieldName := range md.DeletedFields {
				muts = append(muts, &mutation.DeleteField{Model: modelName, Field: fieldName})
			}
			for _, fieldName := range sortedFieldNames(md.ChangedFields) {
				muts = append(muts, changeField(modelName, fieldName, oldModel.Fields[fieldName], newModel.Fields[fieldName], md.ChangedFields[fieldName]))
			}
			for _, prop := range md.ChangedMeta {
				muts = append(muts, changeMeta(modelName, prop, newModel.Meta))
			}
		}

		for _, modelName := range nd.DeletedModels {
			muts = append(muts, &mutation.DeleteModel{Model: modelName})
		}
		evolution[nsName] = muts
	}
	return evolution
}

// FieldChange returns the ChangeField carrying before to after, or nil when
// the two are equal. The initial value is marked pending when the change
// makes the column NOT NULL without a default.
func FieldChange(model, field string, before, after *signature.Field) *mutation.ChangeField {
	attrs, err := signature.DiffAttributes(before, after)
	if err != nil {
		if before.Type == after.Type {
			return nil
		}
		attrs = []signature.Attr{signature.AttrFieldType}
	}
	if len(attrs) == 0 {
		return nil
	}
	return changeField(model, field, before, after, attrs)
}

func changeField(model, field string, before, after *signature.Field, attrs []signature.Attr) *mutation.ChangeField {
	resolved, _ := signature.Resolve(after)
	changes := make(map[signature.Attr]any, len(attrs))
	for _, name := range attrs {
		if name == signature.AttrFieldType {
			changes[name] = after.Type
			continue
		}
		changes[name] = resolved[name]
	}
	cf := &mutation.ChangeField{Model: model, Field: field, Changes: changes}
	if cf.RequiresInitial(before) {
		cf.Initial = mutation.UserValueRequired
	}
	return cf
}

func changeMeta(model string, prop mutation.MetaProp, meta signature.Meta) *mutation.ChangeMeta {
	var value any
	switch prop {
	case mutation.MetaDBTable:
		value = meta.DBTable
	case mutation.MetaDBTablespace:
		value = meta.DBTablespace
	case mutation.MetaUniqueTogether:
		value = meta.Clone().UniqueTogether
	}
	return &mutation.ChangeMeta{Model: model, Prop: prop, Value: value}
}

// String renders the differences as an indented report.
func (r *Result) String() string {
	if r.IsEmpty() {
		return ""
	}
	var sb strings.Builder
	for _, nsName := range r.NamespaceNames() {
		nd := r.Namespaces[nsName]
		for _, modelName := range nd.AddedModels {
			fmt.Fprintf(&sb, "The model %s.%s has been added\n", nsName, modelName)
		}
		for _, modelName := range nd.DeletedModels {
			fmt.Fprintf(&sb, "The model %s.%s has been deleted\n", nsName, modelName)
		}
		for _, modelName := range sortedModelNames(nd.ChangedModels) {
			md := nd.ChangedModels[modelName]
			fmt.Fprintf(&sb, "In model %s.%s:\n", nsName, modelName)
			for _, name := range md.AddedFields {
				fmt.Fprintf(&sb, "    Field '%s' has been added\n", name)
			}
			for _, name := range md.DeletedFields {
				fmt.Fprintf(&sb, "    Field '%s' has been deleted\n", name)
			}
			for _, name := range sortedFieldNames(md.ChangedFields) {
				fmt.Fprintf(&sb, "    In field '%s':\n", name)
				for _, attr := range md.ChangedFields[name] {
					fmt.Fprintf(&sb, "        Property '%s' has changed\n", attr)
				}
			}
			for _, prop := range md.ChangedMeta {
				fmt.Fprintf(&sb, "    Meta property '%s' has changed\n", prop)
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func union(a, b []string) []string {
	out := append(slices.Clone(a), b...)
	slices.Sort(out)
	return slices.Compact(out)
}

func sortedModelNames(m map[string]*Model) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func sortedFieldNames(m map[string][]signature.Attr) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func equalGroups(a, b [][]string) bool {
	return slices.EqualFunc(a, b, func(x, y []string) bool { return slices.Equal(x, y) })
}
