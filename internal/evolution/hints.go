package evolution

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/schemaevolve/internal/diff"
	"github.com/tordrt/schemaevolve/internal/mutation"
	"github.com/tordrt/schemaevolve/internal/signature"
)

// FieldRef names a field as namespace.Model.field.
type FieldRef struct {
	Namespace string
	Model     string
	Field     string
}

func (r FieldRef) String() string {
	return r.Namespace + "." + r.Model + "." + r.Field
}

// ParseFieldRef parses "namespace.Model.field". The namespace may itself
// contain dots.
func ParseFieldRef(s string) (FieldRef, error) {
	i := strings.LastIndex(s, ".")
	if i <= 0 || i == len(s)-1 {
		return FieldRef{}, fmt.Errorf("invalid field reference %q: expected namespace.Model.field", s)
	}
	j := strings.LastIndex(s[:i], ".")
	if j <= 0 || j == i-1 {
		return FieldRef{}, fmt.Errorf("invalid field reference %q: expected namespace.Model.field", s)
	}
	return FieldRef{Namespace: s[:j], Model: s[j+1 : i], Field: s[i+1:]}, nil
}

// RenameHint declares that a field was renamed rather than replaced.
type RenameHint struct {
	FieldRef
	NewName string
}

func (h RenameHint) String() string {
	return h.FieldRef.String() + "=" + h.NewName
}

// ParseRenameHint parses "namespace.Model.old=new".
func ParseRenameHint(s string) (RenameHint, error) {
	ref, newName, ok := strings.Cut(s, "=")
	if !ok || newName == "" {
		return RenameHint{}, fmt.Errorf("invalid rename hint %q: expected namespace.Model.old=new", s)
	}
	r, err := ParseFieldRef(ref)
	if err != nil {
		return RenameHint{}, err
	}
	return RenameHint{FieldRef: r, NewName: newName}, nil
}

// ApplyRenames replaces, for every hint, the AddField of the new name and the
// DeleteField of the old name by a RenameField at the position of the
// AddField. Attribute differences left after the rename are appended to it as
// a ChangeField. The input evolution is not modified.
func ApplyRenames(base *signature.Project, evolution map[string][]mutation.Mutation, hints []RenameHint) (map[string][]mutation.Mutation, error) {
	out := make(map[string][]mutation.Mutation, len(evolution))
	for ns, muts := range evolution {
		out[ns] = slices.Clone(muts)
	}

	for _, h := range hints {
		muts := out[h.Namespace]
		addIdx := slices.IndexFunc(muts, func(m mutation.Mutation) bool {
			a, ok := m.(*mutation.AddField)
			return ok && a.Model == h.Model && a.Field == h.NewName
		})
		delIdx := slices.IndexFunc(muts, func(m mutation.Mutation) bool {
			d, ok := m.(*mutation.DeleteField)
			return ok && d.Model == h.Model && d.Field == h.Field
		})
		if addIdx < 0 || delIdx < 0 {
			return nil, fmt.Errorf("rename hint %s does not match an added and a deleted field", h)
		}

		model := base.Model(h.Namespace, h.Model)
		if model == nil || model.Fields[h.Field] == nil {
			return nil, fmt.Errorf("%w: rename hint %s", mutation.ErrStaleFieldReference, h)
		}
		replacement := renameFor(h, model.Fields[h.Field], muts[addIdx].(*mutation.AddField))

		next := make([]mutation.Mutation, 0, len(muts))
		for i, m := range muts {
			switch i {
			case addIdx:
				next = append(next, replacement...)
			case delIdx:
			default:
				next = append(next, m)
			}
		}
		out[h.Namespace] = next
	}
	return out, nil
}

func renameFor(h RenameHint, old *signature.Field, add *mutation.AddField) []mutation.Mutation {
	rename := &mutation.RenameField{Model: h.Model, OldName: h.Field, NewName: h.NewName}
	renamed := old.Clone()
	if old.Type == signature.FieldTypeManyToMany {
		rename.NewDBTable = add.Signature.DBTable
		renamed.DBTable = add.Signature.DBTable
	} else if add.Signature.Type.HasColumn() {
		rename.NewDBColumn = add.Signature.DBColumn
		renamed.DBColumn = add.Signature.DBColumn
	}

	muts := []mutation.Mutation{rename}
	if change := diff.FieldChange(h.Model, h.NewName, renamed, add.Signature); change != nil {
		if mutation.IsPending(change.Initial) && add.Initial != nil {
			change.Initial = add.Initial
		}
		muts = append(muts, change)
	}
	return muts
}

// ApplyInitials sets the initial value of every mutation targeting a field in
// initials. It returns the number of mutations updated.
func ApplyInitials(evolution map[string][]mutation.Mutation, initials map[FieldRef]any) int {
	n := 0
	for ns, muts := range evolution {
		for _, m := range muts {
			ni, ok := m.(mutation.NeedsInitial)
			if !ok {
				continue
			}
			model, field := ni.Target()
			if v, ok := initials[FieldRef{Namespace: ns, Model: model, Field: field}]; ok {
				ni.SetInitial(v)
				n++
			}
		}
	}
	return n
}

// Pending lists the fields whose mutations still wait for an initial value,
// sorted.
func Pending(evolution map[string][]mutation.Mutation) []FieldRef {
	var refs []FieldRef
	for ns, muts := range evolution {
		for _, m := range muts {
			ni, ok := m.(mutation.NeedsInitial)
			if !ok || !mutation.IsPending(ni.InitialValue()) {
				continue
			}
			model, field := ni.Target()
			refs = append(refs, FieldRef{Namespace: ns, Model: model, Field: field})
		}
	}
	slices.SortFunc(refs, func(a, b FieldRef) int { return strings.Compare(a.String(), b.String()) })
	return refs
}

// ParseInitial parses "namespace.Model.field=value". The value is read as a
// YAML scalar, so 7 is an integer, true a boolean and 'x' or x a string.
func ParseInitial(s string) (FieldRef, any, error) {
	ref, raw, ok := strings.Cut(s, "=")
	if !ok {
		return FieldRef{}, nil, fmt.Errorf("invalid initial value %q: expected namespace.Model.field=value", s)
	}
	r, err := ParseFieldRef(ref)
	if err != nil {
		return FieldRef{}, nil, err
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return FieldRef{}, nil, fmt.Errorf("invalid initial value for %s: %w", r, err)
	}
	switch value.(type) {
	case string, bool, int, float64:
	default:
		value = raw
	}
	return r, value, nil
}
