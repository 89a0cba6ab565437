// Package mutation implements the schema mutations an evolution is made of.
//
// Every mutation has two halves. Mutate renders the DDL for the change against
// the signature as it is before the change, and Simulate advances that same
// signature to reflect it. Callers apply a list in order, calling Mutate then
// Simulate for each entry against one working copy obtained with
// (*signature.Project).Clone.
//
// Both halves validate everything they need before producing output: a failing
// call returns no statements and leaves the signature untouched.
package mutation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tordrt/schemaevolve/internal/backend"
	"github.com/tordrt/schemaevolve/internal/signature"
)

var (
	// ErrMissingInitialValue is returned when a change makes a column NOT NULL
	// without a default and no initial value was supplied.
	ErrMissingInitialValue = errors.New("missing initial value")
	// ErrStaleFieldReference is returned when a mutation names a field that does
	// not exist in the working signature.
	ErrStaleFieldReference = errors.New("stale field reference")
	// ErrStaleModelReference is the model-level counterpart of
	// ErrStaleFieldReference.
	ErrStaleModelReference = errors.New("stale model reference")
)

// Mutation is a single step of an evolution.
type Mutation interface {
	// Simulate applies the change to proj without touching any database.
	Simulate(namespace string, proj *signature.Project) error
	// Mutate returns the DDL for the change. proj must be in its state before
	// Simulate is called for this mutation; it is not modified.
	Mutate(namespace string, proj *signature.Project, a backend.Adapter) ([]string, error)
	// String returns the canonical textual form of the mutation.
	String() string
}

type userValueRequired struct{}

func (userValueRequired) String() string { return "<<USER VALUE REQUIRED>>" }

// UserValueRequired is the initial value of a mutation that needs a caller
// supplied value before it can be executed.
var UserValueRequired any = userValueRequired{}

// IsPending reports whether v is the UserValueRequired placeholder.
func IsPending(v any) bool {
	_, ok := v.(userValueRequired)
	return ok
}

// NeedsInitial is implemented by mutations that can carry an initial value.
type NeedsInitial interface {
	Mutation
	// Target returns the model and field the initial value is for.
	Target() (model, field string)
	// InitialValue returns the current initial value, possibly the placeholder.
	InitialValue() any
	// SetInitial replaces the initial value.
	SetInitial(v any)
}

func lookupModel(namespace string, proj *signature.Project, model string) (*signature.Model, error) {
	m := proj.Model(namespace, model)
	if m == nil {
		return nil, fmt.Errorf("%w: model %s.%s does not exist", ErrStaleModelReference, namespace, model)
	}
	return m, nil
}

func lookupField(namespace string, proj *signature.Project, model, field string) (*signature.Model, *signature.Field, error) {
	m, err := lookupModel(namespace, proj, model)
	if err != nil {
		return nil, nil, err
	}
	f, ok := m.Fields[field]
	if !ok || f == nil {
		return nil, nil, fmt.Errorf("%w: field %s.%s.%s does not exist", ErrStaleFieldReference, namespace, model, field)
	}
	return m, f, nil
}

// RequiresInitial reports whether adding f as a column needs a value to
// backfill existing rows.
func RequiresInitial(f *signature.Field) bool {
	if !f.Type.HasColumn() || f.Type == signature.FieldTypeAutoKey {
		return false
	}
	resolved, err := signature.Resolve(f)
	if err != nil {
		return false
	}
	return resolved[signature.AttrNull] == false &&
		resolved[signature.AttrDefault] == nil &&
		resolved[signature.AttrPrimaryKey] == false
}

func renderInitial(a backend.Adapter, v any) (*string, error) {
	if v == nil || IsPending(v) {
		return nil, ErrMissingInitialValue
	}
	lit := a.QuoteLiteral(v)
	return &lit, nil
}

func formatCall(name string, args ...string) string {
	return name + "(" + strings.Join(args, ", ") + ")"
}

func formatInitial(v any) string {
	if IsPending(v) {
		return "initial=" + UserValueRequired.(fmt.Stringer).String()
	}
	return "initial=" + signature.FormatValue(v)
}

func formatAttrs(f *signature.Field) []string {
	var args []string
	for _, name := range f.Explicit() {
		v, _ := f.Get(name)
		args = append(args, fmt.Sprintf("%s=%s", name, signature.FormatValue(v)))
	}
	return args
}

// updatePKColumn keeps meta.pk_column in step with the primary-key field.
func updatePKColumn(m *signature.Model) {
	m.Meta.PKColumn = "id"
	for _, name := range m.FieldNames() {
		f := m.Fields[name]
		if f.PrimaryKey != nil && *f.PrimaryKey && f.Type.HasColumn() {
			m.Meta.PKColumn = signature.ColumnName(name, f)
			return
		}
	}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
