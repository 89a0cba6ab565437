package signature

import (
	"errors"
	"fmt"
)

// ErrUnknownFieldType is returned when a field type has no Default Table entry.
var ErrUnknownFieldType = errors.New("unknown field type")

// Resolved is a field's full attribute set with defaults filled in. Only the
// attributes meaningful for the field's type are present; a nil value means
// the attribute is absent (no default exists).
type Resolved map[Attr]any

// columnDefaults applies to every field stored as a column.
var columnDefaults = map[Attr]any{
	AttrNull:         false,
	AttrUnique:       false,
	AttrDBIndex:      false,
	AttrPrimaryKey:   false,
	AttrDBColumn:     nil,
	AttrDBTablespace: nil,
	AttrDefault:      nil,
}

// Defaults is the Default Table: for each field type, the attributes that are
// meaningful for it and their default values.
var Defaults = map[FieldType]map[Attr]any{
	FieldTypeAutoKey:    columnAttrs(nil),
	FieldTypeBigInteger: columnAttrs(nil),
	FieldTypeBoolean:    columnAttrs(nil),
	FieldTypeChar:       columnAttrs(map[Attr]any{AttrMaxLength: nil}),
	FieldTypeDate:       columnAttrs(nil),
	FieldTypeDateTime:   columnAttrs(nil),
	FieldTypeDecimal:    columnAttrs(map[Attr]any{AttrMaxDigits: nil, AttrDecimalPlaces: nil}),
	FieldTypeFloat:      columnAttrs(nil),
	FieldTypeForeignKey: columnAttrs(map[Attr]any{AttrRelatedModel: nil}),
	FieldTypeInteger:    columnAttrs(nil),
	FieldTypeManyToMany: {
		AttrRelatedModel: nil,
		AttrDBTable:      nil,
	},
	FieldTypeText: columnAttrs(nil),
	FieldTypeTime: columnAttrs(nil),
}

// Required lists the attributes a field of the given type must set explicitly.
var Required = map[FieldType][]Attr{
	FieldTypeChar:       {AttrMaxLength},
	FieldTypeDecimal:    {AttrMaxDigits, AttrDecimalPlaces},
	FieldTypeForeignKey: {AttrRelatedModel},
	FieldTypeManyToMany: {AttrRelatedModel},
}

func columnAttrs(extra map[Attr]any) map[Attr]any {
	attrs := make(map[Attr]any, len(columnDefaults)+len(extra))
	for k, v := range columnDefaults {
		attrs[k] = v
	}
	for k, v := range extra {
		attrs[k] = v
	}
	return attrs
}

// Applies reports whether an attribute is meaningful for a field type.
func Applies(t FieldType, name Attr) bool {
	defaults, ok := Defaults[t]
	if !ok {
		return false
	}
	_, ok = defaults[name]
	return ok
}

// DefaultValue returns the default of an attribute for a field type.
func DefaultValue(t FieldType, name Attr) (any, error) {
	defaults, ok := Defaults[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFieldType, t)
	}
	return defaults[name], nil
}

// Resolve returns the field's attribute set with type defaults filled in.
// Attributes foreign to the field's type are left out.
func Resolve(f *Field) (Resolved, error) {
	defaults, ok := Defaults[f.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFieldType, f.Type)
	}

	resolved := make(Resolved, len(defaults))
	for name, def := range defaults {
		if v, ok := f.Get(name); ok {
			resolved[name] = v
		} else {
			resolved[name] = def
		}
	}
	return resolved, nil
}

// Equal reports whether two fields are the same once defaults are resolved.
func Equal(a, b *Field) bool {
	changed, err := DiffAttributes(a, b)
	return err == nil && len(changed) == 0
}

// DiffAttributes returns the sorted names of attributes whose resolved values
// differ. A type change is reported as AttrFieldType, together with every
// attribute of either type whose resolved value differs.
func DiffAttributes(a, b *Field) ([]Attr, error) {
	ra, err := Resolve(a)
	if err != nil {
		return nil, err
	}
	rb, err := Resolve(b)
	if err != nil {
		return nil, err
	}

	var changed []Attr
	if a.Type != b.Type {
		changed = append(changed, AttrFieldType)
	}
	for _, name := range allAttrs {
		va, inA := ra[name]
		vb, inB := rb[name]
		if !inA && !inB {
			continue
		}
		if va != vb {
			changed = append(changed, name)
		}
	}
	SortAttrs(changed)
	return changed, nil
}

// Elide drops explicit attributes that equal the type default or are foreign
// to the field's type.
func Elide(f *Field) error {
	defaults, ok := Defaults[f.Type]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFieldType, f.Type)
	}
	for _, name := range f.Explicit() {
		def, applies := defaults[name]
		if !applies {
			f.Clear(name)
			continue
		}
		if v, _ := f.Get(name); v == def {
			f.Clear(name)
		}
	}
	return nil
}

// FromResolved builds a field of type t holding only the non-default values
// of resolved.
func FromResolved(t FieldType, resolved Resolved) (*Field, error) {
	f := &Field{Type: t}
	for name, v := range resolved {
		if !Applies(t, name) {
			continue
		}
		if err := f.Set(name, v); err != nil {
			return nil, err
		}
	}
	if err := Elide(f); err != nil {
		return nil, err
	}
	return f, nil
}
