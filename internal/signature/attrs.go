package signature

import (
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Attr names a field attribute.
type Attr string

const (
	AttrFieldType     Attr = "field_type"
	AttrNull          Attr = "null"
	AttrUnique        Attr = "unique"
	AttrDBIndex       Attr = "db_index"
	AttrPrimaryKey    Attr = "primary_key"
	AttrDBColumn      Attr = "db_column"
	AttrDBTablespace  Attr = "db_tablespace"
	AttrDefault       Attr = "default"
	AttrMaxLength     Attr = "max_length"
	AttrMaxDigits     Attr = "max_digits"
	AttrDecimalPlaces Attr = "decimal_places"
	AttrRelatedModel  Attr = "related_model"
	AttrDBTable       Attr = "db_table"
)

// allAttrs lists every storable attribute in rendering order.
var allAttrs = []Attr{
	AttrDBColumn,
	AttrDBIndex,
	AttrDBTable,
	AttrDBTablespace,
	AttrDecimalPlaces,
	AttrDefault,
	AttrMaxDigits,
	AttrMaxLength,
	AttrNull,
	AttrPrimaryKey,
	AttrRelatedModel,
	AttrUnique,
}

// Attributes holds the explicit attributes of a field. A nil pointer means the
// attribute was not set and the field type's default applies.
type Attributes struct {
	Null          *bool   `yaml:"null,omitempty"`
	Unique        *bool   `yaml:"unique,omitempty"`
	DBIndex       *bool   `yaml:"db_index,omitempty"`
	PrimaryKey    *bool   `yaml:"primary_key,omitempty"`
	DBColumn      *string `yaml:"db_column,omitempty"`
	DBTablespace  *string `yaml:"db_tablespace,omitempty"`
	Default       *string `yaml:"default,omitempty"`
	MaxLength     *int    `yaml:"max_length,omitempty"`
	MaxDigits     *int    `yaml:"max_digits,omitempty"`
	DecimalPlaces *int    `yaml:"decimal_places,omitempty"`
	RelatedModel  *string `yaml:"related_model,omitempty"`
	DBTable       *string `yaml:"db_table,omitempty"`
}

// Get returns the explicit value of an attribute and whether it was set.
// Values are bool, int or string.
func (a *Attributes) Get(name Attr) (any, bool) {
	switch name {
	case AttrNull:
		return derefBool(a.Null)
	case AttrUnique:
		return derefBool(a.Unique)
	case AttrDBIndex:
		return derefBool(a.DBIndex)
	case AttrPrimaryKey:
		return derefBool(a.PrimaryKey)
	case AttrDBColumn:
		return derefString(a.DBColumn)
	case AttrDBTablespace:
		return derefString(a.DBTablespace)
	case AttrDefault:
		return derefString(a.Default)
	case AttrMaxLength:
		return derefInt(a.MaxLength)
	case AttrMaxDigits:
		return derefInt(a.MaxDigits)
	case AttrDecimalPlaces:
		return derefInt(a.DecimalPlaces)
	case AttrRelatedModel:
		return derefString(a.RelatedModel)
	case AttrDBTable:
		return derefString(a.DBTable)
	}
	return nil, false
}

// Set stores an explicit attribute value. A nil value clears the attribute.
func (a *Attributes) Set(name Attr, value any) error {
	if value == nil {
		a.Clear(name)
		return nil
	}
	switch name {
	case AttrNull:
		return setBool(&a.Null, name, value)
	case AttrUnique:
		return setBool(&a.Unique, name, value)
	case AttrDBIndex:
		return setBool(&a.DBIndex, name, value)
	case AttrPrimaryKey:
		return setBool(&a.PrimaryKey, name, value)
	case AttrDBColumn:
		return setString(&a.DBColumn, name, value)
	case AttrDBTablespace:
		return setString(&a.DBTablespace, name, value)
	case AttrDefault:
		return setString(&a.Default, name, value)
	case AttrMaxLength:
		return setInt(&a.MaxLength, name, value)
	case AttrMaxDigits:
		return setInt(&a.MaxDigits, name, value)
	case AttrDecimalPlaces:
		return setInt(&a.DecimalPlaces, name, value)
	case AttrRelatedModel:
		return setString(&a.RelatedModel, name, value)
	case AttrDBTable:
		return setString(&a.DBTable, name, value)
	}
	return fmt.Errorf("unknown attribute %q", name)
}

// Clear unsets an attribute.
func (a *Attributes) Clear(name Attr) {
	switch name {
	case AttrNull:
		a.Null = nil
	case AttrUnique:
		a.Unique = nil
	case AttrDBIndex:
		a.DBIndex = nil
	case AttrPrimaryKey:
		a.PrimaryKey = nil
	case AttrDBColumn:
		a.DBColumn = nil
	case AttrDBTablespace:
		a.DBTablespace = nil
	case AttrDefault:
		a.Default = nil
	case AttrMaxLength:
		a.MaxLength = nil
	case AttrMaxDigits:
		a.MaxDigits = nil
	case AttrDecimalPlaces:
		a.DecimalPlaces = nil
	case AttrRelatedModel:
		a.RelatedModel = nil
	case AttrDBTable:
		a.DBTable = nil
	}
}

// decodeAttr reads one attribute value from its YAML node. A null value
// leaves the attribute unset.
func (a *Attributes) decodeAttr(name Attr, value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null" {
		a.Clear(name)
		return nil
	}
	var v any
	switch name {
	case AttrNull, AttrUnique, AttrDBIndex, AttrPrimaryKey:
		var b bool
		if err := value.Decode(&b); err != nil {
			return fmt.Errorf("line %d: attribute %q: %w", value.Line, name, err)
		}
		v = b
	case AttrMaxLength, AttrMaxDigits, AttrDecimalPlaces:
		var i int
		if err := value.Decode(&i); err != nil {
			return fmt.Errorf("line %d: attribute %q: %w", value.Line, name, err)
		}
		v = i
	case AttrDBColumn, AttrDBTablespace, AttrDefault, AttrRelatedModel, AttrDBTable:
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: attribute %q expects a scalar", value.Line, name)
		}
		v = value.Value
	default:
		return fmt.Errorf("line %d: unknown attribute %q", value.Line, name)
	}
	return a.Set(name, v)
}

// Explicit returns the names of all set attributes, sorted.
func (a *Attributes) Explicit() []Attr {
	var names []Attr
	for _, name := range allAttrs {
		if _, ok := a.Get(name); ok {
			names = append(names, name)
		}
	}
	return names
}

// FormatValue renders an attribute value for diagnostics: strings are single
// quoted, absent values print as None.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case string:
		return "'" + val + "'"
	case bool:
		if val {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(val)
	case FieldType:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// SortAttrs sorts attribute names in place.
func SortAttrs(attrs []Attr) {
	sort.Slice(attrs, func(i, j int) bool { return attrs[i] < attrs[j] })
}

func derefBool(p *bool) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func derefString(p *string) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func derefInt(p *int) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func setBool(dst **bool, name Attr, value any) error {
	v, ok := value.(bool)
	if !ok {
		return fmt.Errorf("attribute %q expects a bool, got %T", name, value)
	}
	*dst = &v
	return nil
}

func setString(dst **string, name Attr, value any) error {
	v, ok := value.(string)
	if !ok {
		return fmt.Errorf("attribute %q expects a string, got %T", name, value)
	}
	*dst = &v
	return nil
}

func setInt(dst **int, name Attr, value any) error {
	v, ok := value.(int)
	if !ok {
		return fmt.Errorf("attribute %q expects an int, got %T", name, value)
	}
	*dst = &v
	return nil
}
