package signature

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Project is a complete signature: namespaces keyed by name.
type Project struct {
	Namespaces map[string]*Namespace `yaml:",inline"`
}

// Namespace holds the model signatures of one namespace.
type Namespace struct {
	Models map[string]*Model `yaml:",inline"`
}

// Model is the signature of a single model (table).
type Model struct {
	Meta   Meta              `yaml:"meta"`
	Fields map[string]*Field `yaml:"fields"`
}

// Meta holds table-level properties of a model.
type Meta struct {
	DBTable        string     `yaml:"db_table"`
	DBTablespace   string     `yaml:"db_tablespace,omitempty"`
	PKColumn       string     `yaml:"pk_column"`
	UniqueTogether [][]string `yaml:"unique_together,omitempty"`
}

// Field is the signature of a single field: its type plus the attributes that
// differ from the type defaults.
type Field struct {
	Type       FieldType `yaml:"type"`
	Attributes `yaml:",inline"`
}

// UnmarshalYAML decodes a field mapping. Keys are matched by their text, so
// an unquoted null key names the null attribute.
func (f *Field) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: field signature must be a mapping", node.Line)
	}
	decoded := Field{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Value == "type" {
			if err := value.Decode(&decoded.Type); err != nil {
				return err
			}
			continue
		}
		if err := decoded.decodeAttr(Attr(key.Value), value); err != nil {
			return err
		}
	}
	*f = decoded
	return nil
}

// NewProject returns an empty project signature.
func NewProject() *Project {
	return &Project{Namespaces: make(map[string]*Namespace)}
}

// NewModel returns a model signature stored in table.
func NewModel(table string) *Model {
	return &Model{
		Meta:   Meta{DBTable: table},
		Fields: make(map[string]*Field),
	}
}

// Clone returns a deep copy. Working signatures must always be obtained this
// way; mutations advance them in place.
func (p *Project) Clone() *Project {
	if p == nil {
		return NewProject()
	}
	c := &Project{Namespaces: make(map[string]*Namespace, len(p.Namespaces))}
	for name, ns := range p.Namespaces {
		c.Namespaces[name] = ns.Clone()
	}
	return c
}

// Clone returns a deep copy of the namespace.
func (n *Namespace) Clone() *Namespace {
	c := &Namespace{Models: make(map[string]*Model)}
	if n == nil {
		return c
	}
	for name, m := range n.Models {
		if m != nil {
			c.Models[name] = m.Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	c := &Model{
		Meta:   m.Meta.Clone(),
		Fields: make(map[string]*Field, len(m.Fields)),
	}
	for name, f := range m.Fields {
		if f != nil {
			c.Fields[name] = f.Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the meta.
func (m Meta) Clone() Meta {
	c := m
	if m.UniqueTogether != nil {
		c.UniqueTogether = make([][]string, len(m.UniqueTogether))
		for i, group := range m.UniqueTogether {
			c.UniqueTogether[i] = append([]string(nil), group...)
		}
	}
	return c
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	c := &Field{Type: f.Type}
	for _, name := range f.Explicit() {
		v, _ := f.Get(name)
		_ = c.Set(name, v)
	}
	return c
}

// Namespace returns the named namespace, or nil.
func (p *Project) Namespace(name string) *Namespace {
	if p == nil || p.Namespaces == nil {
		return nil
	}
	return p.Namespaces[name]
}

// Model returns the named model of a namespace, or nil.
func (p *Project) Model(namespace, model string) *Model {
	ns := p.Namespace(namespace)
	if ns == nil {
		return nil
	}
	return ns.Models[model]
}

// EnsureNamespace returns the named namespace, creating it when missing.
func (p *Project) EnsureNamespace(name string) *Namespace {
	if p.Namespaces == nil {
		p.Namespaces = make(map[string]*Namespace)
	}
	ns, ok := p.Namespaces[name]
	if !ok {
		ns = &Namespace{Models: make(map[string]*Model)}
		p.Namespaces[name] = ns
	}
	if ns.Models == nil {
		ns.Models = make(map[string]*Model)
	}
	return ns
}

// NamespaceNames returns the sorted namespace names.
func (p *Project) NamespaceNames() []string {
	if p == nil {
		return nil
	}
	return sortedKeys(p.Namespaces)
}

// ModelNames returns the sorted model names.
func (n *Namespace) ModelNames() []string {
	if n == nil {
		return nil
	}
	return sortedKeys(n.Models)
}

// FieldNames returns the sorted field names.
func (m *Model) FieldNames() []string {
	if m == nil {
		return nil
	}
	return sortedKeys(m.Fields)
}

// Validate checks every field against the Default Table: the type must be
// known and mandatory attributes must be set.
func (p *Project) Validate() error {
	var errs []error
	for _, nsName := range p.NamespaceNames() {
		ns := p.Namespaces[nsName]
		for _, modelName := range ns.ModelNames() {
			m := ns.Models[modelName]
			if m.Meta.DBTable == "" {
				errs = append(errs, fmt.Errorf("%s.%s: meta.db_table is empty", nsName, modelName))
			}
			for _, fieldName := range m.FieldNames() {
				if err := m.Fields[fieldName].Validate(); err != nil {
					errs = append(errs, fmt.Errorf("%s.%s.%s: %w", nsName, modelName, fieldName, err))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Validate checks a single field against the Default Table.
func (f *Field) Validate() error {
	if _, ok := Defaults[f.Type]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFieldType, f.Type)
	}
	var errs []error
	for _, name := range Required[f.Type] {
		if _, ok := f.Get(name); !ok {
			errs = append(errs, fmt.Errorf("%s field requires %s", f.Type, name))
		}
	}
	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
