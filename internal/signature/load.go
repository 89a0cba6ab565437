package signature

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a signature document from path.
func LoadFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open signature file: %w", err)
	}
	defer func() { _ = f.Close() }()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return p, nil
}

// Decode parses a YAML signature document. Missing table names and primary
// key columns are derived, explicit default values are elided, and the result
// is validated against the Default Table.
func Decode(r io.Reader) (*Project, error) {
	p := NewProject()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(p); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode signature: %w", err)
	}
	if p.Namespaces == nil {
		p.Namespaces = make(map[string]*Namespace)
	}

	for nsName, ns := range p.Namespaces {
		if ns == nil {
			ns = &Namespace{}
			p.Namespaces[nsName] = ns
		}
		if ns.Models == nil {
			ns.Models = make(map[string]*Model)
		}
		for modelName, m := range ns.Models {
			if m == nil {
				m = &Model{}
				ns.Models[modelName] = m
			}
			normalizeModel(nsName, modelName, m)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}
	return p, nil
}

// Encode writes the project as a YAML signature document.
func Encode(w io.Writer, p *Project) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode signature: %w", err)
	}
	return enc.Close()
}

// Marshal returns the YAML document for p.
func Marshal(p *Project) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func normalizeModel(namespace, name string, m *Model) {
	if m.Fields == nil {
		m.Fields = make(map[string]*Field)
	}
	if m.Meta.DBTable == "" {
		m.Meta.DBTable = DefaultTableName(namespace, name)
	}
	for fieldName, f := range m.Fields {
		if f == nil {
			delete(m.Fields, fieldName)
			continue
		}
		// Unknown types are reported by Validate.
		_ = Elide(f)
	}
	if m.Meta.PKColumn == "" {
		m.Meta.PKColumn = "id"
		for _, fieldName := range m.FieldNames() {
			f := m.Fields[fieldName]
			if f.PrimaryKey != nil && *f.PrimaryKey {
				m.Meta.PKColumn = ColumnName(fieldName, f)
				break
			}
		}
	}
}
