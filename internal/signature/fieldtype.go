package signature

//go:generate go run github.com/dmarkham/enumer -type FieldType -trimprefix FieldType -transform snake -yaml -output fieldtype.gen.go

// FieldType is the closed set of field kinds a signature can describe.
type FieldType int

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeAutoKey
	FieldTypeBigInteger
	FieldTypeBoolean
	FieldTypeChar
	FieldTypeDate
	FieldTypeDateTime
	FieldTypeDecimal
	FieldTypeFloat
	FieldTypeForeignKey
	FieldTypeInteger
	FieldTypeManyToMany
	FieldTypeText
	FieldTypeTime
)

// IsRelation reports whether the type points at another model.
func (t FieldType) IsRelation() bool {
	return t == FieldTypeForeignKey || t == FieldTypeManyToMany
}

// HasColumn reports whether fields of this type are stored as a column of
// the owning model's table. Many-to-many fields live in a join table.
func (t FieldType) HasColumn() bool {
	return t != FieldTypeManyToMany
}
