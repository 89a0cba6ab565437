package signature

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int { return &i }
func strPtr(s string) *string { return &s }
func field(t FieldType) *Field { return &Field{Type: t} }
func charField(n int) *Field { return &Field{Type: FieldTypeChar, Attributes: Attributes{MaxLength: intPtr(n)}} }
func fkField(ref string) *Field { return &Field{Type: FieldTypeForeignKey, Attributes: Attributes{RelatedModel: strPtr(ref)}} }
func m2mField(ref string) *Field { return &Field{Type: FieldTypeManyToMany, Attributes: Attributes{RelatedModel: strPtr(ref)}} }

func TestResolveFillsDefaults(t *testing.T) {
	resolved, err := Resolve(field(FieldTypeInteger))
	require.NoError(t, err)

	assert.Equal(t, false, resolved[AttrNull])
	assert.Equal(t, false, resolved[AttrUnique])
	assert.Equal(t, false, resolved[AttrDBIndex])
	assert.Nil(t, resolved[AttrDBColumn])
	assert.NotContains(t, resolved, AttrMaxLength)
	assert.NotContains(t, resolved, AttrRelatedModel)
}

func TestResolveUnknownFieldType(t *testing.T) {
	_, err := Resolve(field(FieldTypeUnknown))
	require.ErrorIs(t, err, ErrUnknownFieldType)

	_, err = DiffAttributes(field(FieldTypeInteger), field(FieldType(99)))
	require.ErrorIs(t, err, ErrUnknownFieldType)
}

func TestEqualIsDefaultAware(t *testing.T) {
	explicit := &Field{Type: FieldTypeInteger, Attributes: Attributes{Null: boolPtr(false), DBIndex: boolPtr(false)}}
	assert.True(t, Equal(field(FieldTypeInteger), explicit))
	assert.True(t, Equal(explicit, field(FieldTypeInteger)))

	nullable := &Field{Type: FieldTypeInteger, Attributes: Attributes{Null: boolPtr(true)}}
	assert.False(t, Equal(field(FieldTypeInteger), nullable))
}

func TestDiffAttributes(t *testing.T) {
	tests := []struct {
		name string
		a, b *Field
		want []Attr
	}{
		{
			name: "identical",
			a:    charField(20),
			b:    charField(20),
			want: nil,
		},
		{
			name: "max length changed",
			a:    charField(20),
			b:    charField(30),
			want: []Attr{AttrMaxLength},
		},
		{
			name: "null set to default",
			a:    field(FieldTypeInteger),
			b:    &Field{Type: FieldTypeInteger, Attributes: Attributes{Null: boolPtr(false)}},
			want: nil,
		},
		{
			name: "null and unique changed",
			a:    field(FieldTypeInteger),
			b:    &Field{Type: FieldTypeInteger, Attributes: Attributes{Null: boolPtr(true), Unique: boolPtr(true)}},
			want: []Attr{AttrNull, AttrUnique},
		},
		{
			name: "attribute foreign to the type is ignored",
			a:    field(FieldTypeInteger),
			b:    &Field{Type: FieldTypeInteger, Attributes: Attributes{MaxLength: intPtr(10), RelatedModel: strPtr("a.B")}},
			want: nil,
		},
		{
			name: "related model changed",
			a:    fkField("app.Anchor1"),
			b:    fkField("app.Anchor2"),
			want: []Attr{AttrRelatedModel},
		},
		{
			name: "type changed",
			a:    field(FieldTypeInteger),
			b:    charField(10),
			want: []Attr{AttrFieldType, AttrMaxLength},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiffAttributes(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestElide(t *testing.T) {
	f := &Field{Type: FieldTypeInteger, Attributes: Attributes{
		Null:      boolPtr(false),
		Unique:    boolPtr(true),
		MaxLength: intPtr(5),
		DBColumn:  strPtr("custom"),
	}}
	require.NoError(t, Elide(f))

	assert.Equal(t, []Attr{AttrDBColumn, AttrUnique}, f.Explicit())
}

func TestFromResolved(t *testing.T) {
	resolved, err := Resolve(&Field{Type: FieldTypeChar, Attributes: Attributes{MaxLength: intPtr(20), Null: boolPtr(true)}})
	require.NoError(t, err)

	f, err := FromResolved(FieldTypeChar, resolved)
	require.NoError(t, err)
	assert.Equal(t, []Attr{AttrMaxLength, AttrNull}, f.Explicit())
}

func TestCloneIsDeep(t *testing.T) {
	p := NewProject()
	m := NewModel("app_thing")
	m.Meta.UniqueTogether = [][]string{{"a", "b"}}
	m.Fields["name"] = charField(20)
	p.EnsureNamespace("app").Models["Thing"] = m

	c := p.Clone()
	c.Model("app", "Thing").Fields["name"].MaxLength = intPtr(99)
	c.Model("app", "Thing").Meta.UniqueTogether[0][0] = "z"
	delete(c.Namespaces["app"].Models, "Thing")

	require.NotNil(t, p.Model("app", "Thing"))
	assert.Equal(t, 20, *p.Model("app", "Thing").Fields["name"].MaxLength)
	assert.Equal(t, "a", p.Model("app", "Thing").Meta.UniqueTogether[0][0])
}

func TestColumnName(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		field     *Field
		want      string
	}{
		{"default column", "int_field", field(FieldTypeInteger), "int_field"},
		{"explicit column", "int_field2", &Field{Type: FieldTypeInteger, Attributes: Attributes{DBColumn: strPtr("non-default_db_column")}}, "non-default_db_column"},
		{"foreign key suffix", "fk_field", fkField("app.Anchor"), "fk_field_id"},
		{"explicit foreign key column", "ref3", &Field{Type: FieldTypeForeignKey, Attributes: Attributes{DBColumn: strPtr("value"), RelatedModel: strPtr("app.Anchor")}}, "value"},
		{"many to many has no column", "m2m", m2mField("app.Anchor"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := ColumnName(tt.fieldName, tt.field)
			assert.Equal(t, tt.want, first)
			assert.Equal(t, first, ColumnName(tt.fieldName, tt.field))
		})
	}
}

func TestJoinTableName(t *testing.T) {
	assert.Equal(t, "app_base_m2m_field1", JoinTableName("app_base", "m2m_field1", m2mField("app.A")))

	named := m2mField("app.A")
	named.DBTable = strPtr("non-default_m2m_table")
	assert.Equal(t, "non-default_m2m_table", JoinTableName("app_base", "m2m_field2", named))
	assert.Equal(t, DefaultJoinTableName("app_base", "x"), DefaultJoinTableName("app_base", "x"))
}

func TestDefaultTableName(t *testing.T) {
	assert.Equal(t, "shop_inventory_testmodel", DefaultTableName("shop_inventory", "TestModel"))
}

func TestSplitModelRef(t *testing.T) {
	ns, model := SplitModelRef("blog.Post", "other")
	assert.Equal(t, "blog", ns)
	assert.Equal(t, "Post", model)

	ns, model = SplitModelRef("Post", "other")
	assert.Equal(t, "other", ns)
	assert.Equal(t, "Post", model)
}

func TestJoinColumnNames(t *testing.T) {
	from, to := JoinColumnNames("Post", "Tag")
	assert.Equal(t, "post_id", from)
	assert.Equal(t, "tag_id", to)

	from, to = JoinColumnNames("Node", "Node")
	assert.Equal(t, "from_node_id", from)
	assert.Equal(t, "to_node_id", to)
}

const blogSignature = `
blog:
  Post:
    fields:
      id: {type: auto_key, primary_key: true}
      title: {type: char, max_length: 200}
      body: {type: text, null: false}
      author: {type: foreign_key, related_model: auth.User}
      tags: {type: many_to_many, related_model: blog.Tag}
  Tag:
    meta:
      db_table: tags
      pk_column: id
    fields:
      name: {type: char, max_length: 50, unique: true}
`

func TestDecode(t *testing.T) {
	p, err := Decode(strings.NewReader(blogSignature))
	require.NoError(t, err)

	post := p.Model("blog", "Post")
	require.NotNil(t, post)
	assert.Equal(t, "blog_post", post.Meta.DBTable)
	assert.Equal(t, "id", post.Meta.PKColumn)
	assert.Empty(t, post.Fields["body"].Explicit(), "explicit default must be elided")
	assert.Equal(t, FieldTypeManyToMany, post.Fields["tags"].Type)
	assert.Equal(t, "tags", p.Model("blog", "Tag").Meta.DBTable)
}

func TestDecodeNullAttribute(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "flow", doc: "app:\n  M:\n    fields:\n      n: {type: integer, null: true}\n"},
		{name: "block", doc: "app:\n  M:\n    fields:\n      n:\n        type: integer\n        null: true\n"},
		{name: "quoted", doc: "app:\n  M:\n    fields:\n      n: {type: integer, \"null\": true}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(strings.NewReader(tt.doc))
			require.NoError(t, err)
			f := p.Model("app", "M").Fields["n"]
			require.NotNil(t, f.Null)
			assert.True(t, *f.Null)
		})
	}

	p, err := Decode(strings.NewReader("app:\n  M:\n    fields:\n      n: {type: integer, max_length: ~, null: null}\n"))
	require.NoError(t, err)
	assert.Empty(t, p.Model("app", "M").Fields["n"].Explicit())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "unknown type name",
			doc:     "app:\n  M:\n    fields:\n      f: {type: blob}\n",
			wantErr: "does not belong to FieldType values",
		},
		{
			name:    "type without defaults",
			doc:     "app:\n  M:\n    fields:\n      f: {type: unknown}\n",
			wantErr: ErrUnknownFieldType.Error(),
		},
		{
			name:    "unknown attribute",
			doc:     "app:\n  M:\n    fields:\n      f: {type: integer, nullable: true}\n",
			wantErr: `unknown attribute "nullable"`,
		},
		{
			name:    "bool attribute",
			doc:     "app:\n  M:\n    fields:\n      f: {type: integer, null: maybe}\n",
			wantErr: `attribute "null"`,
		},
		{
			name:    "missing max length",
			doc:     "app:\n  M:\n    fields:\n      f: {type: char}\n",
			wantErr: "char field requires max_length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEncodeDecodePreservesSignature(t *testing.T) {
	p, err := Decode(strings.NewReader(blogSignature))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, p))

	again, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, again)
}

func TestFieldTypeStrings(t *testing.T) {
	ft, err := FieldTypeString("many_to_many")
	require.NoError(t, err)
	assert.Equal(t, FieldTypeManyToMany, ft)
	assert.Equal(t, "foreign_key", FieldTypeForeignKey.String())
	assert.True(t, FieldTypeForeignKey.IsRelation())
	assert.False(t, FieldTypeManyToMany.HasColumn())
}
